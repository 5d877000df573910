package dnsmadeeasy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
)

var fixedNow = time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)

// capture records every request the test server sees.
type capture struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (c *capture) handler(status int, response string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.requests = append(c.requests, r)
		c.bodies = append(c.bodies, string(body))
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}
}

func (c *capture) request(i int) *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[i]
}

func (c *capture) body(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bodies[i]
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := New(logr.Discard(), Options{
		BaseURL:   baseURL,
		APIKey:    "key123",
		SecretKey: "secret456",
		UserAgent: "yk-ddns-updater/test",
		Now:       func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return p
}

func TestNew_ValidOptions(t *testing.T) {
	p, err := New(logr.Discard(), Options{APIKey: "key123", SecretKey: "secret456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.baseURL != DefaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", DefaultBaseURL, p.baseURL)
	}
	if p.client.Timeout != defaultTimeout {
		t.Errorf("expected default timeout %s, got %s", defaultTimeout, p.client.Timeout)
	}
}

func TestNew_TrimsBaseURL(t *testing.T) {
	p, err := New(logr.Discard(), Options{BaseURL: SandboxBaseURL + "/", APIKey: "k", SecretKey: "s", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.baseURL != SandboxBaseURL {
		t.Errorf("expected baseURL %q, got %q", SandboxBaseURL, p.baseURL)
	}
	if p.client.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", p.client.Timeout)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(logr.Discard(), Options{SecretKey: "secret456"})
	if err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
}

func TestNew_MissingSecretKey(t *testing.T) {
	_, err := New(logr.Discard(), Options{APIKey: "key123"})
	if err == nil {
		t.Fatal("expected error for missing secret key, got nil")
	}
}

func TestRequestHeaders(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, `{"name":"example.com","id":12345}`))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	if _, err := p.ZoneName(context.Background(), "12345"); err != nil {
		t.Fatalf("ZoneName: %v", err)
	}

	if c.count() != 1 {
		t.Fatalf("expected 1 request, got %d", c.count())
	}
	h := c.request(0).Header
	want := map[string]string{
		"Content-Type":        "application/json",
		"User-Agent":          "yk-ddns-updater/test",
		"X-Dnsme-Apikey":      "key123",
		"X-Dnsme-Requestdate": "Thu, 15 Oct 2026 08:30:00 GMT",
		"X-Dnsme-Hmac":        "3c94eab3a75c32b58f7d372017142f6e59346ab3",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("header %s: got %q, want %q", k, got, v)
		}
	}
}

func TestRequestDateIsFreshPerRequest(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, `{"name":"example.com"}`))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	clock := fixedNow
	p.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for i := 0; i < 2; i++ {
		if _, err := p.ZoneName(context.Background(), "12345"); err != nil {
			t.Fatalf("ZoneName: %v", err)
		}
	}

	d1 := c.request(0).Header.Get("X-dnsme-requestDate")
	d2 := c.request(1).Header.Get("X-dnsme-requestDate")
	if d1 == d2 {
		t.Fatalf("expected distinct request dates, got %q twice", d1)
	}
	if got := c.request(1).Header.Get("X-dnsme-hmac"); got != Sign(d2, "secret456") {
		t.Errorf("second signature does not match its own date: %q", got)
	}
}

func TestZoneName(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, `{"name":"example.com","id":12345,"gtdEnabled":false}`))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	name, err := p.ZoneName(context.Background(), "12345")
	if err != nil {
		t.Fatalf("ZoneName: %v", err)
	}
	if name != "example.com" {
		t.Errorf("expected 'example.com', got %q", name)
	}
	if got := c.request(0).URL.Path; got != "/dns/managed/12345" {
		t.Errorf("expected path '/dns/managed/12345', got %q", got)
	}
	if got := c.request(0).Method; got != http.MethodGet {
		t.Errorf("expected GET, got %s", got)
	}
}

func TestZoneName_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"not found", http.StatusNotFound, `{"error":["zone not found"]}`, http.StatusNotFound},
		{"forbidden", http.StatusForbidden, `{"error":["invalid hmac"]}`, http.StatusForbidden},
		{"missing name", http.StatusOK, `{"id":12345}`, 0},
		{"malformed body", http.StatusOK, `not json`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &capture{}
			srv := httptest.NewServer(c.handler(tt.status, tt.body))
			defer srv.Close()

			p := newTestProvider(t, srv.URL)
			_, err := p.ZoneName(context.Background(), "12345")
			var perr *dns.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *dns.ProviderError, got %T: %v", err, err)
			}
			if perr.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, perr.StatusCode)
			}
		})
	}
}

func TestFindRecordID_FirstMatchWins(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, `{"data":[
		{"id":111,"name":"home","type":"A","value":"1.2.3.4"},
		{"id":222,"name":"home","type":"TXT","value":"\"hello\""}
	],"totalRecords":2}`))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	id, err := p.FindRecordID(context.Background(), "12345", "home")
	if err != nil {
		t.Fatalf("FindRecordID: %v", err)
	}
	if id != 111 {
		t.Errorf("expected first match 111, got %d", id)
	}

	req := c.request(0)
	if req.URL.Path != "/dns/managed/12345/records" {
		t.Errorf("expected records path, got %q", req.URL.Path)
	}
	if got := req.URL.Query().Get("recordName"); got != "home" {
		t.Errorf("expected recordName=home, got %q", got)
	}
}

func TestFindRecordID_EmptyResult(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, `{"data":[],"totalRecords":0}`))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.FindRecordID(context.Background(), "12345", "ghost")
	var perr *dns.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *dns.ProviderError, got %T: %v", err, err)
	}
	if !errors.Is(err, dns.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdateRecord(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, ``))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	err := p.UpdateRecord(context.Background(), "12345", dns.Record{
		ID:    111,
		Name:  "home",
		Type:  "A",
		Value: "203.0.113.7",
		TTL:   1800,
	})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	req := c.request(0)
	if req.Method != http.MethodPut {
		t.Errorf("expected PUT, got %s", req.Method)
	}
	if req.URL.Path != "/dns/managed/12345/records/111" {
		t.Errorf("expected record path, got %q", req.URL.Path)
	}

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(c.body(0)), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := map[string]interface{}{
		"name":        "home",
		"type":        "A",
		"value":       "203.0.113.7",
		"id":          float64(111),
		"gtdLocation": "DEFAULT",
		"ttl":         float64(1800),
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%q]: got %v, want %v", k, body[k], v)
		}
	}
	if len(body) != len(want) {
		t.Errorf("expected %d body fields, got %d: %v", len(want), len(body), body)
	}
}

func TestUpdateRecord_NonSuccess(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusBadRequest, `{"error":["Record with this type (A), name (home), and value (bad) is invalid."]}`))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	err := p.UpdateRecord(context.Background(), "12345", dns.Record{ID: 111, Name: "home", Type: "A", Value: "bad", TTL: 60})
	var perr *dns.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *dns.ProviderError, got %T: %v", err, err)
	}
	if perr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", perr.StatusCode)
	}
	if !strings.Contains(perr.Body, "is invalid") {
		t.Errorf("expected body excerpt in error, got %q", perr.Body)
	}
	if c.count() != 1 {
		t.Errorf("expected exactly one attempt, got %d", c.count())
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := newTestProvider(t, url)
	_, err := p.ZoneName(context.Background(), "12345")
	var terr *dns.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *dns.TransportError, got %T: %v", err, err)
	}
}
