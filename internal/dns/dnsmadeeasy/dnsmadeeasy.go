package dnsmadeeasy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
)

const (
	// DefaultBaseURL is the production V2.0 REST endpoint.
	DefaultBaseURL = "https://api.dnsmadeeasy.com/V2.0"
	// SandboxBaseURL is the sandbox endpoint; it needs separate sandbox credentials.
	SandboxBaseURL = "https://api.sandbox.dnsmadeeasy.com/V2.0"

	defaultTimeout = 30 * time.Second
	gtdLocation    = "DEFAULT"
	maxErrorBody   = 512
)

// Options configures a Provider. APIKey and SecretKey are required.
type Options struct {
	BaseURL    string
	APIKey     string
	SecretKey  string
	UserAgent  string
	Timeout    time.Duration    // per request; defaults to 30s
	HTTPClient *http.Client     // optional; its Timeout is left untouched
	Now        func() time.Time // optional clock for request dates
}

// Provider implements dns.Provider for the DNS Made Easy managed DNS API.
type Provider struct {
	baseURL   string
	apiKey    string
	secretKey string
	userAgent string
	client    *http.Client
	now       func() time.Time
	log       logr.Logger
}

var _ dns.Provider = (*Provider)(nil)

// New creates a DNS Made Easy provider.
func New(log logr.Logger, opts Options) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("dnsmadeeasy: missing API key")
	}
	if opts.SecretKey == "" {
		return nil, errors.New("dnsmadeeasy: missing secret key")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("dnsmadeeasy: invalid base URL %q: %w", baseURL, err)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		client = &http.Client{Transport: transport, Timeout: timeout}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "yk-ddns-updater"
	}

	return &Provider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    opts.APIKey,
		secretKey: opts.SecretKey,
		userAgent: userAgent,
		client:    client,
		now:       now,
		log:       log,
	}, nil
}

// doRequest builds, signs and executes a request against the API.
// Each call gets its own request date and signature.
func (p *Provider) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("dnsmadeeasy: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	u := p.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("dnsmadeeasy: build request: %w", err)
	}

	date := p.now().UTC().Format(http.TimeFormat)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("X-dnsme-apiKey", p.apiKey)
	req.Header.Set("X-dnsme-hmac", Sign(date, p.secretKey))
	req.Header.Set("X-dnsme-requestDate", date)

	p.log.V(1).Info("sending request", "method", method, "path", path)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &dns.TransportError{Op: "dnsmadeeasy: " + method, URL: u, Err: err}
	}
	return resp, nil
}

// checkStatus turns a non-2xx response into a ProviderError.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &dns.ProviderError{
		Op:         "dnsmadeeasy: " + op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(respBody)),
	}
}

func zonePath(zoneID string) string {
	return "/dns/managed/" + url.PathEscape(zoneID)
}

// ZoneName returns the domain name of the managed zone.
func (p *Provider) ZoneName(ctx context.Context, zoneID string) (string, error) {
	op := "get zone " + zoneID
	resp, err := p.doRequest(ctx, http.MethodGet, zonePath(zoneID), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return "", err
	}

	var zone struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&zone); err != nil {
		return "", &dns.ProviderError{Op: "dnsmadeeasy: " + op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if zone.Name == "" {
		return "", &dns.ProviderError{Op: "dnsmadeeasy: " + op, Err: errors.New("response has no zone name")}
	}
	return zone.Name, nil
}

// recordsResponse is the shape returned by the record search endpoint.
type recordsResponse struct {
	Data []recordRow `json:"data"`
}

type recordRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FindRecordID returns the ID of the record called name.
//
// The first row in the result wins. Further matches (for example an AAAA or
// TXT record with the same name) are ignored, not disambiguated.
func (p *Provider) FindRecordID(ctx context.Context, zoneID, name string) (int64, error) {
	op := "find record " + name
	resp, err := p.doRequest(ctx, http.MethodGet, zonePath(zoneID)+"/records", url.Values{"recordName": {name}}, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return 0, err
	}

	var rr recordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return 0, &dns.ProviderError{Op: "dnsmadeeasy: " + op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(rr.Data) == 0 {
		return 0, &dns.ProviderError{Op: "dnsmadeeasy: " + op, Err: dns.ErrRecordNotFound}
	}
	if len(rr.Data) > 1 {
		p.log.V(1).Info("multiple records matched, using the first", "name", name, "matches", len(rr.Data), "id", rr.Data[0].ID)
	}
	return rr.Data[0].ID, nil
}

// recordBody is the full replacement body sent on update.
type recordBody struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	ID          int64  `json:"id"`
	GTDLocation string `json:"gtdLocation"`
	TTL         int    `json:"ttl"`
}

// UpdateRecord replaces the record with the given value. It is attempted once.
func (p *Provider) UpdateRecord(ctx context.Context, zoneID string, record dns.Record) error {
	p.log.Info("updating record", "name", record.Name, "id", record.ID, "value", record.Value, "ttl", record.TTL)

	body := recordBody{
		Name:        record.Name,
		Type:        dns.RecordTypeA,
		Value:       record.Value,
		ID:          record.ID,
		GTDLocation: gtdLocation,
		TTL:         record.TTL,
	}
	path := zonePath(zoneID) + "/records/" + strconv.FormatInt(record.ID, 10)
	resp, err := p.doRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus("update record "+record.Name, resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	p.log.Info("record updated", "name", record.Name, "status", resp.StatusCode)
	return nil
}
