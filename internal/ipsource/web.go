package ipsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
)

const maxBody = 1024

// Web fetches the IP from an HTTP echo service such as icanhazip.
//
// The service must answer "200 OK" with the address as the response body.
// The body is trimmed and returned as is; it is not validated as an IP, a
// bad value is rejected by the DNS provider instead.
type Web struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewWeb returns a Web source for serviceURL.
func NewWeb(serviceURL string, timeout time.Duration) *Web {
	return &Web{URL: serviceURL, Timeout: timeout}
}

// Fetch implements Source.
func (w *Web) Fetch(ctx context.Context) (string, error) {
	// Bounded even when the caller passes context.Background.
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL, nil)
	if err != nil {
		return "", fmt.Errorf("ipsource: create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpclient := w.HTTPClient
	if httpclient == nil {
		httpclient = http.DefaultClient
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return "", &dns.TransportError{Op: "ipsource: GET", URL: w.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &dns.TransportError{Op: "ipsource: GET", URL: w.URL, Err: fmt.Errorf("http request returned %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", &dns.TransportError{Op: "ipsource: read body", URL: w.URL, Err: err}
	}
	return strings.TrimSpace(string(body)), nil
}
