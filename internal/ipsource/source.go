// Package ipsource discovers the public IP address of this host.
package ipsource

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// DefaultURL is a public IPv4 echo service operated by Cloudflare.
const DefaultURL = "https://ipv4.icanhazip.com/"

// Source returns the current public IP address as text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// New picks a Source for rawURL by scheme: http and https URLs are fetched
// with Web, dns://server[:port]/name URLs are resolved with DNS.
func New(rawURL string, timeout time.Duration) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("ipsource: parse %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewWeb(rawURL, timeout), nil
	case "dns":
		d, err := newDNSFromURL(u, timeout)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("ipsource: unsupported scheme %q in %q", u.Scheme, rawURL)
	}
}
