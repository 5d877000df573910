package ipsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	mdns "github.com/miekg/dns"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
)

// DNS asks a resolver that echoes the client address, such as
// resolver1.opendns.com answering A queries for myip.opendns.com.
type DNS struct {
	Server  string // host:port
	Name    string
	Timeout time.Duration
}

// NewDNS returns a DNS source that sends A queries for name to server.
// A missing port in server defaults to 53.
func NewDNS(server, name string, timeout time.Duration) *DNS {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &DNS{Server: server, Name: name, Timeout: timeout}
}

// newDNSFromURL parses dns://resolver1.opendns.com/myip.opendns.com.
func newDNSFromURL(u *url.URL, timeout time.Duration) (*DNS, error) {
	name := strings.Trim(u.Path, "/")
	if u.Host == "" || name == "" {
		return nil, fmt.Errorf("ipsource: dns URL %q must look like dns://server/name", u.String())
	}
	return NewDNS(u.Host, name, timeout), nil
}

// Fetch implements Source. It returns the first A record in the answer.
func (d *DNS) Fetch(ctx context.Context) (string, error) {
	target := "dns://" + d.Server + "/" + d.Name

	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(d.Name), mdns.TypeA)
	m.RecursionDesired = false

	c := new(mdns.Client)
	if d.Timeout > 0 {
		c.Timeout = d.Timeout
	}

	r, _, err := c.ExchangeContext(ctx, m, d.Server)
	if err != nil {
		return "", &dns.TransportError{Op: "ipsource: query", URL: target, Err: err}
	}
	if r.Rcode != mdns.RcodeSuccess {
		return "", &dns.TransportError{Op: "ipsource: query", URL: target, Err: fmt.Errorf("rcode %s", mdns.RcodeToString[r.Rcode])}
	}
	for _, rr := range r.Answer {
		if a, ok := rr.(*mdns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", &dns.TransportError{Op: "ipsource: query", URL: target, Err: errors.New("no A record in answer")}
}
