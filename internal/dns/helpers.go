package dns

import (
	"strings"
)

// UniqueNames trims every entry, drops empty ones and keeps the first
// occurrence of each name, preserving input order.
// e.g. " home, vpn ,home," → ["home", "vpn"]
func UniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// FQDN joins a record name and its zone domain.
// e.g. ("home", "example.com") → "home.example.com"
func FQDN(name, domain string) string {
	domain = strings.TrimSuffix(domain, ".")
	if name == "" || name == "@" {
		return domain
	}
	return name + "." + domain
}
