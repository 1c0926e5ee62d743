package ingest

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// IsExternalEmail reports whether email belongs to a registrable domain
// other than orgDomain. Subdomains of the organization are internal.
// Unparseable addresses are treated as external.
func IsExternalEmail(email, orgDomain string) bool {
	org := registrableDomain(orgDomain)
	if org == "" {
		return false
	}
	_, host, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || strings.Contains(host, "@") {
		return true
	}
	domain := registrableDomain(host)
	if domain == "" {
		return true
	}
	return domain != org
}

func registrableDomain(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}
