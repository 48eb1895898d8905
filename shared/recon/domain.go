package recon

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/bobesa/go-domain-util/domainutil"
)

// NormalizeDomain turns user input such as "HTTPS://Api.Example.com/login" into the bare
// host "api.example.com". IP addresses are passed through.
func NormalizeDomain(raw string) (string, error) {
	input := strings.ToLower(strings.TrimSpace(raw))
	if input == "" {
		return "", fmt.Errorf("Empty domain")
	}

	// If no scheme was provided, url.Parse puts the entire input in Path
	if !strings.Contains(input, "://") {
		input = "http://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("Invalid domain %s: %w", raw, err)
	}

	host := strings.TrimSuffix(parsed.Hostname(), ".")
	if host == "" {
		return "", fmt.Errorf("Invalid domain %s: missing host", raw)
	}

	if net.ParseIP(host) != nil {
		return host, nil
	}

	if domainutil.Domain(host) == "" {
		return "", fmt.Errorf("Invalid domain %s: missing TLD", raw)
	}

	return host, nil
}

// RegistrableDomain returns the apex domain of host, e.g. "example.com" for "api.example.com".
// It is empty for IP addresses and hosts without a known TLD.
func RegistrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return ""
	}
	return domainutil.Domain(host)
}

// TargetURL builds the URL used to reach a target domain from the dashboard.
func TargetURL(domain string) string {
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}

	return fmt.Sprintf("https://%s", domain)
}
