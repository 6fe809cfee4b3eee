package feed

import (
	"net/url"
	"strings"
)

// UnwrapRedirect extracts the true destination from a Google redirector URL
// (host google.com, path /url, destination in the "url" query parameter).
// Anything else, including URLs that fail to parse, is returned unchanged.
func UnwrapRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := strings.ToLower(u.Hostname())
	if host != "google.com" && !strings.HasSuffix(host, ".google.com") {
		return raw
	}
	if u.Path != "/url" {
		return raw
	}

	if dest := u.Query().Get("url"); dest != "" {
		return dest
	}
	return raw
}
