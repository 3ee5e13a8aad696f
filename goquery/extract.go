package goquery

import (
	"net/url"
	"strings"
)

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed, is not an HTTP link,
// or resolves to the base page itself. Fragments are stripped.
func resolveURL(base *url.URL, href string) string {
	if isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameSite checks if the resolved URL belongs to the base site.
// A leading "www." is ignored so both spellings of the domain match.
func isSameSite(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return strings.TrimPrefix(u.Host, "www.") == strings.TrimPrefix(base.Host, "www.")
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
