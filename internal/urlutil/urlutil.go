// Package urlutil provides URL canonicalization and fingerprinting for the
// crawl frontier: normalization for comparison, path-parameter collapsing for
// deduplication, and host scoping.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// Wildcard replaces ID-like path segments in a fingerprint.
const Wildcard = "*"

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Normalize canonicalizes a URL for comparison: lowercases the host, strips
// the fragment, and collapses a trailing slash on the path (the root path is
// retained as "/"). Query string and path case are left intact.
// Malformed URLs return ok=false and are treated as non-crawlable.
func Normalize(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		path = "/"
	}
	parsed.Path = path
	parsed.RawPath = ""

	return parsed.String(), true
}

// Fingerprint returns the deduplication key for a URL: the normalized form
// with every ID-like path segment (fully numeric, or canonical UUID shape)
// replaced by a wildcard. "/user/123" and "/user/456" collapse to the same
// key, which keeps ID-parameterized pages from being crawled without bound.
func Fingerprint(raw string) (string, bool) {
	normalized, ok := Normalize(raw)
	if !ok {
		return "", false
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", false
	}

	segments := strings.Split(parsed.Path, "/")
	for i, seg := range segments {
		if isIDSegment(seg) {
			segments[i] = Wildcard
		}
	}
	parsed.Path = strings.Join(segments, "/")
	parsed.RawPath = ""

	return parsed.String(), true
}

// isIDSegment reports whether a path segment looks like an ID parameter.
func isIDSegment(seg string) bool {
	if seg == "" {
		return false
	}
	if isAllDigits(seg) {
		return true
	}
	return uuidRe.MatchString(strings.ToLower(seg))
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SameHost reports whether two URLs share the same host[:port],
// case-insensitively. A subdomain is not the same host as its parent.
func SameHost(a, b string) bool {
	pa, err := url.Parse(a)
	if err != nil {
		return false
	}
	pb, err := url.Parse(b)
	if err != nil {
		return false
	}
	if pa.Host == "" || pb.Host == "" {
		return false
	}
	return strings.EqualFold(pa.Host, pb.Host)
}

// Host extracts the host[:port] of a URL, lowercased. Returns "" for
// malformed input.
func Host(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// IsCrawlable reports whether a URL is a candidate for the frontier at all:
// parseable, http(s), and with a non-empty host.
func IsCrawlable(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// Resolve resolves a possibly relative reference against a base URL. Returns
// ok=false when either side is malformed.
func Resolve(base, ref string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	resolved := b.ResolveReference(r)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}
