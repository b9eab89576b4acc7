package urlutil

import (
	"testing"
)

// =============================================================================
// Normalize Tests
// =============================================================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"lowercases host", "https://EXAMPLE.com/Page", "https://example.com/Page", true},
		{"preserves path case", "https://example.com/CaseSensitive", "https://example.com/CaseSensitive", true},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page", true},
		{"strips trailing slash", "https://example.com/page/", "https://example.com/page", true},
		{"root path retained", "https://example.com", "https://example.com/", true},
		{"root slash retained", "https://example.com/", "https://example.com/", true},
		{"query preserved", "https://example.com/search?q=Test", "https://example.com/search?q=Test", true},
		{"port preserved", "https://example.com:8080/page", "https://example.com:8080/page", true},
		{"no scheme", "example.com/page", "", false},
		{"no host", "https://", "", false},
		{"garbage", "://bad", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			if ok != tt.ok {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_FragmentEquality(t *testing.T) {
	withFrag, ok1 := Normalize("https://example.com/docs#install")
	without, ok2 := Normalize("https://example.com/docs")
	if !ok1 || !ok2 {
		t.Fatal("expected both URLs to normalize")
	}
	if withFrag != without {
		t.Errorf("fragment not stripped: %q != %q", withFrag, without)
	}
}

func TestNormalize_TrailingSlashEquality(t *testing.T) {
	a, _ := Normalize("https://example.com/page")
	b, _ := Normalize("https://example.com/page/")
	if a != b {
		t.Errorf("trailing slash forms differ: %q != %q", a, b)
	}
}

// =============================================================================
// Fingerprint Tests
// =============================================================================

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"numeric segment", "https://example.com/user/123", "https://example.com/user/*"},
		{"uuid segment", "https://example.com/item/550e8400-e29b-41d4-a716-446655440000", "https://example.com/item/*"},
		{"uppercase uuid", "https://example.com/item/550E8400-E29B-41D4-A716-446655440000", "https://example.com/item/*"},
		{"mixed segments", "https://example.com/org/42/repo/7", "https://example.com/org/*/repo/*"},
		{"no id segments", "https://example.com/about/team", "https://example.com/about/team"},
		{"alphanumeric not collapsed", "https://example.com/user/abc123", "https://example.com/user/abc123"},
		{"root", "https://example.com/", "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Fingerprint(tt.in)
			if !ok {
				t.Fatalf("Fingerprint(%q) unexpectedly failed", tt.in)
			}
			if got != tt.want {
				t.Errorf("Fingerprint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFingerprint_CollapsesIDVariants(t *testing.T) {
	pairs := [][2]string{
		{"https://example.com/user/123", "https://example.com/user/456"},
		{
			"https://example.com/doc/550e8400-e29b-41d4-a716-446655440000",
			"https://example.com/doc/f47ac10b-58cc-4372-a567-0e02b2c3d479",
		},
	}

	for _, pair := range pairs {
		a, ok1 := Fingerprint(pair[0])
		b, ok2 := Fingerprint(pair[1])
		if !ok1 || !ok2 {
			t.Fatalf("fingerprint failed for %v", pair)
		}
		if a != b {
			t.Errorf("fingerprints differ: %q vs %q", a, b)
		}
	}
}

func TestFingerprint_MalformedURL(t *testing.T) {
	if _, ok := Fingerprint("not a url"); ok {
		t.Error("expected malformed URL to be rejected")
	}
}

// =============================================================================
// SameHost Tests
// =============================================================================

func TestSameHost(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical", "https://example.com/a", "https://example.com/b", true},
		{"case insensitive", "https://EXAMPLE.com", "https://example.COM/x", true},
		{"different host", "https://example.com", "https://other.com", false},
		{"subdomain is different", "https://example.com", "https://www.example.com", false},
		{"port matters", "https://example.com", "https://example.com:8080", false},
		{"same port", "http://example.com:8080/a", "http://example.com:8080/b", true},
		{"scheme ignored", "http://example.com", "https://example.com", true},
		{"empty host", "https://example.com", "/relative/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameHost(tt.a, tt.b); got != tt.want {
				t.Errorf("SameHost(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// =============================================================================
// IsCrawlable / Resolve Tests
// =============================================================================

func TestIsCrawlable(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/page", true},
		{"http://example.com", true},
		{"mailto:someone@example.com", false},
		{"javascript:void(0)", false},
		{"ftp://example.com/file", false},
		{"/relative/only", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCrawlable(tt.in); got != tt.want {
			t.Errorf("IsCrawlable(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
		ok   bool
	}{
		{"absolute ref", "https://example.com/a", "https://example.com/b", "https://example.com/b", true},
		{"relative path", "https://example.com/dir/page", "other", "https://example.com/dir/other", true},
		{"rooted path", "https://example.com/dir/page", "/about", "https://example.com/about", true},
		{"whitespace trimmed", "https://example.com", "  /contact ", "https://example.com/contact", true},
		{"mailto rejected", "https://example.com", "mailto:x@y.z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.base, tt.ref)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q, %q) ok = %v, want %v", tt.base, tt.ref, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}
