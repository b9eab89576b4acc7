package parser

import (
	"reflect"
	"testing"
)

func TestOutlinks(t *testing.T) {
	tests := []struct {
		name string
		base string
		html string
		want []string
	}{
		{
			name: "relative and absolute hrefs resolved",
			base: "http://example.com/docs/",
			html: `<html><body>
				<a href="/about">About</a>
				<a href="guide.html">Guide</a>
				<a href="http://example.com/contact">Contact</a>
			</body></html>`,
			want: []string{
				"http://example.com/about",
				"http://example.com/docs/guide.html",
				"http://example.com/contact",
			},
		},
		{
			name: "duplicates collapsed in document order",
			base: "http://example.com/",
			html: `<a href="/a">one</a><a href="/b">two</a><a href="/a">again</a>`,
			want: []string{"http://example.com/a", "http://example.com/b"},
		},
		{
			name: "non-http schemes skipped",
			base: "http://example.com/",
			html: `<a href="mailto:team@example.com">mail</a>
				<a href="javascript:void(0)">js</a>
				<a href="tel:+15551234">call</a>
				<a href="/real">real</a>`,
			want: []string{"http://example.com/real"},
		},
		{
			name: "anchors without href ignored",
			base: "http://example.com/",
			html: `<a name="top">top</a><a href="/page">page</a>`,
			want: []string{"http://example.com/page"},
		},
		{
			name: "no anchors yields empty slice",
			base: "http://example.com/",
			html: `<p>nothing to see</p>`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewOutlinkParser(tt.base).Outlinks(tt.html)
			if err != nil {
				t.Fatalf("Outlinks() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Outlinks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutlinksMalformedHTMLIsTolerated(t *testing.T) {
	p := NewOutlinkParser("http://example.com/")
	got, err := p.Outlinks(`<div><a href="/x">unclosed`)
	if err != nil {
		t.Fatalf("Outlinks() error = %v", err)
	}
	if len(got) != 1 || got[0] != "http://example.com/x" {
		t.Errorf("Outlinks() = %v", got)
	}
}
