// Package parser recovers outlinks from raw HTML. It is the fallback
// path for when live DOM queries against the page fail.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sitesentry/sitesentry/internal/urlutil"
)

// OutlinkParser extracts anchor targets from HTML documents.
type OutlinkParser struct {
	baseURL string
}

// NewOutlinkParser creates a parser that resolves relative hrefs
// against baseURL.
func NewOutlinkParser(baseURL string) *OutlinkParser {
	return &OutlinkParser{baseURL: baseURL}
}

// Outlinks parses the document and returns the resolved, crawlable
// anchor targets in document order, deduplicated.
func (p *OutlinkParser) Outlinks(rawHTML string) ([]string, error) {
	node, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(node)

	links := make([]string, 0)
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, ok := urlutil.Resolve(p.baseURL, href)
		if !ok {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}
