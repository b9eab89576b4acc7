package scanner

import (
	"context"
	"time"

	"github.com/sitesentry/sitesentry/pkg/findings"
)

// PageRecord is one visited page in BFS order.
type PageRecord struct {
	URL    string `json:"url"`
	Depth  int    `json:"depth"`
	Status int    `json:"status"`
}

// CrawlReport is the final artifact of a scan.
type CrawlReport struct {
	ScannedAt  time.Time          `json:"scannedAt"`
	SeedURL    string             `json:"seedUrl"`
	PagesTotal int                `json:"pagesTotal"`
	BugsTotal  int                `json:"bugsTotal"`
	Findings   []findings.Finding `json:"findings"`
	Pages      []PageRecord       `json:"pages"`
}

// PageInspector performs one full inspection of a URL. The scanner
// retries through this boundary and never sees browser details.
type PageInspector interface {
	Inspect(ctx context.Context, url string) (*findings.PageResult, error)
}

// ProgressFunc is invoked after every inspection attempt, success or
// failure.
type ProgressFunc func(url string, pagesVisited, totalQueued int)
