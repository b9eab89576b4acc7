// Package inspect owns one full page inspection: navigate, explore,
// and package the result. The scanner retries at this boundary.
package inspect

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sitesentry/sitesentry/internal/browser"
	scanerrors "github.com/sitesentry/sitesentry/internal/errors"
	"github.com/sitesentry/sitesentry/internal/evidence"
	"github.com/sitesentry/sitesentry/internal/explorer"
	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/internal/metrics"
	"github.com/sitesentry/sitesentry/internal/parser"
	"github.com/sitesentry/sitesentry/internal/urlutil"
	"github.com/sitesentry/sitesentry/pkg/findings"
)

// Config holds inspection settings.
type Config struct {
	// NavigationTimeout bounds the navigate-and-load phase.
	NavigationTimeout time.Duration
}

// DefaultConfig returns inspection defaults.
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 30 * time.Second,
	}
}

// Inspector navigates pages and hands them to the explorer.
type Inspector struct {
	config   Config
	driver   browser.Driver
	explorer *explorer.Explorer
	evidence *evidence.Collector
	log      *logger.Logger
	metrics  *metrics.Collector
}

// New creates an inspector.
func New(config Config, driver browser.Driver, ex *explorer.Explorer, ev *evidence.Collector, log *logger.Logger, m *metrics.Collector) *Inspector {
	if config.NavigationTimeout <= 0 {
		config.NavigationTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Inspector{
		config:   config,
		driver:   driver,
		explorer: ex,
		evidence: ev,
		log:      log,
		metrics:  m,
	}
}

// Inspect opens a fresh page, navigates to pageURL, and runs the full
// exploration. A navigation timeout degrades to a medium finding while
// exploration continues against whatever rendered; other navigation
// failures are returned for the retry layer to handle.
func (i *Inspector) Inspect(ctx context.Context, pageURL string) (*findings.PageResult, error) {
	start := time.Now()

	page, err := i.driver.NewPage(ctx)
	if err != nil {
		return nil, scanerrors.NewBrowserError(pageURL, "new_page", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, i.config.NavigationTimeout)
	defer cancel()

	var timedOut bool
	if err := page.Navigate(navCtx, pageURL); err != nil {
		cerr := scanerrors.Categorize(err, pageURL)
		if cerr.Type != scanerrors.Timeout {
			return nil, cerr
		}
		// The page may have partially rendered; keep going and record
		// the slowness as a finding.
		timedOut = true
		i.log.WithURL(pageURL).Warnf("navigation timed out, exploring partial render")
	}

	pageEvidence, err := i.evidence.Sub(slugForURL(pageURL))
	if err != nil {
		return nil, scanerrors.NewBrowserError(pageURL, "evidence_dir", err)
	}

	result := i.explorer.ExploreComplete(ctx, page, pageURL, pageEvidence)

	if timedOut {
		result.Findings = append(result.Findings, findings.Finding{
			ID:           findings.NewID(),
			Category:     findings.CategoryUI,
			Severity:     findings.SeverityMedium,
			PageURL:      pageURL,
			Summary:      "Page navigation timeout",
			SuggestedFix: "Check if page loads properly or increase timeout values",
		})
	}

	result.Outlinks = i.resolveOutlinks(page, pageURL, result.Outlinks)

	if i.metrics != nil {
		i.metrics.RecordPageInspected(time.Since(start))
		i.metrics.RecordOutlinks(len(result.Outlinks))
	}
	return result, nil
}

// resolveOutlinks turns raw hrefs into absolute crawlable URLs. When
// the live DOM yielded nothing, the serialized HTML is parsed as a
// fallback.
func (i *Inspector) resolveOutlinks(page browser.Page, pageURL string, raw []string) []string {
	if len(raw) == 0 {
		if html, err := page.HTML(); err == nil {
			if links, err := parser.NewOutlinkParser(pageURL).Outlinks(html); err == nil {
				return links
			}
		}
		return []string{}
	}

	resolved := make([]string, 0, len(raw))
	seen := make(map[string]bool)
	for _, href := range raw {
		abs, ok := urlutil.Resolve(pageURL, href)
		if !ok || seen[abs] {
			continue
		}
		seen[abs] = true
		resolved = append(resolved, abs)
	}
	return resolved
}

// slugForURL derives a filesystem-friendly name for a page's evidence
// subdirectory.
func slugForURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "page"
	}
	slug := u.Host + u.Path
	slug = strings.Trim(slug, "/")
	if slug == "" {
		slug = "root"
	}
	slug = strings.ReplaceAll(slug, "/", "_")
	if len(slug) > 80 {
		slug = fmt.Sprintf("%s_%x", slug[:64], len(raw))
	}
	return slug
}
