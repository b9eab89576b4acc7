// Package scanner implements the breadth-first crawl over a single
// site, delegating each page to a PageInspector and assembling the
// final CrawlReport.
package scanner

import (
	"context"
	"fmt"
	"time"

	scanerrors "github.com/sitesentry/sitesentry/internal/errors"
	"github.com/sitesentry/sitesentry/internal/frontier"
	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/internal/metrics"
	"github.com/sitesentry/sitesentry/internal/ratelimit"
	"github.com/sitesentry/sitesentry/internal/state"
	"github.com/sitesentry/sitesentry/internal/urlutil"
	"github.com/sitesentry/sitesentry/pkg/findings"
)

// Scanner walks a site breadth-first within depth and page bounds.
type Scanner struct {
	config    *Config
	inspector PageInspector
	progress  ProgressFunc
	log       *logger.Logger
	metrics   *metrics.Collector
	pacer     *ratelimit.Pacer
	store     state.Store
}

// New creates a scanner from options.
func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{
		config: DefaultConfig(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.inspector == nil {
		return nil, fmt.Errorf("a page inspector is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// crawlState bundles the frontier structures for one crawl.
type crawlState struct {
	queue   *frontier.Queue
	visited *frontier.VisitedSet
	pages   []PageRecord
	results []*findings.PageResult
	started time.Time
}

// Crawl runs the scan from the configured seed.
func (s *Scanner) Crawl(ctx context.Context) (*CrawlReport, error) {
	seed, ok := urlutil.Normalize(s.config.Seed)
	if !ok {
		return nil, fmt.Errorf("seed URL %q is not crawlable", s.config.Seed)
	}

	cs := &crawlState{
		queue:   frontier.NewQueue(),
		visited: frontier.NewVisitedSet(s.config.MaxPages * 4),
		started: time.Now(),
	}
	if err := cs.queue.Push(&frontier.Target{URL: seed, Depth: 0}); err != nil {
		return nil, err
	}

	return s.run(ctx, seed, cs)
}

// Resume continues a previously saved scan.
func (s *Scanner) Resume(ctx context.Context, saved *state.ScanState) (*CrawlReport, error) {
	if saved == nil {
		return s.Crawl(ctx)
	}

	seed, ok := urlutil.Normalize(saved.SeedURL)
	if !ok {
		return nil, fmt.Errorf("saved seed URL %q is not crawlable", saved.SeedURL)
	}

	cs := &crawlState{
		queue:   frontier.NewQueue(),
		visited: frontier.NewVisitedSet(s.config.MaxPages * 4),
		started: saved.StartedAt,
	}
	cs.visited.AddAll(saved.Visited)
	for i := range saved.Pending {
		t := saved.Pending[i]
		_ = cs.queue.Push(&t)
	}
	for i := range saved.Pages {
		r := saved.Pages[i]
		cs.results = append(cs.results, &r)
	}
	for _, rec := range saved.Records {
		cs.pages = append(cs.pages, PageRecord{URL: rec.URL, Depth: rec.Depth, Status: rec.Status})
	}

	s.log.Infof("resuming scan of %s: %d pages done, %d pending", seed, len(cs.pages), cs.queue.Len())
	return s.run(ctx, seed, cs)
}

func (s *Scanner) run(ctx context.Context, seed string, cs *crawlState) (*CrawlReport, error) {
	retrier := scanerrors.NewRetrier(scanerrors.RetryConfig{
		MaxAttempts:  s.config.MaxRetries,
		InitialDelay: s.config.RetryDelay,
		MaxDelay:     5 * time.Second,
		Multiplier:   1.0,
	})

	pagesVisited := len(cs.pages)
	totalQueued := cs.queue.Len()

	for pagesVisited < s.config.MaxPages {
		if ctx.Err() != nil {
			s.log.Warn("scan cancelled, returning partial report")
			break
		}

		target, err := cs.queue.Pop()
		if err != nil {
			break // frontier drained
		}

		fp, ok := urlutil.Fingerprint(target.URL)
		if !ok {
			continue
		}
		if cs.visited.Has(fp) {
			if s.metrics != nil {
				s.metrics.RecordPageSkipped()
			}
			continue
		}
		cs.visited.Add(fp)
		pagesVisited++

		if s.pacer != nil {
			if err := s.pacer.Wait(ctx); err != nil {
				break
			}
		}

		s.log.PageEvent(target.URL, target.Depth, pagesVisited, cs.queue.Len(), "inspecting page")

		result := s.inspectWithRetry(ctx, retrier, target.URL)
		if result == nil {
			// Exhausted retries. The page is recorded as unavailable
			// and the crawl moves on.
			if s.metrics != nil {
				s.metrics.RecordPageFailed()
			}
			cs.pages = append(cs.pages, PageRecord{URL: target.URL, Depth: target.Depth, Status: 0})
		} else {
			cs.pages = append(cs.pages, PageRecord{URL: target.URL, Depth: target.Depth, Status: result.HTTPStatus})
			cs.results = append(cs.results, result)

			if target.Depth < s.config.MaxDepth {
				totalQueued += s.enqueueOutlinks(cs, seed, target, result.Outlinks)
			}
		}

		if s.progress != nil {
			s.progress(target.URL, pagesVisited, totalQueued)
		}
		s.persist(seed, cs)
	}

	return s.buildReport(seed, cs), nil
}

// enqueueOutlinks pushes same-host, unvisited outlinks at depth+1 and
// returns how many were queued.
func (s *Scanner) enqueueOutlinks(cs *crawlState, seed string, parent *frontier.Target, outlinks []string) int {
	queued := 0
	for _, link := range outlinks {
		normalized, ok := urlutil.Normalize(link)
		if !ok {
			continue
		}
		if !urlutil.SameHost(seed, normalized) {
			continue
		}
		fp, ok := urlutil.Fingerprint(normalized)
		if !ok || cs.visited.Has(fp) {
			continue
		}
		err := cs.queue.Push(&frontier.Target{
			URL:       normalized,
			Depth:     parent.Depth + 1,
			ParentURL: parent.URL,
		})
		if err == nil {
			queued++
		}
	}
	return queued
}

// inspectWithRetry absorbs inspection failures. It returns nil after
// the retry budget is spent; errors never reach the frontier loop.
func (s *Scanner) inspectWithRetry(ctx context.Context, retrier *scanerrors.Retrier, url string) *findings.PageResult {
	var result *findings.PageResult

	outcome := retrier.Do(ctx, url, func(ctx context.Context) error {
		r, err := s.inspector.Inspect(ctx, url)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	if s.metrics != nil && outcome.Attempts > 1 {
		for i := 1; i < outcome.Attempts; i++ {
			s.metrics.RecordRetry()
		}
	}
	if !outcome.Success {
		s.log.ErrorEvent(outcome.LastError, url, "inspect")
		return nil
	}
	return result
}

// persist saves frontier state when a store is configured. Failures
// are logged; resumability is best effort.
func (s *Scanner) persist(seed string, cs *crawlState) {
	if s.store == nil {
		return
	}

	snapshot := &state.ScanState{
		SeedURL:      seed,
		StartedAt:    cs.started,
		Visited:      cs.visited.All(),
		Pending:      cs.queue.Targets(),
		PagesVisited: len(cs.pages),
	}
	for _, p := range cs.pages {
		snapshot.Records = append(snapshot.Records, state.PageRecord{URL: p.URL, Depth: p.Depth, Status: p.Status})
	}
	for _, r := range cs.results {
		snapshot.Pages = append(snapshot.Pages, *r)
	}
	if err := s.store.Save(snapshot); err != nil {
		s.log.Warnf("state save failed: %v", err)
	}
}

// buildReport flattens per-page findings preserving BFS order.
func (s *Scanner) buildReport(seed string, cs *crawlState) *CrawlReport {
	report := &CrawlReport{
		ScannedAt:  cs.started,
		SeedURL:    seed,
		PagesTotal: len(cs.pages),
		Findings:   make([]findings.Finding, 0),
		Pages:      cs.pages,
	}
	for _, r := range cs.results {
		report.Findings = append(report.Findings, r.Findings...)
	}
	report.BugsTotal = len(report.Findings)
	return report
}
