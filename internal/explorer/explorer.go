// Package explorer drives the per-page exploration state machine. For
// each viewport it captures a baseline, perturbs forms with adversarial
// values, toggles interactive widgets, and records every action so that
// findings carry a reproduction trail.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitesentry/sitesentry/internal/analyzer"
	"github.com/sitesentry/sitesentry/internal/browser"
	"github.com/sitesentry/sitesentry/internal/evidence"
	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/internal/metrics"
	"github.com/sitesentry/sitesentry/internal/recorder"
	"github.com/sitesentry/sitesentry/pkg/findings"
)

// Config holds exploration tuning knobs.
type Config struct {
	// Viewports is the resize sequence. Order matters and is part of
	// the exploration contract.
	Viewports []findings.Viewport
	// ViewportSettle is the pause after a resize. Screenshots taken
	// sooner race the layout engine, so this must stay at 300ms or
	// above.
	ViewportSettle time.Duration
	// AnimationSettle is the pause after opening a widget.
	AnimationSettle time.Duration
	// CloseSettle is the pause after closing a widget.
	CloseSettle time.Duration
	// ClickTimeout bounds each click attempt.
	ClickTimeout time.Duration
	// AnalyzerTimeout bounds each analyzer call.
	AnalyzerTimeout time.Duration
}

// DefaultConfig returns the exploration defaults.
func DefaultConfig() Config {
	return Config{
		Viewports:       findings.DefaultViewports(),
		ViewportSettle:  500 * time.Millisecond,
		AnimationSettle: 500 * time.Millisecond,
		CloseSettle:     300 * time.Millisecond,
		ClickTimeout:    2 * time.Second,
		AnalyzerTimeout: 30 * time.Second,
	}
}

// Explorer runs the exploration state machine against pages.
type Explorer struct {
	config   Config
	analyzer analyzer.Analyzer
	log      *logger.Logger
	metrics  *metrics.Collector

	// sleep is swappable so tests do not pay real settle delays.
	sleep func(time.Duration)
}

// New creates an explorer. A nil analyzer is replaced with a no-op one.
func New(config Config, an analyzer.Analyzer, log *logger.Logger, m *metrics.Collector) *Explorer {
	if config.ViewportSettle < 300*time.Millisecond {
		config.ViewportSettle = 300 * time.Millisecond
	}
	if len(config.Viewports) == 0 {
		config.Viewports = findings.DefaultViewports()
	}
	if an == nil {
		an = analyzer.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Explorer{
		config:   config,
		analyzer: an,
		log:      log,
		metrics:  m,
		sleep:    time.Sleep,
	}
}

// session carries the mutable state of one page exploration.
type session struct {
	ex       *Explorer
	page     browser.Page
	pageURL  string
	evidence *evidence.Collector
	rec      *recorder.Recorder
	viewport findings.Viewport

	result *findings.PageResult
}

// ExploreComplete runs the full multi-viewport exploration of an
// already-navigated page. It always returns a result; a panic or error
// partway through is converted into a single high-severity finding and
// the partial result is kept.
func (e *Explorer) ExploreComplete(ctx context.Context, page browser.Page, pageURL string, ev *evidence.Collector) *findings.PageResult {
	s := &session{
		ex:       e,
		page:     page,
		pageURL:  pageURL,
		evidence: ev,
		rec:      recorder.New(pageURL),
		result: &findings.PageResult{
			URL:      pageURL,
			Timings:  make(map[string]float64),
			Findings: make([]findings.Finding, 0),
			Outlinks: make([]string, 0),
		},
	}

	s.rec.RecordNavigation(pageURL, "Navigate to page for testing")

	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("exploration panic on %s: %v", pageURL, r)
			s.addFinding(s.errorFinding(fmt.Sprintf("Exploration error: %v", r)))
		}
	}()

	// Timings and outlinks are collected once per page, before any
	// viewport mutation.
	s.result.HTTPStatus = page.StatusCode()
	for k, v := range page.Timings() {
		s.result.Timings[k] = v
	}
	s.result.Outlinks = s.collectOutlinks()

	// Cancellation is not a page defect; the partial result is simply
	// returned as-is.
	if err := s.exploreViewports(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.addFinding(s.errorFinding(fmt.Sprintf("Exploration error: %v", err)))
	}

	return s.result
}

// Run is the single-check entry point kept for check-style callers. It
// shares the full exploration path rather than duplicating it.
func (e *Explorer) Run(ctx context.Context, page browser.Page, pageURL string, ev *evidence.Collector) []findings.Finding {
	return e.ExploreComplete(ctx, page, pageURL, ev).Findings
}

func (s *session) exploreViewports(ctx context.Context) error {
	for _, vp := range s.ex.config.Viewports {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.viewport = vp
		label := vp.Label()
		log := s.ex.log.WithURL(s.pageURL).WithViewport(label)
		log.Debugf("exploring %s viewport", vp.Name)

		if err := s.page.SetViewport(vp.Width, vp.Height); err != nil {
			log.Warnf("viewport resize failed: %v", err)
			continue
		}
		s.rec.RecordViewportChange(label, fmt.Sprintf("Change to %s viewport", vp.Name))
		s.ex.sleep(s.ex.config.ViewportSettle)

		s.captureBaseline()
		s.exploreForms(ctx)
		s.exploreWidgets(ctx)
	}
	return nil
}

// captureBaseline screenshots the untouched page and routes it to the
// analyzer.
func (s *session) captureBaseline() {
	path := s.evidence.CaptureBaseline(s.page, s.viewport)
	if path != "" {
		s.result.ViewportArtifacts = append(s.result.ViewportArtifacts, path)
		if s.ex.metrics != nil {
			s.ex.metrics.RecordScreenshot()
		}
	}
	s.analyze(path, "baseline page state")
}

// analyze forwards a screenshot to the analyzer and merges whatever it
// finds. Analyzer failures are logged and absorbed.
func (s *session) analyze(screenshotPath, stateDesc string) {
	ctx := context.Background()
	cancel := func() {}
	if s.ex.config.AnalyzerTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.ex.config.AnalyzerTimeout)
	}
	defer cancel()

	found, err := s.ex.analyzer.Analyze(ctx, analyzer.Request{
		ScreenshotPath: screenshotPath,
		Viewport:       s.viewport,
		PageURL:        s.pageURL,
		Context:        stateDesc,
		Steps:          s.rec.Steps(),
	})
	if s.ex.metrics != nil {
		s.ex.metrics.RecordAnalyzerCall(err)
	}
	if err != nil {
		s.ex.log.WithURL(s.pageURL).Debugf("analyzer failed (%s): %v", stateDesc, err)
		return
	}
	for _, f := range found {
		s.addFinding(f)
	}
}

// addFinding stamps session context onto a finding before keeping it.
// Reproduction steps are snapshotted at creation time, not retroactively.
func (s *session) addFinding(f findings.Finding) {
	if f.ID == "" {
		f.ID = findings.NewID()
	}
	if f.PageURL == "" {
		f.PageURL = s.pageURL
	}
	if f.Evidence.ViewportLabel == "" && s.viewport.Width > 0 {
		f.Evidence.ViewportLabel = s.viewport.Label()
	}
	if len(f.ReproductionSteps) == 0 {
		f.ReproductionSteps = s.rec.Steps()
	}
	if f.Evidence.ActionLog == "" {
		f.Evidence.ActionLog = s.rec.FormatHuman()
	}

	s.result.Findings = append(s.result.Findings, f)
	if s.ex.metrics != nil {
		s.ex.metrics.RecordFinding(string(f.Severity))
	}
	s.ex.log.FindingEvent(string(f.Category), string(f.Severity), f.PageURL, f.Summary)
}

// errorFinding builds the high-severity finding used when exploration
// itself breaks.
func (s *session) errorFinding(summary string) findings.Finding {
	return findings.Finding{
		Category:     findings.CategoryLogic,
		Severity:     findings.SeverityHigh,
		PageURL:      s.pageURL,
		Summary:      summary,
		SuggestedFix: "Review page structure and exploration compatibility",
	}
}

// collectOutlinks gathers anchor targets from the live DOM.
func (s *session) collectOutlinks() []string {
	links := make([]string, 0)
	seen := make(map[string]bool)

	elements, err := s.page.QueryAll("a[href]")
	if err != nil {
		s.ex.log.WithURL(s.pageURL).Debugf("outlink query failed: %v", err)
		return links
	}
	for _, el := range elements {
		href, err := el.Attribute("href")
		if err != nil || href == "" || seen[href] {
			continue
		}
		seen[href] = true
		links = append(links, href)
	}
	return links
}
