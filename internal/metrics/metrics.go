// Package metrics collects counters over the lifetime of a scan.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates scan counters. All methods are safe for
// concurrent use.
type Collector struct {
	pagesInspected atomic.Int64
	pagesFailed    atomic.Int64
	pagesSkipped   atomic.Int64
	outlinksFound  atomic.Int64
	retriesTotal   atomic.Int64
	findingsTotal  atomic.Int64
	screenshots    atomic.Int64
	analyzerCalls  atomic.Int64
	analyzerErrors atomic.Int64
	actionsTotal   atomic.Int64
	actionFailures atomic.Int64

	inspectTimeSum atomic.Int64
	inspectTimeNum atomic.Int64

	severityMu     sync.RWMutex
	severityCounts map[string]*atomic.Int64

	startTime time.Time
}

// New creates a collector anchored at the current time.
func New() *Collector {
	return &Collector{
		severityCounts: make(map[string]*atomic.Int64),
		startTime:      time.Now(),
	}
}

// RecordPageInspected records a completed page inspection.
func (c *Collector) RecordPageInspected(d time.Duration) {
	c.pagesInspected.Add(1)
	c.inspectTimeSum.Add(d.Milliseconds())
	c.inspectTimeNum.Add(1)
}

// RecordPageFailed records a page that exhausted its retries.
func (c *Collector) RecordPageFailed() { c.pagesFailed.Add(1) }

// RecordPageSkipped records a dequeued target that was already visited.
func (c *Collector) RecordPageSkipped() { c.pagesSkipped.Add(1) }

// RecordOutlinks records newly discovered links.
func (c *Collector) RecordOutlinks(n int) { c.outlinksFound.Add(int64(n)) }

// RecordRetry records one retried inspection attempt.
func (c *Collector) RecordRetry() { c.retriesTotal.Add(1) }

// RecordFinding records a finding by severity.
func (c *Collector) RecordFinding(severity string) {
	c.findingsTotal.Add(1)

	c.severityMu.Lock()
	if c.severityCounts[severity] == nil {
		c.severityCounts[severity] = &atomic.Int64{}
	}
	c.severityCounts[severity].Add(1)
	c.severityMu.Unlock()
}

// RecordScreenshot records a captured evidence artifact.
func (c *Collector) RecordScreenshot() { c.screenshots.Add(1) }

// RecordAnalyzerCall records an analyzer invocation and its outcome.
func (c *Collector) RecordAnalyzerCall(err error) {
	c.analyzerCalls.Add(1)
	if err != nil {
		c.analyzerErrors.Add(1)
	}
}

// RecordAction records an attempted page perturbation.
func (c *Collector) RecordAction(failed bool) {
	c.actionsTotal.Add(1)
	if failed {
		c.actionFailures.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	PagesInspected   int64            `json:"pages_inspected"`
	PagesFailed      int64            `json:"pages_failed"`
	PagesSkipped     int64            `json:"pages_skipped"`
	OutlinksFound    int64            `json:"outlinks_found"`
	RetriesTotal     int64            `json:"retries_total"`
	FindingsTotal    int64            `json:"findings_total"`
	FindingsBySev    map[string]int64 `json:"findings_by_severity"`
	Screenshots      int64            `json:"screenshots"`
	AnalyzerCalls    int64            `json:"analyzer_calls"`
	AnalyzerErrors   int64            `json:"analyzer_errors"`
	ActionsTotal     int64            `json:"actions_total"`
	ActionFailures   int64            `json:"action_failures"`
	AvgInspectTimeMs int64            `json:"avg_inspect_time_ms"`
	Elapsed          time.Duration    `json:"elapsed"`
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		PagesInspected: c.pagesInspected.Load(),
		PagesFailed:    c.pagesFailed.Load(),
		PagesSkipped:   c.pagesSkipped.Load(),
		OutlinksFound:  c.outlinksFound.Load(),
		RetriesTotal:   c.retriesTotal.Load(),
		FindingsTotal:  c.findingsTotal.Load(),
		FindingsBySev:  make(map[string]int64),
		Screenshots:    c.screenshots.Load(),
		AnalyzerCalls:  c.analyzerCalls.Load(),
		AnalyzerErrors: c.analyzerErrors.Load(),
		ActionsTotal:   c.actionsTotal.Load(),
		ActionFailures: c.actionFailures.Load(),
		Elapsed:        time.Since(c.startTime),
	}

	if n := c.inspectTimeNum.Load(); n > 0 {
		s.AvgInspectTimeMs = c.inspectTimeSum.Load() / n
	}

	c.severityMu.RLock()
	for sev, count := range c.severityCounts {
		s.FindingsBySev[sev] = count.Load()
	}
	c.severityMu.RUnlock()

	return s
}
