// Package progress provides the terminal progress line for a scan.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Display renders a single-line progress bar during a scan.
type Display struct {
	mu      sync.Mutex
	started bool
	stopped bool
	out     io.Writer

	pagesVisited  atomic.Int64
	pagesQueued   atomic.Int64
	findingsTotal atomic.Int64
	pagesFailed   atomic.Int64
	maxPages      int64

	startTime time.Time
	target    string
	lastLine  string
}

// New creates a progress display writing to stderr.
func New() *Display {
	return &Display{out: os.Stderr}
}

// NewWithWriter creates a progress display writing to w.
func NewWithWriter(w io.Writer) *Display {
	return &Display{out: w}
}

// Start begins the display against a seed URL with a page budget.
func (d *Display) Start(target string, maxPages int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true
	d.startTime = time.Now()
	d.target = target
	d.maxPages = int64(maxPages)
}

// Update redraws the progress line with current scan stats.
func (d *Display) Update(pagesVisited, pagesQueued, findingsTotal, pagesFailed int) {
	d.pagesVisited.Store(int64(pagesVisited))
	d.pagesQueued.Store(int64(pagesQueued))
	d.findingsTotal.Store(int64(findingsTotal))
	d.pagesFailed.Store(int64(pagesFailed))

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.stopped {
		return
	}

	progress := 0
	if pagesQueued == 0 && pagesVisited > 0 {
		progress = 100
	} else if d.maxPages > 0 {
		progress = int(float64(pagesVisited) / float64(d.maxPages) * 100)
		if progress > 99 {
			progress = 99
		}
	}

	elapsed := time.Since(d.startTime)
	speed := float64(0)
	if elapsed.Seconds() > 0 {
		speed = float64(pagesVisited) / elapsed.Seconds()
	}

	barWidth := 30
	filled := int(float64(progress) / 100 * float64(barWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("\r[%s] %3d%% | Pages: %d | Queue: %d | Findings: %d | Failed: %d | %.1f p/s | %s",
		bar, progress, pagesVisited, pagesQueued, findingsTotal, pagesFailed, speed, formatDuration(elapsed))

	if len(line) < len(d.lastLine) {
		fmt.Fprint(d.out, "\r"+strings.Repeat(" ", len(d.lastLine)))
	}
	fmt.Fprint(d.out, line)
	d.lastLine = line
}

// Stop ends the display, moving the cursor past the progress line.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || !d.started {
		return
	}
	d.stopped = true
	fmt.Fprintln(d.out)
}

// PrintSummary prints the final scan summary.
func (d *Display) PrintSummary() {
	duration := time.Since(d.startTime)

	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "  Target:          %s\n", truncateURL(d.target, 60))
	fmt.Fprintf(d.out, "  Duration:        %s\n", formatDuration(duration))
	fmt.Fprintf(d.out, "  Pages Inspected: %d\n", d.pagesVisited.Load())
	fmt.Fprintf(d.out, "  Pages Failed:    %d\n", d.pagesFailed.Load())
	fmt.Fprintf(d.out, "  Findings:        %d\n", d.findingsTotal.Load())
	if duration.Seconds() > 0 {
		fmt.Fprintf(d.out, "  Average Speed:   %.1f pages/sec\n", float64(d.pagesVisited.Load())/duration.Seconds())
	}
	fmt.Fprintln(d.out)
}

func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
