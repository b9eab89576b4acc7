// Package recorder accumulates the reproduction trail of one exploration
// session: an append-only, ordered log of every state-changing action, usable
// both as structured steps on a finding and as a human-readable script.
package recorder

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sitesentry/sitesentry/pkg/findings"
)

// Recorder is the append-only action log for one exploration session.
// Indexes are monotonically increasing; steps are never removed or reordered.
type Recorder struct {
	mu       sync.Mutex
	pageURL  string
	steps    []findings.ReproStep
	viewport string
}

// New creates a recorder for one page exploration session.
func New(pageURL string) *Recorder {
	return &Recorder{pageURL: pageURL}
}

func (r *Recorder) append(kind findings.ActionKind, target, value, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps = append(r.steps, findings.ReproStep{
		Index:         len(r.steps),
		ActionKind:    kind,
		Target:        target,
		Value:         value,
		Description:   description,
		Timestamp:     time.Now(),
		ViewportLabel: r.viewport,
	})
}

// RecordNavigation records a page navigation.
func (r *Recorder) RecordNavigation(url, description string) {
	r.append(findings.ActionNavigate, url, "", description)
}

// RecordViewportChange records a viewport resize. The label sticks to every
// subsequent step until the next change.
func (r *Recorder) RecordViewportChange(viewportLabel, description string) {
	r.mu.Lock()
	r.viewport = viewportLabel
	r.mu.Unlock()
	r.append(findings.ActionViewportChange, viewportLabel, "", description)
}

// RecordClick records a click on an element.
func (r *Recorder) RecordClick(selector, elementText, description string) {
	r.append(findings.ActionClick, selector, elementText, description)
}

// RecordFill records filling a form field.
func (r *Recorder) RecordFill(selector, value, fieldName string) {
	r.append(findings.ActionFill, selector, value, fmt.Sprintf("Fill field %q", fieldName))
}

// RecordScroll records scrolling an element into view.
func (r *Recorder) RecordScroll(selector, description string) {
	r.append(findings.ActionScroll, selector, "", description)
}

// RecordWait records an intentional settle delay.
func (r *Recorder) RecordWait(d time.Duration, description string) {
	r.append(findings.ActionWait, "", d.String(), description)
}

// Steps returns a copy of the accumulated steps at this point in the
// session. Findings snapshot this at creation time, not retroactively.
func (r *Recorder) Steps() []findings.ReproStep {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]findings.ReproStep, len(r.steps))
	copy(out, r.steps)
	return out
}

// Len returns the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// FormatHuman renders the log as a numbered, human-readable reproduction
// script.
func (r *Recorder) FormatHuman() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.steps) == 0 {
		return "No actions recorded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reproduction steps for %s:\n", r.pageURL)
	for _, s := range r.steps {
		fmt.Fprintf(&b, "%3d. %s", s.Index+1, s.Description)
		if s.Target != "" && s.ActionKind != findings.ActionNavigate && s.ActionKind != findings.ActionViewportChange {
			fmt.Fprintf(&b, " [%s]", s.Target)
		}
		if s.ViewportLabel != "" {
			fmt.Fprintf(&b, " (viewport %s)", s.ViewportLabel)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
