// Package analyzer defines the boundary to visual analysis backends.
//
// The explorer hands each baseline screenshot to an Analyzer and merges
// whatever findings come back. The engine itself ships with no vision
// backend; Noop keeps the pipeline whole until one is plugged in.
package analyzer

import (
	"context"
	"time"

	"github.com/sitesentry/sitesentry/pkg/findings"
)

// Request carries everything an analysis backend needs about one
// viewport rendering of a page.
type Request struct {
	// ScreenshotPath points at the captured PNG, empty when capture failed.
	ScreenshotPath string
	// Viewport is the viewport the screenshot was taken in.
	Viewport findings.Viewport
	// PageURL is the normalized URL of the page under inspection.
	PageURL string
	// Context is a short free-form description of the page state.
	Context string
	// Steps is the reproduction trail up to the moment of capture.
	Steps []findings.ReproStep
}

// Analyzer inspects a rendered page state and reports findings.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) ([]findings.Finding, error)
}

// Noop is an Analyzer that never reports anything.
type Noop struct{}

func (Noop) Analyze(ctx context.Context, req Request) ([]findings.Finding, error) {
	return nil, nil
}

// Multi fans a request out to several analyzers and concatenates their
// findings. A failing analyzer is skipped; the first error is returned
// alongside whatever the others produced.
type Multi struct {
	Analyzers []Analyzer
}

func NewMulti(analyzers ...Analyzer) *Multi {
	return &Multi{Analyzers: analyzers}
}

func (m *Multi) Analyze(ctx context.Context, req Request) ([]findings.Finding, error) {
	var all []findings.Finding
	var firstErr error
	for _, a := range m.Analyzers {
		found, err := a.Analyze(ctx, req)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		all = append(all, found...)
	}
	return all, firstErr
}

// WithTimeout bounds each Analyze call with its own deadline.
type WithTimeout struct {
	Inner   Analyzer
	Timeout time.Duration
}

func NewWithTimeout(inner Analyzer, timeout time.Duration) *WithTimeout {
	return &WithTimeout{Inner: inner, Timeout: timeout}
}

func (w *WithTimeout) Analyze(ctx context.Context, req Request) ([]findings.Finding, error) {
	if w.Timeout <= 0 {
		return w.Inner.Analyze(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	return w.Inner.Analyze(ctx, req)
}
