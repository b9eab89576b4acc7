package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sitesentry/sitesentry/pkg/findings"
)

type fakeAnalyzer struct {
	found []findings.Finding
	err   error
	delay time.Duration
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req Request) ([]findings.Finding, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.found, f.err
}

func TestNoopReturnsNothing(t *testing.T) {
	found, err := Noop{}.Analyze(context.Background(), Request{PageURL: "http://example.com/"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Analyze() returned %d findings, want 0", len(found))
	}
}

func TestMultiConcatenatesFindings(t *testing.T) {
	a := &fakeAnalyzer{found: []findings.Finding{{Summary: "one"}}}
	b := &fakeAnalyzer{found: []findings.Finding{{Summary: "two"}, {Summary: "three"}}}

	found, err := NewMulti(a, b).Analyze(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("got %d findings, want 3", len(found))
	}
	if found[0].Summary != "one" || found[2].Summary != "three" {
		t.Errorf("findings out of order: %+v", found)
	}
}

func TestMultiSkipsFailingAnalyzer(t *testing.T) {
	failed := errors.New("backend unavailable")
	a := &fakeAnalyzer{err: failed}
	b := &fakeAnalyzer{found: []findings.Finding{{Summary: "survivor"}}}

	found, err := NewMulti(a, b).Analyze(context.Background(), Request{})
	if !errors.Is(err, failed) {
		t.Errorf("Analyze() error = %v, want %v", err, failed)
	}
	if len(found) != 1 || found[0].Summary != "survivor" {
		t.Errorf("findings = %+v, want the surviving analyzer's result", found)
	}
}

func TestWithTimeoutCancelsSlowAnalyzer(t *testing.T) {
	slow := &fakeAnalyzer{delay: time.Second}
	wrapped := NewWithTimeout(slow, 10*time.Millisecond)

	_, err := wrapped.Analyze(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Analyze() error = %v, want deadline exceeded", err)
	}
}

func TestWithTimeoutZeroMeansUnbounded(t *testing.T) {
	a := &fakeAnalyzer{found: []findings.Finding{{Summary: "ok"}}}
	found, err := NewWithTimeout(a, 0).Analyze(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(found) != 1 {
		t.Errorf("got %d findings, want 1", len(found))
	}
}
