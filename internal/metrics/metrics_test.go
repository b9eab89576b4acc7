package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSnapshotReflectsCounters(t *testing.T) {
	c := New()

	c.RecordPageInspected(100 * time.Millisecond)
	c.RecordPageInspected(300 * time.Millisecond)
	c.RecordPageFailed()
	c.RecordPageSkipped()
	c.RecordOutlinks(7)
	c.RecordRetry()
	c.RecordRetry()
	c.RecordFinding("high")
	c.RecordFinding("high")
	c.RecordFinding("medium")
	c.RecordScreenshot()
	c.RecordAnalyzerCall(nil)
	c.RecordAnalyzerCall(errors.New("backend down"))
	c.RecordAction(false)
	c.RecordAction(true)

	s := c.Snapshot()

	if s.PagesInspected != 2 {
		t.Errorf("PagesInspected = %d, want 2", s.PagesInspected)
	}
	if s.PagesFailed != 1 || s.PagesSkipped != 1 {
		t.Errorf("PagesFailed = %d, PagesSkipped = %d", s.PagesFailed, s.PagesSkipped)
	}
	if s.OutlinksFound != 7 {
		t.Errorf("OutlinksFound = %d, want 7", s.OutlinksFound)
	}
	if s.RetriesTotal != 2 {
		t.Errorf("RetriesTotal = %d, want 2", s.RetriesTotal)
	}
	if s.FindingsTotal != 3 {
		t.Errorf("FindingsTotal = %d, want 3", s.FindingsTotal)
	}
	if s.FindingsBySev["high"] != 2 || s.FindingsBySev["medium"] != 1 {
		t.Errorf("FindingsBySev = %v", s.FindingsBySev)
	}
	if s.AnalyzerCalls != 2 || s.AnalyzerErrors != 1 {
		t.Errorf("AnalyzerCalls = %d, AnalyzerErrors = %d", s.AnalyzerCalls, s.AnalyzerErrors)
	}
	if s.ActionsTotal != 2 || s.ActionFailures != 1 {
		t.Errorf("ActionsTotal = %d, ActionFailures = %d", s.ActionsTotal, s.ActionFailures)
	}
	if s.AvgInspectTimeMs != 200 {
		t.Errorf("AvgInspectTimeMs = %d, want 200", s.AvgInspectTimeMs)
	}
}

func TestEmptySnapshot(t *testing.T) {
	s := New().Snapshot()
	if s.PagesInspected != 0 || s.FindingsTotal != 0 || s.AvgInspectTimeMs != 0 {
		t.Errorf("zero collector snapshot = %+v", s)
	}
	if len(s.FindingsBySev) != 0 {
		t.Errorf("FindingsBySev = %v, want empty", s.FindingsBySev)
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordFinding("low")
				c.RecordAction(j%2 == 0)
				c.RecordOutlinks(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.FindingsTotal != 1000 {
		t.Errorf("FindingsTotal = %d, want 1000", s.FindingsTotal)
	}
	if s.FindingsBySev["low"] != 1000 {
		t.Errorf("FindingsBySev[low] = %d, want 1000", s.FindingsBySev["low"])
	}
	if s.ActionsTotal != 1000 || s.ActionFailures != 500 {
		t.Errorf("ActionsTotal = %d, ActionFailures = %d", s.ActionsTotal, s.ActionFailures)
	}
}
