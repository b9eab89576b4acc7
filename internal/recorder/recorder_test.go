package recorder

import (
	"strings"
	"testing"
	"time"

	"github.com/sitesentry/sitesentry/pkg/findings"
)

func TestRecorder_IndexesMonotonic(t *testing.T) {
	r := New("https://example.com")

	r.RecordNavigation("https://example.com", "Navigate to page")
	r.RecordViewportChange("1280x800", "Change to desktop viewport")
	r.RecordClick("#menu", "Menu", "Open dropdown")
	r.RecordFill("#email", "a@b.c", "email")
	r.RecordScroll("#footer", "Scroll footer into view")
	r.RecordWait(300*time.Millisecond, "Wait for layout settle")

	steps := r.Steps()
	if len(steps) != 6 {
		t.Fatalf("len(steps) = %d, want 6", len(steps))
	}
	for i, s := range steps {
		if s.Index != i {
			t.Errorf("steps[%d].Index = %d, want %d", i, s.Index, i)
		}
	}
}

func TestRecorder_ActionKinds(t *testing.T) {
	r := New("https://example.com")
	r.RecordNavigation("https://example.com", "Navigate")
	r.RecordViewportChange("375x667", "Mobile")
	r.RecordClick("#btn", "", "Click")
	r.RecordFill("#f", "v", "field")

	want := []findings.ActionKind{
		findings.ActionNavigate,
		findings.ActionViewportChange,
		findings.ActionClick,
		findings.ActionFill,
	}
	steps := r.Steps()
	for i, k := range want {
		if steps[i].ActionKind != k {
			t.Errorf("steps[%d].ActionKind = %q, want %q", i, steps[i].ActionKind, k)
		}
	}
}

func TestRecorder_ViewportLabelSticks(t *testing.T) {
	r := New("https://example.com")
	r.RecordNavigation("https://example.com", "Navigate")
	r.RecordViewportChange("768x1024", "Tablet")
	r.RecordClick("#a", "", "Click in tablet")
	r.RecordViewportChange("375x667", "Mobile")
	r.RecordClick("#b", "", "Click in mobile")

	steps := r.Steps()
	if steps[0].ViewportLabel != "" {
		t.Errorf("pre-viewport step has label %q", steps[0].ViewportLabel)
	}
	if steps[2].ViewportLabel != "768x1024" {
		t.Errorf("tablet click label = %q, want 768x1024", steps[2].ViewportLabel)
	}
	if steps[4].ViewportLabel != "375x667" {
		t.Errorf("mobile click label = %q, want 375x667", steps[4].ViewportLabel)
	}
}

func TestRecorder_StepsIsSnapshot(t *testing.T) {
	r := New("https://example.com")
	r.RecordNavigation("https://example.com", "Navigate")

	snapshot := r.Steps()
	r.RecordClick("#later", "", "Click after snapshot")

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew after later recording: len = %d", len(snapshot))
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRecorder_FormatHuman(t *testing.T) {
	r := New("https://example.com/page")
	r.RecordNavigation("https://example.com/page", "Navigate to page for testing")
	r.RecordViewportChange("1280x800", "Change to desktop viewport")
	r.RecordFill("#search", "very long value", "search")

	out := r.FormatHuman()
	if !strings.Contains(out, "https://example.com/page") {
		t.Errorf("missing page URL in:\n%s", out)
	}
	if !strings.Contains(out, "1. Navigate to page for testing") {
		t.Errorf("missing numbered first step in:\n%s", out)
	}
	if !strings.Contains(out, "[#search]") {
		t.Errorf("missing fill target in:\n%s", out)
	}
}

func TestRecorder_FormatHumanEmpty(t *testing.T) {
	r := New("https://example.com")
	if out := r.FormatHuman(); !strings.Contains(out, "No actions recorded") {
		t.Errorf("FormatHuman() on empty log = %q", out)
	}
}
