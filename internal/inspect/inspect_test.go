package inspect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ysmood/gson"

	"github.com/sitesentry/sitesentry/internal/browser"
	scanerrors "github.com/sitesentry/sitesentry/internal/errors"
	"github.com/sitesentry/sitesentry/internal/evidence"
	"github.com/sitesentry/sitesentry/internal/explorer"
	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/pkg/findings"
)

// =====================================================================
// Test fixtures
// =====================================================================

type fakeElement struct {
	href string
}

func (e *fakeElement) Visible() (bool, error)                 { return true, nil }
func (e *fakeElement) Click(browser.ClickOptions) error       { return nil }
func (e *fakeElement) Fill(string) error                      { return nil }
func (e *fakeElement) Clear() error                           { return nil }
func (e *fakeElement) Text() (string, error)                  { return "", nil }
func (e *fakeElement) ScrollIntoView() error                  { return nil }
func (e *fakeElement) DOMClick() error                        { return nil }
func (e *fakeElement) QueryAll(string) ([]browser.Element, error) { return nil, nil }
func (e *fakeElement) Attribute(name string) (string, error) {
	if name == "href" {
		return e.href, nil
	}
	return "", nil
}

type fakePage struct {
	navErr error
	hrefs  []string
	html   string
	status int
}

func (p *fakePage) Navigate(ctx context.Context, url string) error { return p.navErr }
func (p *fakePage) SetViewport(int, int) error                     { return nil }
func (p *fakePage) QueryAll(selector string) ([]browser.Element, error) {
	if selector != "a[href]" {
		return nil, nil
	}
	out := make([]browser.Element, 0, len(p.hrefs))
	for _, h := range p.hrefs {
		out = append(out, &fakeElement{href: h})
	}
	return out, nil
}
func (p *fakePage) Evaluate(string) (gson.JSON, error) { return gson.New(nil), nil }
func (p *fakePage) Screenshot(bool) ([]byte, error)    { return []byte("png"), nil }
func (p *fakePage) PressEscape() error                 { return nil }
func (p *fakePage) HTML() (string, error)              { return p.html, nil }
func (p *fakePage) StatusCode() int                    { return p.status }
func (p *fakePage) Timings() map[string]float64 {
	return map[string]float64{"load": 120}
}
func (p *fakePage) Close() error { return nil }

type fakeDriver struct {
	page   *fakePage
	newErr error
}

func (d *fakeDriver) NewPage(ctx context.Context) (browser.Page, error) {
	if d.newErr != nil {
		return nil, d.newErr
	}
	return d.page, nil
}
func (d *fakeDriver) Close() error { return nil }

func newTestInspector(t *testing.T, driver browser.Driver) *Inspector {
	t.Helper()
	ev, err := evidence.NewCollector(t.TempDir(), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	exCfg := explorer.DefaultConfig()
	exCfg.Viewports = findings.DefaultViewports()[:1]
	ex := explorer.New(exCfg, nil, logger.Nop(), nil)
	return New(DefaultConfig(), driver, ex, ev, logger.Nop(), nil)
}

// =====================================================================
// Inspect
// =====================================================================

func TestInspectResolvesOutlinks(t *testing.T) {
	page := &fakePage{
		status: 200,
		hrefs:  []string{"/about", "contact", "mailto:x@example.com", "https://other.example.org/page"},
	}
	ins := newTestInspector(t, &fakeDriver{page: page})

	result, err := ins.Inspect(context.Background(), "http://example.com/docs/")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if result.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d", result.HTTPStatus)
	}

	want := map[string]bool{
		"http://example.com/about":        true,
		"http://example.com/docs/contact": true,
		"https://other.example.org/page":  true,
	}
	if len(result.Outlinks) != len(want) {
		t.Fatalf("Outlinks = %v", result.Outlinks)
	}
	for _, l := range result.Outlinks {
		if !want[l] {
			t.Errorf("unexpected outlink %q", l)
		}
	}
	if result.Timings["load"] != 120 {
		t.Errorf("Timings = %v", result.Timings)
	}
}

func TestInspectFallsBackToHTMLParsing(t *testing.T) {
	page := &fakePage{
		status: 200,
		html:   `<html><body><a href="/hidden">x</a></body></html>`,
	}
	ins := newTestInspector(t, &fakeDriver{page: page})

	result, err := ins.Inspect(context.Background(), "http://example.com/")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if len(result.Outlinks) != 1 || result.Outlinks[0] != "http://example.com/hidden" {
		t.Errorf("Outlinks = %v, want parsed fallback link", result.Outlinks)
	}
}

func TestNavigationTimeoutDegradesToFinding(t *testing.T) {
	page := &fakePage{
		status: 200,
		navErr: context.DeadlineExceeded,
	}
	ins := newTestInspector(t, &fakeDriver{page: page})

	result, err := ins.Inspect(context.Background(), "http://example.com/slow")
	if err != nil {
		t.Fatalf("Inspect() error = %v, want timeout absorbed", err)
	}

	var timeoutFinding *findings.Finding
	for i := range result.Findings {
		if strings.Contains(result.Findings[i].Summary, "navigation timeout") {
			timeoutFinding = &result.Findings[i]
		}
	}
	if timeoutFinding == nil {
		t.Fatalf("no navigation timeout finding in %+v", result.Findings)
	}
	if timeoutFinding.Category != findings.CategoryUI || timeoutFinding.Severity != findings.SeverityMedium {
		t.Errorf("timeout finding = %s/%s, want UI/medium", timeoutFinding.Category, timeoutFinding.Severity)
	}
}

func TestNavigationFailureIsReturned(t *testing.T) {
	page := &fakePage{navErr: errors.New("net::ERR_CONNECTION_REFUSED")}
	ins := newTestInspector(t, &fakeDriver{page: page})

	result, err := ins.Inspect(context.Background(), "http://example.com/down")
	if err == nil {
		t.Fatal("Inspect() = nil error, want navigation failure")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil on hard failure", result)
	}

	var scanErr *scanerrors.ScanError
	if !errors.As(err, &scanErr) {
		t.Errorf("error %v is not a ScanError", err)
	}
}

func TestBrowserFailureIsReturned(t *testing.T) {
	ins := newTestInspector(t, &fakeDriver{newErr: errors.New("browser has crashed")})

	_, err := ins.Inspect(context.Background(), "http://example.com/")
	if err == nil {
		t.Fatal("Inspect() = nil error, want browser failure")
	}
	if scanerrors.GetErrorType(err) != scanerrors.Browser {
		t.Errorf("error type = %v, want Browser", scanerrors.GetErrorType(err))
	}
}

func TestSlugForURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://example.com/", "example.com"},
		{"http://example.com/a/b", "example.com_a_b"},
		{"http://example.com", "example.com"},
	}
	for _, tt := range tests {
		if got := slugForURL(tt.raw); got != tt.want {
			t.Errorf("slugForURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	long := "http://example.com/" + strings.Repeat("x", 200)
	if got := slugForURL(long); len(got) > 80 {
		t.Errorf("slugForURL() length = %d, want capped", len(got))
	}
}
