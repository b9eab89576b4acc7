package explorer

import (
	"context"
	"sync"

	"github.com/ysmood/gson"

	"github.com/sitesentry/sitesentry/internal/browser"
)

// =====================================================================
// Fake browser driver
// =====================================================================

type fakeElement struct {
	mu sync.Mutex

	visible  bool
	text     string
	attrs    map[string]string
	ariaFlip bool // toggle aria-expanded on successful click

	clickErr    error
	forceErr    error
	domClickErr error
	fillErr     error

	clicks    int
	domClicks int
	scrolls   int
	filled    []string
	cleared   int
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }

func (e *fakeElement) Click(opts browser.ClickOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if opts.Force {
		if e.forceErr != nil {
			return e.forceErr
		}
	} else if e.clickErr != nil {
		return e.clickErr
	}
	e.clicks++
	e.toggleAria()
	return nil
}

func (e *fakeElement) toggleAria() {
	if !e.ariaFlip {
		return
	}
	if e.attrs == nil {
		e.attrs = map[string]string{}
	}
	if e.attrs["aria-expanded"] == "true" {
		e.attrs["aria-expanded"] = "false"
	} else {
		e.attrs["aria-expanded"] = "true"
	}
}

func (e *fakeElement) Fill(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fillErr != nil {
		return e.fillErr
	}
	e.filled = append(e.filled, value)
	return nil
}

func (e *fakeElement) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared++
	return nil
}

func (e *fakeElement) Attribute(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[name], nil
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) ScrollIntoView() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolls++
	return nil
}

func (e *fakeElement) DOMClick() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.domClickErr != nil {
		return e.domClickErr
	}
	e.domClicks++
	e.toggleAria()
	return nil
}

func (e *fakeElement) QueryAll(selector string) ([]browser.Element, error) {
	return nil, nil
}

type fakePage struct {
	mu sync.Mutex

	queries     map[string][]browser.Element
	evalResult  interface{}
	evalErr     error
	panicOnEval bool

	viewports [][2]int
	escapes   int
	shots     int
	status    int
	timings   map[string]float64
}

func (p *fakePage) Navigate(ctx context.Context, url string) error { return nil }

func (p *fakePage) SetViewport(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewports = append(p.viewports, [2]int{width, height})
	return nil
}

func (p *fakePage) QueryAll(selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[selector], nil
}

func (p *fakePage) Evaluate(js string) (gson.JSON, error) {
	if p.panicOnEval {
		panic("evaluate exploded")
	}
	if p.evalErr != nil {
		return gson.New(nil), p.evalErr
	}
	return gson.New(p.evalResult), nil
}

func (p *fakePage) Screenshot(fullPage bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shots++
	return []byte("png"), nil
}

func (p *fakePage) PressEscape() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.escapes++
	return nil
}

func (p *fakePage) HTML() (string, error) { return "<html></html>", nil }

func (p *fakePage) StatusCode() int {
	if p.status == 0 {
		return 200
	}
	return p.status
}

func (p *fakePage) Timings() map[string]float64 { return p.timings }

func (p *fakePage) Close() error { return nil }

// field builds one entry of the form discovery result.
func field(selector string, index int, typ, name string) map[string]interface{} {
	return map[string]interface{}{
		"selector": selector,
		"index":    index,
		"type":     typ,
		"name":     name,
	}
}

func formGroupJSON(kind string, fields ...map[string]interface{}) map[string]interface{} {
	list := make([]interface{}, len(fields))
	for i, f := range fields {
		list[i] = f
	}
	return map[string]interface{}{"kind": kind, "fields": list}
}
