// Package browser provides headless Chrome integration via Rod.
package browser

import (
	"context"
	"time"

	"github.com/ysmood/gson"
)

// ClickOptions controls how a click is dispatched.
type ClickOptions struct {
	// Force dispatches the click through the DOM instead of synthesized
	// mouse input, bypassing hit testing.
	Force bool
	// Timeout bounds the click attempt. Zero means the page default.
	Timeout time.Duration
}

// Driver owns a browser process and hands out pages.
type Driver interface {
	// NewPage opens a blank page bound to ctx.
	NewPage(ctx context.Context) (Page, error)
	// Close shuts down the browser process.
	Close() error
}

// Page is a single browser tab.
type Page interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// SetViewport resizes the emulated viewport.
	SetViewport(width, height int) error
	// QueryAll returns all elements matching the CSS selector. A selector
	// with no matches returns an empty slice, not an error.
	QueryAll(selector string) ([]Element, error)
	// Evaluate runs a JS expression in the page and returns its value.
	Evaluate(js string) (gson.JSON, error)
	// Screenshot captures the page as PNG.
	Screenshot(fullPage bool) ([]byte, error)
	// PressEscape sends an Escape keystroke to the page.
	PressEscape() error
	// HTML returns the serialized document.
	HTML() (string, error)
	// StatusCode returns the HTTP status of the main document response,
	// or zero when navigation never produced one.
	StatusCode() int
	// Timings returns navigation timing milestones in milliseconds.
	Timings() map[string]float64
	// Close closes the tab.
	Close() error
}

// Element is a DOM element handle.
type Element interface {
	// Visible reports whether the element is rendered and on screen.
	Visible() (bool, error)
	// Click dispatches a click per opts.
	Click(opts ClickOptions) error
	// Fill replaces the element's current value with value.
	Fill(value string) error
	// Clear empties the element's value.
	Clear() error
	// Attribute returns the named attribute, or "" when absent.
	Attribute(name string) (string, error)
	// Text returns the element's visible text.
	Text() (string, error)
	// ScrollIntoView scrolls the element into the viewport.
	ScrollIntoView() error
	// DOMClick dispatches a bubbling click event directly on the node.
	DOMClick() error
	// QueryAll returns descendant elements matching the CSS selector.
	QueryAll(selector string) ([]Element, error)
}
