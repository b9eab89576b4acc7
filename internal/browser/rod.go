package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Config defines browser configuration.
type Config struct {
	Headless          bool          `json:"headless" yaml:"headless"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	IgnoreHTTPSErrors bool          `json:"ignore_https_errors" yaml:"ignore_https_errors"`
	ExtraHeaders      map[string]string `json:"extra_headers" yaml:"extra_headers"`
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		Timeout:           15 * time.Second,
		UserAgent:         "SiteSentry/1.0 (UI Scanner)",
		IgnoreHTTPSErrors: true,
	}
}

// RodDriver drives a headless Chrome process through Rod.
type RodDriver struct {
	browser *rod.Browser
	config  Config
}

var _ Driver = (*RodDriver)(nil)

// NewRodDriver launches a browser and connects to it.
func NewRodDriver(config Config) (*RodDriver, error) {
	l := launcher.New()

	if config.Headless {
		l = l.Headless(true)
	}

	if config.IgnoreHTTPSErrors {
		l = l.Set("ignore-certificate-errors", "true")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	browser = browser.Timeout(config.Timeout)

	return &RodDriver{
		browser: browser,
		config:  config,
	}, nil
}

// NewPage opens a blank tab configured with the driver's user agent and
// extra headers.
func (d *RodDriver) NewPage(ctx context.Context) (Page, error) {
	page, err := d.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page = page.Context(ctx)

	if d.config.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{
			UserAgent: d.config.UserAgent,
		}.Call(page)
	}

	if len(d.config.ExtraHeaders) > 0 {
		networkHeaders := make(proto.NetworkHeaders)
		for k, v := range d.config.ExtraHeaders {
			networkHeaders[k] = gson.New(v)
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: networkHeaders}.Call(page)
	}

	rp := &rodPage{page: page}
	rp.watchResponses()
	return rp, nil
}

// Close shuts down the browser process.
func (d *RodDriver) Close() error {
	return d.browser.Close()
}

type rodPage struct {
	page *rod.Page

	mu     sync.Mutex
	status int
}

var _ Page = (*rodPage)(nil)

// watchResponses records the status code of the main document response.
func (p *rodPage) watchResponses() {
	go p.page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type != proto.NetworkResourceTypeDocument {
			return
		}
		p.mu.Lock()
		p.status = e.Response.Status
		p.mu.Unlock()
	})()
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) SetViewport(width, height int) error {
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  width,
		Height: height,
	})
}

func (p *rodPage) QueryAll(selector string) ([]Element, error) {
	elements, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (p *rodPage) Evaluate(js string) (gson.JSON, error) {
	result, err := p.page.Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return result.Value, nil
}

func (p *rodPage) Screenshot(fullPage bool) ([]byte, error) {
	if fullPage {
		return p.page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
	}
	return p.page.Screenshot(false, nil)
}

func (p *rodPage) PressEscape() error {
	return p.page.Keyboard.Press(input.Escape)
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) StatusCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Timings reads navigation timing milestones from the performance API.
func (p *rodPage) Timings() map[string]float64 {
	timings := make(map[string]float64)

	js := `() => {
		const out = {};
		try {
			const nav = performance.getEntriesByType('navigation')[0];
			if (nav) {
				out.domContentLoaded = nav.domContentLoadedEventEnd;
				out.load = nav.loadEventEnd;
				out.responseEnd = nav.responseEnd;
			}
			const paint = performance.getEntriesByType('paint');
			for (const p of paint) {
				if (p.name === 'first-contentful-paint') {
					out.firstContentfulPaint = p.startTime;
				}
			}
		} catch (e) {}
		return out;
	}`

	result, err := p.page.Eval(js)
	if err != nil || result == nil {
		return timings
	}
	if m, ok := result.Value.Val().(map[string]interface{}); ok {
		for k, v := range m {
			if f, ok := v.(float64); ok {
				timings[k] = f
			}
		}
	}
	return timings
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodElement struct {
	el *rod.Element
}

var _ Element = (*rodElement)(nil)

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) Click(opts ClickOptions) error {
	el := e.el
	if opts.Timeout > 0 {
		el = el.Timeout(opts.Timeout)
	}
	if opts.Force {
		_, err := el.Eval(`() => this.click()`)
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Fill replaces the element's value. Typed input is preferred so that
// key events fire; JS assignment is the fallback for inputs that reject
// synthetic keystrokes.
func (e *rodElement) Fill(value string) error {
	if err := e.el.SelectAllText(); err == nil {
		if err := e.el.Input(value); err == nil {
			return nil
		}
	}
	_, err := e.el.Eval(`(v) => {
		this.value = v;
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`, value)
	return err
}

func (e *rodElement) Clear() error {
	_, err := e.el.Eval(`() => {
		this.value = '';
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`)
	return err
}

func (e *rodElement) Attribute(name string) (string, error) {
	val, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

func (e *rodElement) Text() (string, error) {
	text, err := e.el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *rodElement) ScrollIntoView() error {
	return e.el.ScrollIntoView()
}

func (e *rodElement) DOMClick() error {
	_, err := e.el.Eval(`() => this.dispatchEvent(new MouseEvent('click', {bubbles: true, cancelable: true}))`)
	return err
}

func (e *rodElement) QueryAll(selector string) ([]Element, error) {
	elements, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}
