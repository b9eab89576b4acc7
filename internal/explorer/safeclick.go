package explorer

import (
	"github.com/sitesentry/sitesentry/internal/browser"
)

// elementHandle is the element surface the exploration logic needs.
type elementHandle = browser.Element

// overlayDismissSelectors are overlay patterns tried between click
// attempts when an element is obstructed.
var overlayDismissSelectors = []string{
	".modal-backdrop",
	".overlay",
	"[data-dismiss]",
	".close",
	`[aria-label="Close"]`,
}

// safeClick runs the layered click fallback ladder. Strategies are
// tried in order; the first success wins. When everything fails the
// caller skips the element and moves on.
func (s *session) safeClick(el elementHandle) error {
	// 1. Plain click with a short timeout.
	err := s.clickPlain(el)
	if err == nil {
		return nil
	}

	// 2. Dismiss whatever is intercepting, then retry.
	s.dismissOverlays()
	if retryErr := s.clickPlain(el); retryErr == nil {
		return nil
	}

	// 3. Forced click ignoring hit testing.
	if forceErr := el.Click(browser.ClickOptions{Force: true, Timeout: s.ex.config.ClickTimeout}); forceErr == nil {
		return nil
	}

	// 4. Scroll into view, then retry.
	if scrollErr := el.ScrollIntoView(); scrollErr == nil {
		if retryErr := s.clickPlain(el); retryErr == nil {
			return nil
		}
	}

	// 5. DOM-level click as last resort.
	if domErr := el.DOMClick(); domErr == nil {
		return nil
	}

	return err
}

func (s *session) clickPlain(el elementHandle) error {
	return el.Click(browser.ClickOptions{Timeout: s.ex.config.ClickTimeout})
}

// dismissOverlays tries the cancel key and known overlay patterns.
func (s *session) dismissOverlays() {
	_ = s.page.PressEscape()

	for _, selector := range overlayDismissSelectors {
		elements, err := s.page.QueryAll(selector)
		if err != nil || len(elements) == 0 {
			continue
		}
		if visible, err := elements[0].Visible(); err != nil || !visible {
			continue
		}
		if err := s.clickPlain(elements[0]); err == nil {
			return
		}
	}
}
