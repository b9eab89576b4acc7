package explorer

import (
	"context"
	"fmt"
)

// widgetFamily describes one class of interactive elements and how many
// matches per selector get exercised. The caps keep runtime bounded on
// pages with hundreds of matches.
type widgetFamily struct {
	name        string
	selectors   []string
	perSelector int
	isModal     bool
}

var widgetFamilies = []widgetFamily{
	{
		name: "dropdown",
		selectors: []string{
			".dropdown-toggle",
			`[data-toggle="dropdown"]`,
			`[data-bs-toggle="dropdown"]`,
			".nav-item.dropdown > a",
			"button[aria-expanded]",
			"button[aria-controls]",
			`[data-toggle="collapse"]`,
			`[data-bs-toggle="collapse"]`,
			".hamburger",
			".menu-toggle",
			".navbar-toggler",
		},
		perSelector: 3,
	},
	{
		name: "modal",
		selectors: []string{
			`[data-toggle="modal"]`,
			`[data-bs-toggle="modal"]`,
			`[data-target*="modal"]`,
			`[data-bs-target*="modal"]`,
			".modal-trigger",
		},
		perSelector: 2,
		isModal:     true,
	},
	{
		name: "accordion",
		selectors: []string{
			".accordion-button",
			`[data-toggle="collapse"]`,
			`[data-bs-toggle="collapse"]`,
			"details summary",
			".collapsible-header",
		},
		perSelector: 3,
	},
}

// modalCloseSelectors are conventional close buttons tried after the
// cancel key when dismissing a modal.
var modalCloseSelectors = []string{
	".modal .close",
	`.modal [data-dismiss="modal"]`,
	`.modal [data-bs-dismiss="modal"]`,
}

// exploreWidgets toggles each widget family open, captures the opened
// state, and restores the page. One unreachable widget never stops the
// rest.
func (s *session) exploreWidgets(ctx context.Context) {
	for _, family := range widgetFamilies {
		if ctx.Err() != nil {
			return
		}
		s.exploreFamily(ctx, family)
	}
}

func (s *session) exploreFamily(ctx context.Context, family widgetFamily) {
	log := s.ex.log.WithURL(s.pageURL).WithViewport(s.viewport.Label())
	count := 0

	for _, selector := range family.selectors {
		if ctx.Err() != nil {
			return
		}

		elements, err := s.page.QueryAll(selector)
		if err != nil {
			log.Debugf("%s query %q failed: %v", family.name, selector, err)
			continue
		}

		tested := 0
		for _, el := range elements {
			if tested >= family.perSelector {
				break
			}
			visible, err := el.Visible()
			if err != nil || !visible {
				continue
			}
			tested++
			count++
			s.exerciseWidget(family, selector, el, count)
		}
	}

	if count == 0 {
		log.Debugf("no %s widgets found", family.name)
	}
}

// exerciseWidget opens one widget, screenshots the opened state, and
// closes it again.
func (s *session) exerciseWidget(family widgetFamily, selector string, el elementHandle, ordinal int) {
	log := s.ex.log.WithURL(s.pageURL)

	text, _ := el.Text()
	if len(text) > 30 {
		text = text[:30]
	}

	before, _ := el.Attribute("aria-expanded")

	if err := s.safeClick(el); err != nil {
		if s.ex.metrics != nil {
			s.ex.metrics.RecordAction(true)
		}
		log.ActionFailure(err, s.pageURL, "click", selector)
		return
	}
	if s.ex.metrics != nil {
		s.ex.metrics.RecordAction(false)
	}

	desc := fmt.Sprintf("Open %s %q", family.name, text)
	if text == "" {
		desc = fmt.Sprintf("Open %s %d", family.name, ordinal)
	}
	s.rec.RecordClick(selector, text, desc)
	s.ex.sleep(s.ex.config.AnimationSettle)

	after, _ := el.Attribute("aria-expanded")
	stateChanged := before != after

	shotID := fmt.Sprintf("%s_%d_open_%s", family.name, ordinal, s.viewport.Label())
	path := s.evidence.CaptureForFinding(s.page, shotID)
	if path != "" {
		s.result.ViewportArtifacts = append(s.result.ViewportArtifacts, path)
		if s.ex.metrics != nil {
			s.ex.metrics.RecordScreenshot()
		}
	}
	s.analyze(path, fmt.Sprintf("%s opened", family.name))

	s.closeWidget(family, el, stateChanged)
	s.ex.sleep(s.ex.config.CloseSettle)
}

// closeWidget restores the widget. When its ARIA state actually flipped
// a second click closes it; otherwise the cancel key and, for modals,
// conventional close buttons are tried.
func (s *session) closeWidget(family widgetFamily, el elementHandle, stateChanged bool) {
	if stateChanged && !family.isModal {
		if err := s.safeClick(el); err == nil {
			return
		}
	}

	_ = s.page.PressEscape()

	if family.isModal {
		for _, closeSelector := range modalCloseSelectors {
			buttons, err := s.page.QueryAll(closeSelector)
			if err != nil || len(buttons) == 0 {
				continue
			}
			if visible, err := buttons[0].Visible(); err != nil || !visible {
				continue
			}
			if err := s.clickPlain(buttons[0]); err == nil {
				return
			}
		}
	}
}
