package explorer

import (
	"context"
	"fmt"

	"github.com/sitesentry/sitesentry/internal/browser"
)

// Adversarial values per input type. Each is deliberately overlong to
// stress container sizing and text overflow handling.
var edgeCaseValues = map[string]string{
	"text":     "This is an extremely long text input that should test how the form handles very long content that might overflow containers or break layouts in unexpected ways when the user enters much more text than anticipated by the designer",
	"email":    "very.very.very.long.email.address.that.might.break.layout@extremely.long.domain.name.that.could.cause.issues.example.com",
	"password": "VeryLongPasswordThatMightBreakLayoutsWhenDisplayed123!@#$%^&*()",
	"tel":      "555-123-4567-extension-9999-department-sales-very-long-phone-number",
	"url":      "https://extremely.long.domain.name.that.might.cause.layout.issues.when.displayed.in.forms.example.com/very/long/path/that/continues",
	"number":   "999999999999999999999",
	"search":   "Very long search query with lots of special characters !@#$%^&*()_+ that might break search input layouts and cause overflow",
	"textarea": "This is extremely long textarea content that spans multiple lines and contains various special characters !@#$%^&*()_+ and should test how well the textarea handles large amounts of content without breaking the surrounding layout or causing overflow issues that might affect other page elements. This text continues for a very long time to really test the boundaries of what the textarea can handle without breaking the page layout or causing visual problems for users.",
}

// edgeCaseValue returns the adversarial fill value for an input type.
func edgeCaseValue(inputType string) string {
	if v, ok := edgeCaseValues[inputType]; ok {
		return v
	}
	return edgeCaseValues["text"]
}

// fieldTarget locates one fillable field. When Selector matches several
// elements, Index picks the intended one.
type fieldTarget struct {
	Selector string
	Index    int
	Type     string
	Name     string
}

// formGroup is one unit of form exploration, either a <form> container
// or a single standalone input.
type formGroup struct {
	Kind   string
	Fields []fieldTarget
}

// formDiscoveryJS builds a selector for every visible fillable field.
// Selector priority: id, then name, then a data-* attribute, then
// class+type, then placeholder with a positional index. A placeholder
// alone is not guaranteed unique, so its positional index is always
// reported alongside it.
const formDiscoveryJS = `() => {
	const describe = (input) => {
		const tag = input.tagName.toLowerCase();
		const type = input.type || tag;
		let selector = null;
		let index = 0;

		if (input.id) {
			selector = '#' + CSS.escape(input.id);
		} else if (input.name) {
			selector = tag + '[name="' + input.name + '"]';
		} else {
			for (const attr of input.attributes) {
				if (attr.name.startsWith('data-') && attr.value) {
					selector = tag + '[' + attr.name + '="' + attr.value + '"]';
					break;
				}
			}
		}
		if (!selector && input.classList.length > 0) {
			const candidate = tag + '.' + CSS.escape(input.classList[0]) +
				(input.type ? '[type="' + input.type + '"]' : '');
			if (document.querySelectorAll(candidate).length === 1) {
				selector = candidate;
			}
		}
		if (!selector && input.placeholder) {
			selector = tag + '[placeholder="' + input.placeholder + '"]';
			const matches = Array.from(document.querySelectorAll(selector));
			index = matches.indexOf(input);
			if (index < 0) index = 0;
		}
		if (!selector) return null;

		return {
			selector: selector,
			index: index,
			type: type,
			name: input.name || input.placeholder || ''
		};
	};

	const fillable = 'input:not([type="hidden"]), textarea, select';
	const groups = [];

	document.querySelectorAll('form').forEach((form) => {
		if (form.offsetParent === null) return;
		const fields = Array.from(form.querySelectorAll(fillable))
			.map(describe)
			.filter(Boolean);
		if (fields.length > 0) {
			groups.push({kind: 'form', fields: fields});
		}
	});

	document.querySelectorAll(
		'input:not(form input):not([type="hidden"]), textarea:not(form textarea)'
	).forEach((input) => {
		if (input.offsetParent === null) return;
		const field = describe(input);
		if (field) {
			groups.push({kind: 'standalone', fields: [field]});
		}
	});

	return groups;
}`

// discoverForms enumerates visible form groups on the current page.
func (s *session) discoverForms() []formGroup {
	val, err := s.page.Evaluate(formDiscoveryJS)
	if err != nil {
		s.ex.log.WithURL(s.pageURL).Debugf("form discovery failed: %v", err)
		return nil
	}

	raw, ok := val.Val().([]interface{})
	if !ok {
		return nil
	}

	groups := make([]formGroup, 0, len(raw))
	for _, item := range raw {
		g, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		group := formGroup{Kind: asString(g["kind"])}
		fields, _ := g["fields"].([]interface{})
		for _, fi := range fields {
			f, ok := fi.(map[string]interface{})
			if !ok {
				continue
			}
			group.Fields = append(group.Fields, fieldTarget{
				Selector: asString(f["selector"]),
				Index:    asInt(f["index"]),
				Type:     asString(f["type"]),
				Name:     asString(f["name"]),
			})
		}
		if len(group.Fields) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asInt handles the float64 that JSON numbers decode to, plus the int
// a test fixture may hand over directly.
func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// exploreForms fills every discovered group with adversarial values,
// screenshots the result, and restores the fields afterwards. A failure
// on one field never aborts the rest.
func (s *session) exploreForms(ctx context.Context) {
	groups := s.discoverForms()
	if len(groups) == 0 {
		return
	}

	log := s.ex.log.WithURL(s.pageURL).WithViewport(s.viewport.Label())
	log.Debugf("testing %d form groups", len(groups))

	for i, group := range groups {
		if ctx.Err() != nil {
			return
		}

		for _, field := range group.Fields {
			s.fillField(field)
		}

		shotID := fmt.Sprintf("form_%d_filled_%s", i, s.viewport.Label())
		path := s.evidence.CaptureForFinding(s.page, shotID)
		if path != "" {
			s.result.ViewportArtifacts = append(s.result.ViewportArtifacts, path)
			if s.ex.metrics != nil {
				s.ex.metrics.RecordScreenshot()
			}
		}
		s.analyze(path, fmt.Sprintf("%s filled with edge-case values", group.Kind))

		// Leave the page as found for the next group.
		for _, field := range group.Fields {
			s.clearField(field)
		}
	}
}

// resolveField turns a fieldTarget into a live element handle.
func (s *session) resolveField(field fieldTarget) (browser.Element, bool) {
	elements, err := s.page.QueryAll(field.Selector)
	if err != nil || len(elements) == 0 {
		return nil, false
	}
	idx := field.Index
	if idx >= len(elements) {
		idx = 0
	}
	return elements[idx], true
}

func (s *session) fillField(field fieldTarget) {
	log := s.ex.log.WithURL(s.pageURL)

	target, ok := s.resolveField(field)
	if !ok {
		log.Debugf("field %q not found, skipping", field.Selector)
		return
	}
	if visible, err := target.Visible(); err != nil || !visible {
		log.Debugf("field %q not visible, skipping", field.Selector)
		return
	}

	value := edgeCaseValue(field.Type)
	if err := target.Fill(value); err != nil {
		if s.ex.metrics != nil {
			s.ex.metrics.RecordAction(true)
		}
		log.ActionFailure(err, s.pageURL, "fill", field.Selector)
		return
	}
	if s.ex.metrics != nil {
		s.ex.metrics.RecordAction(false)
	}

	name := field.Name
	if name == "" {
		name = "unknown field"
	}
	s.rec.RecordFill(field.Selector, value, name)
}

func (s *session) clearField(field fieldTarget) {
	target, ok := s.resolveField(field)
	if !ok {
		return
	}
	if err := target.Clear(); err != nil {
		s.ex.log.ActionFailure(err, s.pageURL, "clear", field.Selector)
	}
}
