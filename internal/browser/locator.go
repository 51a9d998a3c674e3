package browser

import (
	"encoding/json"
	"fmt"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
)

type locatorSpec struct {
	Kind    string `json:"kind"`
	Query   string `json:"query"`
	Name    string `json:"name,omitempty"`
	HasText string `json:"hasText,omitempty"`
	Nth     int    `json:"nth,omitempty"`
}

// locatorJS resolves the first spec that matches to a single element, or null.
const locatorJS = `(function(specs) {
  const norm = (t) => (t || '').replace(/\s+/g, ' ').trim().toLowerCase();
  const roles = {
    button: 'button, [role="button"], input[type="button"], input[type="submit"], input[type="reset"]',
    link: 'a[href], [role="link"]',
    checkbox: 'input[type="checkbox"], [role="checkbox"]',
    dialog: 'dialog, [role="dialog"], [role="alertdialog"]',
    heading: 'h1, h2, h3, h4, h5, h6, [role="heading"]',
    textbox: 'input:not([type]), input[type="text"], input[type="email"], input[type="password"], textarea, [role="textbox"]'
  };
  const skip = ['SCRIPT', 'STYLE', 'NOSCRIPT', 'TEMPLATE', 'HEAD'];
  const accName = (el) => norm(el.getAttribute('aria-label') || el.innerText || el.value || el.getAttribute('title'));
  const candidates = (spec) => {
    if (spec.kind === 'text') {
      const q = norm(spec.query);
      const all = Array.from(document.querySelectorAll('body *'))
        .filter((el) => !skip.includes(el.tagName) && norm(el.textContent).includes(q));
      return all.filter((el) => !Array.from(el.children).some((c) => norm(c.textContent).includes(q)));
    }
    if (spec.kind === 'role') {
      let els = Array.from(document.querySelectorAll(roles[spec.query] || '[role="' + spec.query + '"]'));
      if (spec.name) {
        const n = norm(spec.name);
        els = els.filter((el) => accName(el).includes(n));
      }
      return els;
    }
    return Array.from(document.querySelectorAll(spec.query));
  };
  for (const spec of specs) {
    let els = candidates(spec);
    if (spec.hasText) {
      const h = norm(spec.hasText);
      els = els.filter((el) => norm(el.textContent).includes(h));
    }
    const el = els[spec.nth || 0];
    if (el) {
      return el;
    }
  }
  return null;
})(%s)`

// elementStateJS reports the state of the element matched by a locator expression.
const elementStateJS = `(function(el) {
  if (!el) {
    return {found: false, visible: false, text: ''};
  }
  const r = el.getBoundingClientRect();
  const st = window.getComputedStyle(el);
  const visible = r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none';
  return {found: true, visible: visible, text: (el.innerText || el.textContent || '').trim()};
})(%s)`

type elementState struct {
	Found   bool   `json:"found"`
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
}

func specsOf(sel interfaces.Selector) []locatorSpec {
	kind := "css"
	switch sel.Kind {
	case interfaces.SelectorText:
		kind = "text"
	case interfaces.SelectorRole:
		kind = "role"
	}
	specs := []locatorSpec{{Kind: kind, Query: sel.Query, Name: sel.Name, HasText: sel.HasText, Nth: sel.Nth}}
	for _, alt := range sel.Alternatives {
		specs = append(specs, specsOf(alt)...)
	}
	return specs
}

// compileSelector turns a selector into a JavaScript expression evaluating to
// one element or null, usable with chromedp.ByJSPath.
func compileSelector(sel interfaces.Selector) string {
	b, _ := json.Marshal(specsOf(sel))
	return fmt.Sprintf(locatorJS, b)
}

func stateExpression(locator string) string {
	return fmt.Sprintf(elementStateJS, locator)
}
