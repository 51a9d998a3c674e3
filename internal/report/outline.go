package report

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Outline summarises the structure of a captured page: title, headings,
// open dialogs, alerts, buttons and form fields. Field values are never
// included, only names, types and checkbox state.
func Outline(pageHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", collapse(doc.Find("title").First().Text()))

	section(&b, "Headings", doc.Find("h1, h2, h3"), func(s *goquery.Selection) string {
		return goquery.NodeName(s) + ": " + collapse(s.Text())
	})
	section(&b, "Dialogs", doc.Find(`[role="dialog"], dialog[open]`), func(s *goquery.Selection) string {
		return collapse(s.Text())
	})
	section(&b, "Alerts", doc.Find(`[role="alert"], .alert, .error`), func(s *goquery.Selection) string {
		return collapse(s.Text())
	})
	section(&b, "Buttons", doc.Find(`button, [role="button"], input[type="submit"]`), func(s *goquery.Selection) string {
		label := collapse(s.Text())
		if label == "" {
			label, _ = s.Attr("aria-label")
		}
		if _, disabled := s.Attr("disabled"); disabled {
			label += " (disabled)"
		}
		return label
	})
	section(&b, "Fields", doc.Find("input, select, textarea"), describeField)

	return b.String(), nil
}

func section(b *strings.Builder, title string, sel *goquery.Selection, describe func(*goquery.Selection) string) {
	var lines []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if line := strings.TrimSpace(describe(s)); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(b, "  - %s\n", line)
	}
}

func describeField(s *goquery.Selection) string {
	kind := goquery.NodeName(s)
	if t, ok := s.Attr("type"); ok {
		if t == "hidden" {
			return ""
		}
		kind = t
	}

	name := s.AttrOr("name", s.AttrOr("id", ""))
	if name == "" {
		name = "(unnamed)"
	}

	line := fmt.Sprintf("%s [%s]", name, kind)
	if kind == "checkbox" || kind == "radio" {
		if _, checked := s.Attr("checked"); checked {
			line += " checked"
		} else {
			line += " unchecked"
		}
	}
	if _, required := s.Attr("required"); required {
		line += " required"
	}
	return line
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
