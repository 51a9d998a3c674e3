package interfaces

import (
	"fmt"
	"strings"
)

// SelectorKind tells the engine how to interpret Selector.Query.
type SelectorKind int

const (
	// SelectorCSS matches elements with a CSS selector.
	SelectorCSS SelectorKind = iota
	// SelectorText matches the smallest elements whose text contains Query,
	// case-insensitively and with whitespace collapsed.
	SelectorText
	// SelectorRole matches elements by ARIA role (Query) and accessible name (Name).
	SelectorRole
)

// Selector is an engine-independent locator description.
type Selector struct {
	Kind    SelectorKind
	Query   string
	Name    string // accessible name, role selectors only
	HasText string // keep only matches whose text contains HasText
	Nth     int    // index among the remaining matches

	// Alternatives are tried in order when this selector matches nothing.
	Alternatives []Selector
}

// CSS returns a selector for a CSS query.
func CSS(query string) Selector {
	return Selector{Kind: SelectorCSS, Query: query}
}

// Text returns a selector for elements containing text.
func Text(text string) Selector {
	return Selector{Kind: SelectorText, Query: text}
}

// Role returns a selector for an ARIA role with the given accessible name.
// An empty name matches any element with the role.
func Role(role, name string) Selector {
	return Selector{Kind: SelectorRole, Query: role, Name: name}
}

// Filter narrows the selector to matches containing text.
func (s Selector) Filter(hasText string) Selector {
	s.HasText = hasText
	return s
}

// At selects the n-th match (0-based).
func (s Selector) At(n int) Selector {
	s.Nth = n
	return s
}

// Or adds a fallback selector used when s matches nothing.
func (s Selector) Or(alt Selector) Selector {
	s.Alternatives = append(append([]Selector(nil), s.Alternatives...), alt)
	return s
}

func (s Selector) String() string {
	var b strings.Builder
	switch s.Kind {
	case SelectorText:
		fmt.Fprintf(&b, "text=%s", s.Query)
	case SelectorRole:
		if s.Name != "" {
			fmt.Fprintf(&b, "role=%s[name=%q]", s.Query, s.Name)
		} else {
			fmt.Fprintf(&b, "role=%s", s.Query)
		}
	default:
		b.WriteString(s.Query)
	}
	if s.HasText != "" {
		fmt.Fprintf(&b, " >> has-text=%q", s.HasText)
	}
	if s.Nth > 0 {
		fmt.Fprintf(&b, " >> nth=%d", s.Nth)
	}
	for _, alt := range s.Alternatives {
		fmt.Fprintf(&b, " || %s", alt.String())
	}
	return b.String()
}
