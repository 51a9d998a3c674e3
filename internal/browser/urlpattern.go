package browser

import (
	"regexp"
	"strings"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
)

type globPattern struct {
	glob string
	re   *regexp.Regexp
}

// Glob matches whole URLs against a glob where "**" matches any characters
// and "*" matches any characters except "/".
func Glob(glob string) interfaces.URLPattern {
	var b strings.Builder
	b.WriteString(`\A`)
	runes := []rune(glob)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(`.*`)
				i++
			} else {
				b.WriteString(`[^/]*`)
			}
		case '?':
			b.WriteString(`[^/]`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`\z`)
	return &globPattern{glob: glob, re: regexp.MustCompile(b.String())}
}

func (g *globPattern) Match(url string) bool { return g.re.MatchString(url) }
func (g *globPattern) String() string        { return g.glob }

type regexpPattern struct{ re *regexp.Regexp }

// Regexp matches URLs against re.
func Regexp(re *regexp.Regexp) interfaces.URLPattern {
	return &regexpPattern{re: re}
}

func (r *regexpPattern) Match(url string) bool { return r.re.MatchString(url) }
func (r *regexpPattern) String() string        { return r.re.String() }

type containsPattern struct{ sub string }

// Contains matches URLs that contain sub.
func Contains(sub string) interfaces.URLPattern {
	return &containsPattern{sub: sub}
}

func (c *containsPattern) Match(url string) bool { return strings.Contains(url, c.sub) }
func (c *containsPattern) String() string        { return "*" + c.sub + "*" }
