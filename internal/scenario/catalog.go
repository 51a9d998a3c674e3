package scenario

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/secure"
)

// Deps are the collaborators a scenario is built from. One Deps value serves
// exactly one attempt: Page is that attempt's own browser session.
type Deps struct {
	Page        interfaces.Page
	Actions     *secure.Actions
	Logger      arbor.ILogger
	BaseURL     string
	ServicePath string
	Credentials Credentials

	// ExpectTimeout bounds assertion retries. Zero means DefaultExpectTimeout.
	ExpectTimeout time.Duration
}

func (d Deps) expectTimeout() time.Duration {
	if d.ExpectTimeout <= 0 {
		return DefaultExpectTimeout
	}
	return d.ExpectTimeout
}

// Definition describes a runnable scenario.
type Definition struct {
	Name        string   `yaml:"name"`
	Suite       string   `yaml:"suite"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`

	Build func(d Deps) *Scenario `yaml:"-"`
}

var catalog = []Definition{
	{
		Name:        OpportunityScenario,
		Suite:       OpportunitySuite,
		Description: "Logs in through FusionAuth, submits a service request and checks the confirmation dialog.",
		Tags:        []string{"login", "service-request", "smoke"},
		Build:       NewOpportunity,
	},
	{
		Name:        CancelRequestScenario,
		Suite:       OpportunitySuite,
		Description: "Logs in through FusionAuth, opens the service request form and cancels it.",
		Tags:        []string{"login", "service-request"},
		Build:       NewCancelRequest,
	},
}

// Catalog returns every registered scenario, sorted by name.
func Catalog() []Definition {
	out := append([]Definition(nil), catalog...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the scenario named name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Select returns the catalog scenarios matching any of names or tags. A name
// matches exactly or as a case-insensitive substring. With no names and no
// tags every scenario is selected. Unknown names are an error.
func Select(names, tags []string) ([]Definition, error) {
	all := Catalog()
	if len(names) == 0 && len(tags) == 0 {
		return all, nil
	}

	picked := make(map[string]bool)
	for _, name := range names {
		matched := false
		for _, d := range all {
			if d.Name == name || strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
				picked[d.Name] = true
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
	}
	for _, d := range all {
		for _, tag := range tags {
			if d.HasTag(tag) {
				picked[d.Name] = true
			}
		}
	}

	var out []Definition
	for _, d := range all {
		if picked[d.Name] {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenario has tags %v", tags)
	}
	return out, nil
}

// HasTag reports whether the scenario carries tag.
func (d Definition) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
