package fakebrowser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// Element is a configurable fake element. Fields are read under the page
// lock, so configure them before the code under test runs.
type Element struct {
	page *Page
	sel  interfaces.Selector

	Missing bool
	Visible bool
	Content string // text returned by Text
	Value   string // last value set with SetValueSilently

	// ClickErrs are returned by successive Click calls, then nil.
	ClickErrs      []error
	SetValueErr    error
	EvaluateErr    error
	EvaluateResult any

	// OnClick runs after a successful click or a script activation ("this.click()").
	OnClick func(p *Page)
}

var _ interfaces.Element = (*Element)(nil)

func (e *Element) Selector() string { return e.sel.String() }

func (e *Element) notFound() error {
	return &models.ElementNotFoundError{Selector: e.sel.String()}
}

func (e *Element) Click(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := e.page
	p.mu.Lock()
	p.record("click", e.sel.String(), "")
	if e.Missing {
		p.mu.Unlock()
		return e.notFound()
	}
	if len(e.ClickErrs) > 0 {
		err := e.ClickErrs[0]
		e.ClickErrs = e.ClickErrs[1:]
		if err != nil {
			p.mu.Unlock()
			return err
		}
	}
	onClick := e.OnClick
	p.mu.Unlock()

	if onClick != nil {
		onClick(p)
	}
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("scroll", e.sel.String(), "")
	if e.Missing {
		return e.notFound()
	}
	return nil
}

func (e *Element) WaitFor(ctx context.Context, state interfaces.ElementState, timeout time.Duration) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait_for", e.sel.String(), string(state))

	var ok bool
	switch state {
	case interfaces.StateVisible:
		ok = !e.Missing && e.Visible
	case interfaces.StateHidden:
		ok = e.Missing || !e.Visible
	case interfaces.StateAttached:
		ok = !e.Missing
	case interfaces.StateDetached:
		ok = e.Missing
	}
	if ok {
		return nil
	}
	return &models.TimeoutError{
		Operation: fmt.Sprintf("wait for %s to be %s", e.sel.String(), state),
		Timeout:   timeout,
		Err:       context.DeadlineExceeded,
	}
}

func (e *Element) Text(ctx context.Context) (string, error) {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.Missing {
		return "", e.notFound()
	}
	return e.Content, nil
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	return !e.Missing && e.Visible, nil
}

func (e *Element) Evaluate(ctx context.Context, fn string, res any, args ...any) error {
	p := e.page
	p.mu.Lock()
	p.record("evaluate", e.sel.String(), strings.TrimSpace(fn))
	if e.Missing {
		p.mu.Unlock()
		return e.notFound()
	}
	if e.EvaluateErr != nil {
		p.mu.Unlock()
		return e.EvaluateErr
	}
	result := e.EvaluateResult
	onClick := e.OnClick
	p.mu.Unlock()

	if onClick != nil && strings.Contains(fn, "this.click()") {
		onClick(p)
	}
	return assign(result, res)
}

// SetValueSilently stores the value on the element. The value is never
// added to the call log.
func (e *Element) SetValueSilently(ctx context.Context, value string) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("set_value", e.sel.String(), "")
	if e.Missing {
		return e.notFound()
	}
	if e.SetValueErr != nil {
		return e.SetValueErr
	}
	e.Value = value
	return nil
}

// CurrentValue returns the value last set on the element.
func (e *Element) CurrentValue() string {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.Value
}
