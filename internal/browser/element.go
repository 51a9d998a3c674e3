package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// setValueFn assigns a value the way a framework-bound input expects:
// property assignment followed by bubbling input, change and blur events.
const setValueFn = `function(v) {
  this.value = v;
  for (const type of ['input', 'change', 'blur']) {
    this.dispatchEvent(new Event(type, {bubbles: true}));
  }
  return true;
}`

type element struct {
	s    *Session
	sel  interfaces.Selector
	expr string
}

// Locate returns a lazy handle for sel. Nothing is resolved until an
// operation runs.
func (s *Session) Locate(sel interfaces.Selector) interfaces.Element {
	return &element{s: s, sel: sel, expr: compileSelector(sel)}
}

func (e *element) Selector() string { return e.sel.String() }

// wrap converts a timeout into ElementNotFoundError when the locator still
// matches nothing.
func (e *element) wrap(ctx context.Context, err error) error {
	if err == nil || !models.IsTimeout(err) {
		return err
	}
	if p, perr := e.state(ctx); perr == nil && !p.Found {
		return &models.ElementNotFoundError{Selector: e.sel.String(), Err: err}
	}
	return err
}

func (e *element) Click(ctx context.Context, timeout time.Duration) error {
	e.s.trace.add("click", e.sel.String())
	err := e.s.run(ctx, timeout, "click "+e.sel.String(),
		chromedp.Click(e.expr, chromedp.ByJSPath, chromedp.NodeVisible))
	return e.wrap(ctx, err)
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	err := e.s.run(ctx, e.s.opts.ActionTimeout, "scroll to "+e.sel.String(),
		chromedp.ScrollIntoView(e.expr, chromedp.ByJSPath))
	return e.wrap(ctx, err)
}

func (e *element) WaitFor(ctx context.Context, state interfaces.ElementState, timeout time.Duration) error {
	op := fmt.Sprintf("wait for %s to be %s", e.sel.String(), state)
	e.s.trace.add("wait", op)
	return e.s.poll(ctx, timeout, op, func(ctx context.Context) (bool, error) {
		p, err := e.state(ctx)
		if err != nil {
			return false, err
		}
		switch state {
		case interfaces.StateVisible:
			return p.Found && p.Visible, nil
		case interfaces.StateHidden:
			return !p.Found || !p.Visible, nil
		case interfaces.StateAttached:
			return p.Found, nil
		case interfaces.StateDetached:
			return !p.Found, nil
		}
		return false, fmt.Errorf("unknown element state %q", state)
	})
}

func (e *element) state(ctx context.Context) (elementState, error) {
	var p elementState
	err := e.s.run(ctx, e.s.opts.ActionTimeout, "inspect "+e.sel.String(),
		chromedp.Evaluate(stateExpression(e.expr), &p))
	return p, err
}

func (e *element) Text(ctx context.Context) (string, error) {
	p, err := e.state(ctx)
	if err != nil {
		return "", err
	}
	if !p.Found {
		return "", &models.ElementNotFoundError{Selector: e.sel.String()}
	}
	return p.Text, nil
}

func (e *element) IsVisible(ctx context.Context) (bool, error) {
	p, err := e.state(ctx)
	if err != nil {
		return false, err
	}
	return p.Found && p.Visible, nil
}

func (e *element) Evaluate(ctx context.Context, fn string, res any, args ...any) error {
	e.s.trace.add("evaluate", e.sel.String())
	return e.callOn(ctx, "evaluate on "+e.sel.String(), fn, res, args...)
}

// SetValueSilently is not added to the trace.
func (e *element) SetValueSilently(ctx context.Context, value string) error {
	return e.callOn(ctx, "set value of "+e.sel.String(), setValueFn, nil, value)
}

func (e *element) callOn(ctx context.Context, op, fn string, res any, args ...any) error {
	var nodes []*cdp.Node
	err := e.s.run(ctx, e.s.opts.ActionTimeout, op,
		chromedp.Nodes(e.expr, &nodes, chromedp.ByJSPath),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(nodes) == 0 {
				return errors.New("no node")
			}
			obj, err := dom.ResolveNode().WithNodeID(nodes[0].NodeID).Do(ctx)
			if err != nil {
				return fmt.Errorf("resolve node: %w", err)
			}
			defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

			onNode := func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			}
			return chromedp.CallFunctionOn(fn, res, onNode, args...).Do(ctx)
		}),
	)
	if err != nil && ctx.Err() == nil && len(nodes) == 0 {
		return &models.ElementNotFoundError{Selector: e.sel.String(), Err: err}
	}
	return err
}
