package secure

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

// DefaultClickTimeout bounds a standard click issued by Click.
const DefaultClickTimeout = 10 * time.Second

// Actions performs input on page elements with reporting that never contains
// the values typed. Every value passed to Fill or Login is registered with the
// masker before it reaches the engine.
type Actions struct {
	reporter     *steps.Reporter
	masker       *Masker
	clickTimeout time.Duration
}

// NewActions creates secure actions reporting to reporter.
func NewActions(reporter *steps.Reporter, masker *Masker) *Actions {
	if masker == nil {
		masker = NewMasker()
	}
	return &Actions{reporter: reporter, masker: masker, clickTimeout: DefaultClickTimeout}
}

// Reporter returns the reporter the actions record into.
func (a *Actions) Reporter() *steps.Reporter { return a.reporter }

// Masker returns the masker holding every value entered so far.
func (a *Actions) Masker() *Masker { return a.masker }

// FillStepName is the step name recorded by Fill.
func FillStepName(description string) string {
	return fmt.Sprintf("Fill %s (value masked for security)", description)
}

// ClickStepName is the step name recorded by Click.
func ClickStepName(description string) string {
	return "Click " + description
}

// LoginStepName is the step name recorded by Login.
const LoginStepName = "Enter login credentials (all values masked)"

// Fill sets the element's value without it appearing in the step tree or the
// engine's action log.
func (a *Actions) Fill(ctx context.Context, parent *steps.Step, el interfaces.Element, value Value, description string) error {
	a.masker.Register(value)
	return a.reporter.Run(ctx, parent, FillStepName(description), func(ctx context.Context, s *steps.Step) error {
		return a.setValue(ctx, el, value)
	})
}

// Click performs a standard click on the element.
func (a *Actions) Click(ctx context.Context, parent *steps.Step, el interfaces.Element, description string) error {
	return a.reporter.Run(ctx, parent, ClickStepName(description), func(ctx context.Context, s *steps.Step) error {
		if err := el.Click(ctx, a.clickTimeout); err != nil {
			return fmt.Errorf("click %s: %w", description, err)
		}
		return nil
	})
}

// Login fills both credential fields inside a single step with no sub-steps.
func (a *Actions) Login(ctx context.Context, parent *steps.Step, emailEl, passwordEl interfaces.Element, email, password Value) error {
	a.masker.Register(email, password)
	return a.reporter.Run(ctx, parent, LoginStepName, func(ctx context.Context, s *steps.Step) error {
		if err := a.setValue(ctx, emailEl, email); err != nil {
			return err
		}
		return a.setValue(ctx, passwordEl, password)
	})
}

func (a *Actions) setValue(ctx context.Context, el interfaces.Element, value Value) error {
	if err := el.SetValueSilently(ctx, value.Reveal()); err != nil {
		return fmt.Errorf("set value of %s: %w", el.Selector(), err)
	}
	return nil
}
