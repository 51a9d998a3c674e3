package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
)

// Activation is a way of triggering a click on an element.
type Activation int

const (
	// ActivatePrimary is the engine's standard click: scroll, wait for
	// visibility and dispatch a pointer click.
	ActivatePrimary Activation = iota
	// ActivateFallback calls the element's click() method directly in the page.
	ActivateFallback
)

func (a Activation) String() string {
	switch a {
	case ActivatePrimary:
		return "primary"
	case ActivateFallback:
		return "fallback"
	}
	return fmt.Sprintf("activation(%d)", int(a))
}

// activationOrder is tried front to back, each variant at most once.
var activationOrder = [...]Activation{ActivatePrimary, ActivateFallback}

const directClickFn = `function() { this.click(); }`

func (a Activation) apply(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	switch a {
	case ActivatePrimary:
		return el.Click(ctx, timeout)
	case ActivateFallback:
		return el.Evaluate(ctx, directClickFn, nil)
	}
	return fmt.Errorf("unknown activation %d", int(a))
}

// activate clicks el with the primary variant and, only if that fails, one
// direct DOM activation. It returns the variant that succeeded. When both
// fail, the fallback's error is returned.
func activate(ctx context.Context, logger arbor.ILogger, el interfaces.Element, primaryTimeout time.Duration) (Activation, error) {
	var lastErr error
	for _, a := range activationOrder {
		err := a.apply(ctx, el, primaryTimeout)
		if err == nil {
			if a != ActivatePrimary {
				logger.Info().Str("element", el.Selector()).Str("activation", a.String()).Msg("Element activated by fallback")
			}
			return a, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return a, ctxErr
		}
		logger.Warn().Err(err).Str("element", el.Selector()).Str("activation", a.String()).Msg("Activation failed")
	}
	return activationOrder[len(activationOrder)-1], lastErr
}
