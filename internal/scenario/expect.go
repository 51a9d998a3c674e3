package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// DefaultExpectTimeout bounds how long an expectation retries.
const DefaultExpectTimeout = 5 * time.Second

const expectPollInterval = 100 * time.Millisecond

// ExpectVisible asserts that el becomes visible within timeout.
func ExpectVisible(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	err := el.WaitFor(ctx, interfaces.StateVisible, timeout)
	if err == nil {
		return nil
	}
	if models.IsTimeout(err) {
		return &models.AssertionError{
			Subject:  el.Selector(),
			Expected: "to be visible",
			Actual:   fmt.Sprintf("not visible after %v", timeout),
		}
	}
	return err
}

// ExpectHidden asserts that el stops being visible within timeout. A detached
// element counts as hidden.
func ExpectHidden(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(expectPollInterval)
	defer ticker.Stop()

	for {
		visible, err := el.IsVisible(ctx)
		if err != nil {
			return err
		}
		if !visible {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &models.AssertionError{
				Subject:  el.Selector(),
				Expected: "to be hidden",
				Actual:   fmt.Sprintf("still visible after %v", timeout),
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ExpectContainsText asserts that the text of el contains want within timeout.
func ExpectContainsText(ctx context.Context, el interfaces.Element, want string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(expectPollInterval)
	defer ticker.Stop()

	actual := "no matching element"
	for {
		text, err := el.Text(ctx)
		switch {
		case err == nil:
			if strings.Contains(text, want) {
				return nil
			}
			actual = fmt.Sprintf("%q", text)
		case ctx.Err() != nil:
			return ctx.Err()
		}

		if !time.Now().Before(deadline) {
			return &models.AssertionError{
				Subject:  el.Selector(),
				Expected: fmt.Sprintf("to contain text %q", want),
				Actual:   actual,
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
