package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

const (
	pollInterval    = 100 * time.Millisecond
	networkIdleTime = 500 * time.Millisecond
)

// poll evaluates cond every pollInterval until it holds, fails, or timeout
// elapses. A cond error ends the wait immediately.
func (s *Session) poll(ctx context.Context, timeout time.Duration, op string, cond func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil && !models.IsTimeout(err) {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &models.TimeoutError{Operation: op, Timeout: timeout, Err: context.DeadlineExceeded}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForURL waits until the page URL matches pattern.
func (s *Session) WaitForURL(ctx context.Context, pattern interfaces.URLPattern, timeout time.Duration) error {
	var last string
	op := fmt.Sprintf("wait for url %s", pattern)
	s.trace.add("wait", op)
	return s.poll(ctx, timeout, op, func(ctx context.Context) (bool, error) {
		var url string
		if err := s.run(ctx, s.opts.ActionTimeout, "read url", chromedp.Location(&url)); err != nil {
			return false, err
		}
		if url != last {
			s.logger.Debug().Str("url", s.opts.Redact(url)).Msg("Saw URL")
			last = url
		}
		return pattern.Match(url), nil
	})
}

// WaitForLoadState waits for the document to reach state. networkidle also
// requires no request to have been in flight for 500ms.
func (s *Session) WaitForLoadState(ctx context.Context, state interfaces.LoadState, timeout time.Duration) error {
	op := fmt.Sprintf("wait for load state %s", state)
	return s.poll(ctx, timeout, op, func(ctx context.Context) (bool, error) {
		var ready string
		if err := s.run(ctx, s.opts.ActionTimeout, "read ready state", chromedp.Evaluate(`document.readyState`, &ready)); err != nil {
			return false, err
		}
		switch state {
		case interfaces.LoadStateDOMContentLoaded:
			return ready != "loading", nil
		case interfaces.LoadStateLoad:
			return ready == "complete", nil
		case interfaces.LoadStateNetworkIdle:
			return ready == "complete" && s.net.idleFor(networkIdleTime, time.Now()), nil
		}
		return false, fmt.Errorf("unknown load state %q", state)
	})
}
