package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.trace.add("navigate", url)
	s.logger.Debug().Str("url", url).Msg("Navigating")
	return s.run(ctx, s.opts.NavTimeout, "navigate to "+url, chromedp.Navigate(url))
}

func (s *Session) URL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, s.opts.ActionTimeout, "read url", chromedp.Location(&url))
	return url, err
}

func (s *Session) Evaluate(ctx context.Context, expression string, res any) error {
	s.trace.add("evaluate", "page script")
	var ignored any
	if res == nil {
		res = &ignored
	}
	err := s.run(ctx, s.opts.ActionTimeout, "evaluate script",
		chromedp.Evaluate(expression, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if res == &ignored && (errors.Is(err, chromedp.ErrJSUndefined) || errors.Is(err, chromedp.ErrJSNull)) {
		return nil
	}
	return err
}

// Settle waits a fixed delay, returning early only when ctx is done.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, 30*time.Second, "screenshot", chromedp.FullScreenshot(&buf, 100))
	return buf, err
}

// HTML returns the outer HTML of the current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, 30*time.Second, "read html", chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to capture page html: %w", err)
	}
	return html, nil
}
