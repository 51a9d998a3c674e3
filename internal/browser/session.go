// Package browser drives Chrome through chromedp and implements the engine
// interfaces used by page objects.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	chromedpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// Session is one Chrome process with a single tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
	logger      arbor.ILogger

	net      *netTracker
	trace    *tracer
	recorder *Recorder

	mu      sync.RWMutex
	console []string
	closed  bool
}

var _ interfaces.Session = (*Session)(nil)

// OpenSession launches a browser. The browser lives until Close is called;
// ctx only bounds the startup.
func OpenSession(ctx context.Context, opts Options, logger arbor.ILogger) (*Session, error) {
	opts.applyDefaults()

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("window-position", "0,0"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	redact := opts.Redact
	logf := func(format string, args ...any) {
		logger.Debug().Str("source", "chromedp").Msg(redact(fmt.Sprintf(format, args...)))
	}
	errorf := func(format string, args ...any) {
		logger.Warn().Str("source", "chromedp").Msg(redact(fmt.Sprintf(format, args...)))
	}
	ctxOpts := []chromedp.ContextOption{chromedp.WithLogf(logf), chromedp.WithErrorf(errorf)}
	if opts.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(logf))
	}
	browserCtx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)

	s := &Session{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opts:        opts,
		logger:      logger,
		net:         newNetTracker(),
		trace:       newTracer(redact),
		recorder:    NewRecorder(opts.RecordFPS, opts.RecordMaxFrames),
	}
	chromedp.ListenTarget(browserCtx, s.onEvent)

	// Start the browser without a timeout, or it would close when the timeout fires.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx, network.Enable()) }()
	select {
	case err := <-started:
		if err != nil {
			s.shutdown()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-ctx.Done():
		s.shutdown()
		return nil, ctx.Err()
	}

	logger.Info().
		Bool("headless", opts.Headless).
		Int("width", opts.WindowWidth).
		Int("height", opts.WindowHeight).
		Msg("Browser session started")

	return s, nil
}

func (s *Session) onEvent(ev any) {
	switch ev := ev.(type) {
	case *chromedpruntime.EventConsoleAPICalled:
		args := make([]string, len(ev.Args))
		for i, arg := range ev.Args {
			if arg.Value != nil {
				args[i] = string(arg.Value)
			} else {
				args[i] = arg.Description
			}
		}
		line := s.opts.Redact(fmt.Sprintf("console.%s: %s", ev.Type.String(), strings.Join(args, " ")))
		s.addConsole(line)
		s.trace.add("console", line)
	case *chromedpruntime.EventExceptionThrown:
		line := s.opts.Redact("exception: " + ev.ExceptionDetails.Error())
		s.addConsole(line)
		s.trace.add("exception", line)
	case *network.EventRequestWillBeSent:
		s.net.started(string(ev.RequestID))
		s.trace.add("request", ev.Request.Method+" "+ev.Request.URL)
	case *network.EventLoadingFinished:
		s.net.finished(string(ev.RequestID))
	case *network.EventLoadingFailed:
		s.net.finished(string(ev.RequestID))
		s.trace.add("request_failed", ev.ErrorText)
	case *network.EventResponseReceived:
		s.trace.add("response", fmt.Sprintf("%d %s", ev.Response.Status, ev.Response.URL))
	}
}

func (s *Session) addConsole(line string) {
	s.mu.Lock()
	s.console = append(s.console, line)
	s.mu.Unlock()
}

// Console returns the redacted console messages and exceptions seen so far.
func (s *Session) Console() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.console...)
}

// run executes actions in the browser context, bounded by timeout and by the
// caller's ctx. chromedp actions need a context derived from the browser
// context, so the caller's cancellation is forwarded rather than inherited.
func (s *Session) run(ctx context.Context, timeout time.Duration, op string, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &models.TimeoutError{Operation: op, Timeout: timeout, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Close terminates the browser process.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := chromedp.Cancel(s.ctx)
	s.shutdown()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	s.logger.Debug().Msg("Browser session closed")
	return nil
}

func (s *Session) shutdown() {
	s.cancel()
	s.allocCancel()
}
