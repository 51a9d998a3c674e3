package interfaces

import (
	"context"
	"time"
)

// ElementState is the condition Element.WaitFor waits for.
type ElementState string

const (
	StateVisible  ElementState = "visible"
	StateHidden   ElementState = "hidden"
	StateAttached ElementState = "attached"
	StateDetached ElementState = "detached"
)

// LoadState is the document condition Page.WaitForLoadState waits for.
type LoadState string

const (
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateLoad             LoadState = "load"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// URLPattern matches the page URL during navigation waits.
type URLPattern interface {
	Match(url string) bool
	String() string
}

// Element is a lazy handle on one element of a page session.
// The locator is resolved on every call, so a handle stays valid across
// navigations, but never outside the lifetime of its session.
type Element interface {
	// Selector describes the locator for logs and step names.
	Selector() string

	Click(ctx context.Context, timeout time.Duration) error
	ScrollIntoView(ctx context.Context) error
	WaitFor(ctx context.Context, state ElementState, timeout time.Duration) error
	Text(ctx context.Context) (string, error)
	IsVisible(ctx context.Context) (bool, error)

	// Evaluate calls the JavaScript function declaration fn with the element
	// bound to `this` and args passed as JSON values. The result is decoded
	// into res when res is non-nil.
	Evaluate(ctx context.Context, fn string, res any, args ...any) error

	// SetValueSilently assigns the element's value and dispatches input,
	// change and blur events, without going through the engine's action log.
	SetValueSilently(ctx context.Context, value string) error
}

// Page is one browser tab.
type Page interface {
	Locate(sel Selector) Element
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	WaitForURL(ctx context.Context, pattern URLPattern, timeout time.Duration) error
	WaitForLoadState(ctx context.Context, state LoadState, timeout time.Duration) error

	// Evaluate runs a JavaScript expression in the page and decodes the result into res.
	Evaluate(ctx context.Context, expression string, res any) error

	// Settle pauses for a fixed delay so client-side frameworks can catch up.
	Settle(ctx context.Context, d time.Duration) error

	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
}

// Session is a Page that owns a browser process and its diagnostics.
// A session is used by exactly one scenario attempt.
type Session interface {
	Page

	// StartTrace begins recording actions, navigations, console and network
	// events. StopTrace returns the recorded timeline as JSON.
	StartTrace()
	StopTrace() ([]byte, error)

	// Snapshot adds a frame to the session recording. Frames beyond the
	// configured rate are dropped.
	Snapshot(ctx context.Context) error
	// Recording encodes the captured frames as an animated GIF. It returns
	// nil when no frame was captured.
	Recording() ([]byte, error)

	// Console returns the console messages and uncaught exceptions seen so far.
	Console() []string

	Close() error
}
