// Package fakebrowser is an in-memory implementation of the engine
// interfaces for unit tests of page objects, secure actions and scenarios.
package fakebrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// Call is one engine operation observed by the fake.
type Call struct {
	Op     string
	Target string
	Arg    string
}

func (c Call) String() string {
	if c.Arg == "" {
		return c.Op + " " + c.Target
	}
	return c.Op + " " + c.Target + " " + c.Arg
}

// Page is a fake browser session holding a URL and a set of elements
// keyed by selector.
type Page struct {
	mu       sync.Mutex
	url      string
	html     string
	calls    []Call
	elements map[string]*Element
	scripts  []script
	closed   bool
	tracing  bool
	frames   int
	console  []string

	NavigateErr error
	LoadErr     error
}

type script struct {
	contains string
	result   any
	err      error
}

var _ interfaces.Session = (*Page)(nil)

// NewPage returns an empty page at about:blank.
func NewPage() *Page {
	return &Page{url: "about:blank", elements: make(map[string]*Element)}
}

// Element returns the fake element for sel, creating a visible element when
// none was configured.
func (p *Page) Element(sel interfaces.Selector) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.element(sel)
}

func (p *Page) element(sel interfaces.Selector) *Element {
	key := sel.String()
	el, ok := p.elements[key]
	if !ok {
		el = &Element{page: p, sel: sel, Visible: true}
		p.elements[key] = el
	}
	return el
}

// SetURL moves the page to url without recording a navigation.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
}

// SetHTML sets the document returned by HTML.
func (p *Page) SetHTML(html string) {
	p.mu.Lock()
	p.html = html
	p.mu.Unlock()
}

// OnEvaluate makes page-level Evaluate calls whose expression contains
// substr decode result, or fail with err when err is not nil.
func (p *Page) OnEvaluate(substr string, result any, err error) {
	p.mu.Lock()
	p.scripts = append(p.scripts, script{contains: substr, result: result, err: err})
	p.mu.Unlock()
}

// Calls returns every operation observed so far.
func (p *Page) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallsOf returns the observed operations named op.
func (p *Page) CallsOf(op string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) record(op, target, arg string) {
	p.calls = append(p.calls, Call{Op: op, Target: target, Arg: arg})
}

func (p *Page) Locate(sel interfaces.Selector) interfaces.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.element(sel)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate", url, "")
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.url = url
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

// WaitForURL never blocks: the URL either matches now or the wait times out.
func (p *Page) WaitForURL(ctx context.Context, pattern interfaces.URLPattern, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait_url", pattern.String(), timeout.String())
	if !pattern.Match(p.url) {
		return &models.TimeoutError{
			Operation: fmt.Sprintf("wait for url %s (current %s)", pattern, p.url),
			Timeout:   timeout,
			Err:       context.DeadlineExceeded,
		}
	}
	return nil
}

func (p *Page) WaitForLoadState(ctx context.Context, state interfaces.LoadState, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait_load", string(state), "")
	return p.LoadErr
}

func (p *Page) Evaluate(ctx context.Context, expression string, res any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("evaluate", "page", "")
	for _, s := range p.scripts {
		if !strings.Contains(expression, s.contains) {
			continue
		}
		if s.err != nil {
			return s.err
		}
		return assign(s.result, res)
	}
	return nil
}

// Settle records the delay without sleeping.
func (p *Page) Settle(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("settle", "", d.String())
	return nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("screenshot", "", "")
	return []byte("\x89PNG fake"), nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("html", "", "")
	return p.html, nil
}

func (p *Page) StartTrace() {
	p.mu.Lock()
	p.tracing = true
	p.mu.Unlock()
}

func (p *Page) StopTrace() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.tracing {
		return nil, nil
	}
	p.tracing = false
	return json.Marshal(p.calls)
}

// Tracing reports whether a trace is being recorded.
func (p *Page) Tracing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracing
}

func (p *Page) Snapshot(ctx context.Context) error {
	p.mu.Lock()
	p.frames++
	p.mu.Unlock()
	return nil
}

func (p *Page) Recording() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frames == 0 {
		return nil, nil
	}
	return []byte("GIF89a fake"), nil
}

// Log adds a console message.
func (p *Page) Log(msg string) {
	p.mu.Lock()
	p.console = append(p.console, msg)
	p.mu.Unlock()
}

func (p *Page) Console() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.console...)
}

func (p *Page) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func assign(v any, res any) error {
	if res == nil || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, res)
}
