package browser

import (
	"runtime"
	"time"
)

// Options configures a browser session.
type Options struct {
	Headless      bool
	NoSandbox     bool
	WindowWidth   int
	WindowHeight  int
	ExecPath      string // Chrome binary, empty to let chromedp find one
	Proxy         string
	UserAgent     string
	ActionTimeout time.Duration // default bound for clicks and element resolution
	NavTimeout    time.Duration
	Debug         bool // log CDP traffic at debug level

	// RecordFPS caps how many frames per second Snapshot keeps.
	RecordFPS float64
	// RecordMaxFrames bounds the size of a recording.
	RecordMaxFrames int

	// Redact filters text that leaves the session: logs, console capture and traces.
	Redact func(string) string
}

// DefaultOptions returns headed options for local runs.
func DefaultOptions() Options {
	return Options{
		Headless:        false,
		NoSandbox:       runtime.GOOS == "linux",
		WindowWidth:     1920,
		WindowHeight:    1080,
		ActionTimeout:   10 * time.Second,
		NavTimeout:      30 * time.Second,
		RecordFPS:       2,
		RecordMaxFrames: 240,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.WindowWidth <= 0 {
		o.WindowWidth = d.WindowWidth
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = d.WindowHeight
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = d.ActionTimeout
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = d.NavTimeout
	}
	if o.RecordFPS <= 0 {
		o.RecordFPS = d.RecordFPS
	}
	if o.RecordMaxFrames <= 0 {
		o.RecordMaxFrames = d.RecordMaxFrames
	}
	if o.Redact == nil {
		o.Redact = func(s string) string { return s }
	}
}
