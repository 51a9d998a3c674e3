package runner

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/report"
	"github.com/ternarybob/turngreen-e2e/internal/secure"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

const (
	frameTimeout   = 5 * time.Second
	captureTimeout = 10 * time.Second
)

// artifacts collects recording frames after every step and failure evidence
// once per attempt, at the deepest failing step. It is driven by the
// reporter's step-end hook, so calls never overlap.
type artifacts struct {
	session  interfaces.Session
	writer   *report.Writer
	masker   *secure.Masker
	logger   arbor.ILogger
	captured bool
}

func newArtifacts(session interfaces.Session, writer *report.Writer, masker *secure.Masker, logger arbor.ILogger) *artifacts {
	return &artifacts{session: session, writer: writer, masker: masker, logger: logger}
}

func (a *artifacts) onStepEnd(ctx context.Context, s *steps.Step) {
	// The step may have failed because ctx expired; captures still need time.
	ctx = context.WithoutCancel(ctx)

	frameCtx, cancel := context.WithTimeout(ctx, frameTimeout)
	if err := a.session.Snapshot(frameCtx); err != nil {
		a.logger.Debug().Err(err).Msg("Recording frame skipped")
	}
	cancel()

	if s.Status() == models.StepFailed && !s.HasFailedChild() && !a.captured {
		a.captured = true
		a.captureFailure(ctx, s)
	}

	if s.Parent() == nil {
		a.finishAttempt(s)
	}
}

func (a *artifacts) captureFailure(ctx context.Context, s *steps.Step) {
	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	if png, err := a.session.Screenshot(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to capture screenshot")
	} else {
		a.attach(s, "Screenshot", "image/png", png)
	}

	if html, err := a.session.HTML(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to capture page HTML")
	} else if html != "" {
		a.attach(s, "Page HTML", "text/html", []byte(html))
		if outline, err := report.Outline(html); err == nil {
			a.attach(s, "Page outline", "text/plain", []byte(outline))
		}
		url, _ := a.session.URL(ctx)
		if text, err := report.TextSnapshot(html, url); err == nil && text != "" {
			a.attach(s, "Page text", "text/markdown", []byte(text))
		}
	}

	if console := a.session.Console(); len(console) > 0 {
		a.attach(s, "Console", "text/plain", []byte(strings.Join(console, "\n")+"\n"))
	}
}

// finishAttempt attaches the trace (when one was started) and, for failed
// attempts, the recording to the scenario's root step.
func (a *artifacts) finishAttempt(root *steps.Step) {
	if trace, err := a.session.StopTrace(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to stop trace")
	} else if len(trace) > 0 {
		a.attach(root, "Trace", "application/json", trace)
	}

	if root.Status() != models.StepFailed {
		return
	}
	if gif, err := a.session.Recording(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to encode recording")
	} else if len(gif) > 0 {
		a.attach(root, "Recording", "image/gif", gif)
	}
}

func (a *artifacts) attach(s *steps.Step, name, mimeType string, data []byte) {
	if !strings.HasPrefix(mimeType, "image/") {
		data = a.masker.RedactBytes(data)
	}
	att, err := a.writer.Attach(name, mimeType, data)
	if err != nil {
		a.logger.Warn().Err(err).Str("attachment", name).Msg("Failed to write attachment")
		return
	}
	s.Attach(att)
}
