package runner

import (
	"context"

	"github.com/aretw0/turtle/pkg/session"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a message produced by the session (e.g. "Commands saved.").
	Output(ctx context.Context, msg string) error

	// Input reads the next line from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (prompts, status updates).
	// This is distinct from session messages.
	SystemOutput(ctx context.Context, msg string) error
}

// ReportWriter is implemented by handlers that emit a structured record per submitted line.
// When the handler is a ReportWriter the Runner hands it every Report.
type ReportWriter interface {
	WriteReport(ctx context.Context, rep session.Report) error
}

// ContentRenderer is a function that transforms text before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Messenger adapts a handler into the canvas message sink.
// Output errors are dropped; the canvas has no way to surface them.
func Messenger(ctx context.Context, h IOHandler) func(string) {
	return func(msg string) {
		_ = h.Output(ctx, msg)
	}
}
