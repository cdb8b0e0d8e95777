package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/session"
)

// Runner reads lines from an IOHandler and submits them to a session
// until the input ends, the user types exit or quit, or the context is cancelled.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on stdin/stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Banner is printed once through SystemOutput before the first read.
	Banner string

	// Headless suppresses the banner and the goodbye message.
	Headless bool
}

// NewRunner creates a Runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the read-submit loop on sess.
// Reaching the end of input or being interrupted is a clean exit.
func (r *Runner) Run(ctx context.Context, sess *session.Session) error {
	handler := r.resolveHandler()
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if !r.Headless && r.Banner != "" {
		if err := handler.SystemOutput(ctx, r.Banner); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		current := signals.Context()

		line, err := handler.Input(current)
		if err != nil {
			if errors.Is(err, io.EOF) || signals.Interrupted() {
				logger.Debug("runner input closed", "err", err)
				r.goodbye(ctx, handler)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			r.goodbye(ctx, handler)
			return nil
		}

		rep := sess.SubmitLine(current, line)
		logger.Debug("line submitted", "line", line, "accepted", rep.Accepted, "err", rep.Err)

		if w, ok := handler.(ReportWriter); ok {
			if err := w.WriteReport(current, rep); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}
}

func (r *Runner) goodbye(ctx context.Context, h IOHandler) {
	if r.Headless {
		return
	}
	_ = h.SystemOutput(context.WithoutCancel(ctx), "Bye.")
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize to prevent creating new pumps on subsequent Run() calls
		r.Handler = NewTextHandler(nil, nil)
	}
	return r.Handler
}
