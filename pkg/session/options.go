package session

import (
	"log/slog"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	"honnef.co/go/curve"
)

// DefaultMaxReplayDepth bounds loadcommands nesting.
const DefaultMaxReplayDepth = 16

// DefaultMaxReplayLines bounds how many lines one submitted loadcommands may replay, nested replays included.
const DefaultMaxReplayLines = 100000

// Option configures a Session.
type Option func(*Session)

// WithScriptStore configures where savecommands and loadcommands go.
func WithScriptStore(store ports.ScriptStore) Option {
	return func(s *Session) {
		s.scripts = store
	}
}

// WithImageStore configures where saveimage and loadimage go.
func WithImageStore(store ports.ImageStore) Option {
	return func(s *Session) {
		s.images = store
	}
}

// WithInteraction configures who answers unsaved-changes prompts and file choosers.
func WithInteraction(i ports.Interaction) Option {
	return func(s *Session) {
		s.interaction = i
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks. Repeated calls are merged.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithTurnStep sets the rotation of left and right, in degrees.
// It must match the step configured on the canvas.
func WithTurnStep(deg float64) Option {
	return func(s *Session) {
		s.turnStep = deg
	}
}

// WithOrigin sets the default turtle position.
func WithOrigin(origin curve.Point) Option {
	return func(s *Session) {
		s.origin = origin
	}
}

// WithMaxReplayDepth bounds how deeply loadcommands may nest.
func WithMaxReplayDepth(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithMaxReplayLines bounds the total number of lines replayed for one submitted line.
func WithMaxReplayLines(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxLines = n
		}
	}
}
