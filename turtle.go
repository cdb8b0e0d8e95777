package turtle

import (
	_ "embed"
	"image"
	"image/png"
	"io"
	"log/slog"

	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/canvas"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/aretw0/turtle/pkg/session"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Turtle is a session drawing on its own raster canvas.
// Its methods are those of session.Session (SubmitLine, History, Pose, ...).
type Turtle struct {
	*session.Session
	Raster *canvas.Raster
}

type config struct {
	width, height int
	canvasOpts    []canvas.Option
	sessionOpts   []session.Option
	turnStep      float64
	logger        *slog.Logger
}

// Option defines a functional option for configuring a Turtle.
type Option func(*config)

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(c *config) {
		c.width, c.height = width, height
	}
}

// WithPenWidth sets the stroke width in pixels.
func WithPenWidth(w float64) Option {
	return func(c *config) {
		c.canvasOpts = append(c.canvasOpts, canvas.WithPenWidth(w))
	}
}

// WithTurnStep sets the rotation of left and right on both the session and the canvas.
func WithTurnStep(deg float64) Option {
	return func(c *config) {
		c.turnStep = deg
	}
}

// WithMessenger routes session messages (and the about text) to fn.
func WithMessenger(fn func(string)) Option {
	return func(c *config) {
		c.canvasOpts = append(c.canvasOpts, canvas.WithMessenger(fn))
	}
}

// WithAbout replaces the informational text shown by about.
func WithAbout(text string) Option {
	return func(c *config) {
		c.canvasOpts = append(c.canvasOpts, canvas.WithAbout(func() string { return text }))
	}
}

// WithScriptStore configures where savecommands and loadcommands go.
func WithScriptStore(store ports.ScriptStore) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, session.WithScriptStore(store))
	}
}

// WithImageStore configures where saveimage and loadimage go.
func WithImageStore(store ports.ImageStore) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, session.WithImageStore(store))
	}
}

// WithInteraction configures who answers unsaved-changes prompts and file choosers.
func WithInteraction(i ports.Interaction) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, session.WithInteraction(i))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, session.WithHooks(hooks))
	}
}

// WithMaxReplayDepth bounds how deeply loadcommands may nest.
func WithMaxReplayDepth(n int) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, session.WithMaxReplayDepth(n))
	}
}

// WithMaxReplayLines bounds how many lines one loadcommands may replay in total.
func WithMaxReplayLines(n int) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, session.WithMaxReplayLines(n))
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates a Turtle at the centre of a blank canvas.
func New(opts ...Option) *Turtle {
	c := &config{
		width:    canvas.DefaultWidth,
		height:   canvas.DefaultHeight,
		turnStep: domain.DefaultTurnStep,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rast := canvas.New(c.width, c.height, append(c.canvasOpts, canvas.WithTurnStep(c.turnStep))...)
	sess := session.New(rast, append([]session.Option{
		session.WithOrigin(rast.Origin()),
		session.WithTurnStep(c.turnStep),
		session.WithLogger(c.logger),
	}, c.sessionOpts...)...)

	return &Turtle{Session: sess, Raster: rast}
}

// Image returns a snapshot of the canvas.
func (t *Turtle) Image() image.Image {
	return t.Raster.Rasterize()
}

// WritePNG encodes the canvas as PNG.
func (t *Turtle) WritePNG(w io.Writer) error {
	return png.Encode(w, t.Raster.Rasterize())
}
