package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	"golang.org/x/image/vector"
	"honnef.co/go/curve"
)

// Defaults used when no option overrides them.
const (
	DefaultWidth    = 800
	DefaultHeight   = 400
	DefaultPenWidth = 2.0
)

// DefaultAbout is the informational text shown by the about command.
const DefaultAbout = "Turtle graphics: type commands such as `move 100`, `left`, `red` or `clear`."

var _ ports.Canvas = (*Raster)(nil)

// Raster is a fixed-size RGBA canvas with a turtle cursor.
// It is not safe for concurrent use; hosts serialize access per session.
type Raster struct {
	img        *image.RGBA
	background color.RGBA
	penWidth   float64
	turnStep   float64
	origin     curve.Point
	pose       domain.Pose
	strokes    int

	messenger func(string)
	about     func() string

	z *vector.Rasterizer
}

// Option configures a Raster.
type Option func(*Raster)

// WithPenWidth sets the stroke width in pixels.
func WithPenWidth(w float64) Option {
	return func(r *Raster) {
		if w > 0 {
			r.penWidth = w
		}
	}
}

// WithTurnStep sets the rotation applied by TurnLeftStep and TurnRightStep.
func WithTurnStep(deg float64) Option {
	return func(r *Raster) {
		r.turnStep = deg
	}
}

// WithMessenger routes DisplayMessage and ShowAbout text to fn.
func WithMessenger(fn func(string)) Option {
	return func(r *Raster) {
		r.messenger = fn
	}
}

// WithAbout replaces the text shown by ShowAbout.
func WithAbout(fn func() string) Option {
	return func(r *Raster) {
		r.about = fn
	}
}

// WithBackground sets the colour used by ClearCanvas and the initial fill.
func WithBackground(c color.Color) Option {
	return func(r *Raster) {
		r.background = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

// New creates a canvas of the given size, filled with the background colour.
// Non-positive sizes fall back to the defaults.
func New(width, height int, opts ...Option) *Raster {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	r := &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		penWidth:   DefaultPenWidth,
		turnStep:   domain.DefaultTurnStep,
		origin:     curve.Pt(float64(width)/2, float64(height)/2),
		messenger:  func(string) {},
		about:      func() string { return DefaultAbout },
		z:          vector.NewRasterizer(width, height),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.pose = domain.DefaultPose(r.origin)
	r.fill()
	return r
}

// Origin is the centre of the canvas, where the turtle starts.
func (r *Raster) Origin() curve.Point {
	return r.origin
}

// Pose returns the cursor state.
func (r *Raster) Pose() domain.Pose {
	return r.pose
}

// Strokes returns how many segments were drawn since the last clear.
func (r *Raster) Strokes() int {
	return r.strokes
}

// Image returns the live raster. Callers must not modify it.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) MoveBy(distance float64) {
	from := r.pose.Position
	to := r.pose.Advance(distance)
	if r.pose.PenDown {
		r.stroke(curve.Line{P0: from, P1: to})
	}
	r.pose.Position = to
}

func (r *Raster) TurnLeftStep() {
	r.pose = r.pose.Turn(-r.turnStep)
}

func (r *Raster) TurnRightStep() {
	r.pose = r.pose.Turn(r.turnStep)
}

func (r *Raster) SetPenDown(down bool) {
	r.pose.PenDown = down
}

func (r *Raster) SetColor(c domain.Color) {
	r.pose.Color = c
}

func (r *Raster) ResetPose() {
	r.pose = domain.DefaultPose(r.origin)
}

func (r *Raster) ClearCanvas() {
	r.fill()
	r.strokes = 0
}

func (r *Raster) ShowAbout() {
	r.messenger(r.about())
}

func (r *Raster) DisplayMessage(text string) {
	r.messenger(text)
}

// Rasterize returns a copy of the canvas.
func (r *Raster) Rasterize() image.Image {
	out := image.NewRGBA(r.img.Bounds())
	copy(out.Pix, r.img.Pix)
	return out
}

func (r *Raster) DrawImageAt(img image.Image, x, y int) {
	b := img.Bounds()
	dst := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+b.Dx(), y+b.Dy())}
	draw.Draw(r.img, dst, img, b.Min, draw.Over)
}

func (r *Raster) fill() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
}

// stroke fills the quad of width penWidth around the visible part of seg.
func (r *Raster) stroke(seg curve.Line) {
	b := r.img.Bounds()
	view := curve.Rect{X0: 0, Y0: 0, X1: float64(b.Dx()), Y1: float64(b.Dy())}.Inflate(r.penWidth, r.penWidth)

	seg, ok := clip(seg, view)
	if !ok {
		return
	}
	dir := seg.P1.Sub(seg.P0)
	if dir.Hypot() == 0 {
		return
	}
	n := curve.Vec(-dir.Y, dir.X).Normalize().Mul(r.penWidth / 2)

	corners := [4]curve.Point{
		seg.P0.Translate(n),
		seg.P1.Translate(n),
		seg.P1.Translate(n.Negate()),
		seg.P0.Translate(n.Negate()),
	}

	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
	r.z.MoveTo(float32(corners[0].X), float32(corners[0].Y))
	for _, c := range corners[1:] {
		r.z.LineTo(float32(c.X), float32(c.Y))
	}
	r.z.ClosePath()
	r.z.Draw(r.img, b, image.NewUniform(r.pose.Color.RGBA()), image.Point{})
	r.strokes++
}

// clip trims l to the rectangle (Liang-Barsky). ok is false when nothing is inside.
func clip(l curve.Line, rect curve.Rect) (curve.Line, bool) {
	d := l.P1.Sub(l.P0)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, l.P0.X - rect.X0},
		{d.X, rect.X1 - l.P0.X},
		{-d.Y, l.P0.Y - rect.Y0},
		{d.Y, rect.Y1 - l.P0.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return curve.Line{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return curve.Line{}, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return curve.Line{}, false
			}
			t1 = min(t1, t)
		}
	}
	return curve.Line{P0: l.Eval(t0), P1: l.Eval(t1)}, true
}
