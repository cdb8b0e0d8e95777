package domain

import (
	"math"

	"honnef.co/go/curve"
)

// DefaultTurnStep is the rotation, in degrees, applied by a single left or right.
// The legacy commands take no angle argument, so the step is a declared constant.
const DefaultTurnStep = 90.0

// Pose is the turtle state: where it is, where it faces and how its pen is set.
//
// Heading is measured in degrees clockwise from screen-up and is always in [0, 360).
// Position uses canvas coordinates (y grows downwards).
type Pose struct {
	Position curve.Point `json:"position"`
	Heading  float64     `json:"heading"`
	PenDown  bool        `json:"pen_down"`
	Color    Color       `json:"color"`
}

// DefaultPose is the pose a session starts with and returns to on reset.
func DefaultPose(origin curve.Point) Pose {
	return Pose{
		Position: origin,
		Heading:  0,
		PenDown:  true,
		Color:    Black,
	}
}

// Turn returns the pose rotated by deg degrees (positive is clockwise).
func (p Pose) Turn(deg float64) Pose {
	p.Heading = NormalizeHeading(p.Heading + deg)
	return p
}

// Direction is the unit vector the turtle faces.
func (p Pose) Direction() curve.Vec2 {
	// Screen-up is -y, so heading 0 maps to an angle of -90°.
	return curve.VecFromAngle((p.Heading - 90) * math.Pi / 180)
}

// Advance returns the point reached by moving distance units along the heading.
// Negative distances move backwards without turning.
func (p Pose) Advance(distance float64) curve.Point {
	return p.Position.Translate(p.Direction().Mul(distance))
}

// Finite reports whether the position holds no NaN or infinite coordinate.
func (p Pose) Finite() bool {
	return !p.Position.IsNaN() && !p.Position.IsInf()
}

// NormalizeHeading folds any angle into [0, 360).
func NormalizeHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	if h == 360 {
		h = 0
	}
	return h
}
