package ports

import (
	"image"

	"github.com/aretw0/turtle/pkg/domain"
)

// Canvas is the drawing capability held by a session.
// Motion calls mirror the session's own pose updates one for one.
type Canvas interface {
	// MoveBy advances along the current heading by a signed distance,
	// stroking a segment when the pen is down.
	MoveBy(distance float64)
	TurnLeftStep()
	TurnRightStep()
	SetPenDown(down bool)
	SetColor(c domain.Color)
	// ResetPose returns the cursor to its default pose without touching strokes.
	ResetPose()
	// ClearCanvas erases strokes without touching the pose.
	ClearCanvas()
	ShowAbout()

	// Rasterize returns an independent snapshot of the full canvas.
	Rasterize() image.Image
	// DrawImageAt composites img with its top-left corner at (x, y).
	DrawImageAt(img image.Image, x, y int)

	DisplayMessage(text string)
}
