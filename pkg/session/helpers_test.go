package session_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/google/go-cmp/cmp"
)

// recordingCanvas logs every call it receives.
type recordingCanvas struct {
	calls    []string
	messages []string
}

func (c *recordingCanvas) MoveBy(d float64) { c.log("moveBy(%g)", d) }
func (c *recordingCanvas) TurnLeftStep() { c.log("turnLeftStep") }
func (c *recordingCanvas) TurnRightStep() { c.log("turnRightStep") }
func (c *recordingCanvas) SetPenDown(down bool) { c.log("setPenDown(%t)", down) }
func (c *recordingCanvas) SetColor(col domain.Color) { c.log("setColor(%s)", col) }
func (c *recordingCanvas) ResetPose() { c.log("resetPose") }
func (c *recordingCanvas) ClearCanvas() { c.log("clearCanvas") }
func (c *recordingCanvas) ShowAbout() { c.log("showAbout") }

func (c *recordingCanvas) Rasterize() image.Image {
	c.log("rasterize")
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

func (c *recordingCanvas) DrawImageAt(img image.Image, x, y int) {
	c.log("drawImageAt(%d,%d)", x, y)
}

func (c *recordingCanvas) DisplayMessage(text string) {
	c.messages = append(c.messages, text)
}

func (c *recordingCanvas) log(format string, args ...any) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

// scripted answers every question the same way and counts the questions.
type scripted struct {
	choice  domain.Choice
	target  string
	source  string
	sources []string // consumed in order by ChooseSource before falling back to source
	dismiss bool
	err     error

	confirms int
	chosen   int
}

func (s *scripted) ConfirmUnsaved(ctx context.Context, a domain.Artifact) (domain.Choice, error) {
	s.confirms++
	return s.choice, s.err
}

func (s *scripted) ChooseDestination(ctx context.Context, a domain.Artifact) (string, bool, error) {
	s.chosen++
	return s.target, !s.dismiss, nil
}

func (s *scripted) ChooseSource(ctx context.Context, a domain.Artifact) (string, bool, error) {
	s.chosen++
	if len(s.sources) > 0 {
		name := s.sources[0]
		s.sources = s.sources[1:]
		return name, !s.dismiss, nil
	}
	return s.source, !s.dismiss, nil
}

var errDisk = errors.New("disk unavailable")

// brokenScripts fails every operation.
type brokenScripts struct{}

func (brokenScripts) Save(context.Context, string, []string) error { return errDisk }
func (brokenScripts) Load(context.Context, string) ([]string, error) { return nil, errDisk }
func (brokenScripts) Delete(context.Context, string) error { return errDisk }
func (brokenScripts) List(context.Context) ([]string, error) { return nil, errDisk }

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}
