package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/interpreter"
	"github.com/aretw0/turtle/pkg/ports"
	"honnef.co/go/curve"
)

// User-facing messages.
const (
	MsgImageSaved      = "Image saved successfully."
	MsgImageSaveFailed = "Failed to save image."
	MsgImageLoaded     = "Image loaded successfully."
	MsgImageLoadFailed = "Failed to load image."
	MsgScriptSaved     = "Commands saved."
	MsgScriptSaveFail  = "Failed to save commands."
	MsgScriptLoaded    = "Commands loaded and executed."
	MsgScriptLoadFail  = "Failed to load commands."
	MsgNestingTooDeep  = "Script nesting too deep."
	MsgScriptCycle     = "Script loads itself."
	MsgReplayTooLong   = "Script replay too long."
)

// Session is one turtle: its pose, its history and its unsaved-changes guards.
// It is not safe for concurrent use; lines must be submitted one at a time
// (Manager does this for multi-client hosts).
type Session struct {
	canvas      ports.Canvas
	scripts     ports.ScriptStore
	images      ports.ImageStore
	interaction ports.Interaction
	logger      *slog.Logger
	hooks       domain.LifecycleHooks

	turnStep float64
	origin   curve.Point
	maxDepth int
	maxLines int

	pose    domain.Pose
	history []string
	image   domain.Guard
	script  domain.Guard

	depth     int
	replaying []string
	replayed  int
	reports   []*Report
}

// New creates a session drawing on canvas.
func New(canvas ports.Canvas, opts ...Option) *Session {
	s := &Session{
		canvas:      canvas,
		interaction: dismissed{},
		logger:      logging.NewNop(),
		turnStep:    domain.DefaultTurnStep,
		maxDepth:    DefaultMaxReplayDepth,
		maxLines:    DefaultMaxReplayLines,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pose = domain.DefaultPose(s.origin)
	return s
}

// SubmitLine parses and applies one line of text.
// Parse failures are displayed and reported; they never change state.
func (s *Session) SubmitLine(ctx context.Context, line string) Report {
	rep := &Report{Line: line}
	s.reports = append(s.reports, rep)
	defer s.popReport()

	cmd, err := interpreter.Parse(line)
	if err != nil {
		rep.Err = err
		s.say(err.Error())
		s.logger.Debug("command rejected", "line", line, "err", err)
		s.emitCommand(ctx, domain.EventCommandRejected, line, rejectedKind(err), false, err)
		return *rep
	}

	s.apply(ctx, cmd, rep)
	return *rep
}

// Apply dispatches an already validated command.
func (s *Session) Apply(ctx context.Context, cmd domain.Command) Report {
	rep := &Report{Line: cmd.Text()}
	s.reports = append(s.reports, rep)
	defer s.popReport()

	s.apply(ctx, cmd, rep)
	return *rep
}

// Replay submits each line in order. A failing line does not stop the rest;
// a cancelled context does.
func (s *Session) Replay(ctx context.Context, lines []string) []Report {
	out := make([]Report, 0, len(lines))
	for _, line := range lines {
		if ctx.Err() != nil {
			break
		}
		out = append(out, s.SubmitLine(ctx, line))
	}
	return out
}

func (s *Session) apply(ctx context.Context, cmd domain.Command, rep *Report) {
	rep.Command = cmd
	rep.Accepted = true

	switch cmd.Kind {
	case domain.KindAbout:
		s.canvas.ShowAbout()
		s.say(domain.AboutAttribution)
	case domain.KindPenUp:
		s.pose.PenDown = false
		s.canvas.SetPenDown(false)
	case domain.KindPenDown:
		s.pose.PenDown = true
		s.canvas.SetPenDown(true)
	case domain.KindTurnLeft:
		s.pose = s.pose.Turn(-s.turnStep)
		s.canvas.TurnLeftStep()
	case domain.KindTurnRight:
		s.pose = s.pose.Turn(s.turnStep)
		s.canvas.TurnRightStep()
	case domain.KindMoveForward, domain.KindMoveBackward:
		d := cmd.Displacement()
		s.pose.Position = s.pose.Advance(d)
		s.canvas.MoveBy(d)
	case domain.KindSetColor:
		s.pose.Color = cmd.Color
		s.canvas.SetColor(cmd.Color)
	case domain.KindReset:
		s.pose = domain.DefaultPose(s.origin)
		s.canvas.ResetPose()
	case domain.KindClear:
		s.canvas.ClearCanvas()
	case domain.KindSaveImage:
		s.saveImage(ctx, rep)
	case domain.KindLoadImage:
		s.loadImage(ctx, rep)
	case domain.KindSaveCommands:
		s.saveCommands(ctx, rep)
	case domain.KindLoadCommands:
		s.loadCommands(ctx, rep)
	default:
		rep.Accepted = false
		rep.Err = fmt.Errorf("unhandled command kind %d", cmd.Kind)
		return
	}

	if cmd.Kind.Drawing() {
		s.history = append(s.history, cmd.Text())
		s.image.Mark()
		s.script.Mark()
		rep.Recorded = true
	}

	s.logger.Debug("command applied", "kind", cmd.Kind, "line", cmd.Text())
	s.emitCommand(ctx, domain.EventCommandApplied, cmd.Text(), cmd.Kind, rep.Recorded, nil)
}

func (s *Session) saveImage(ctx context.Context, rep *Report) {
	const op = domain.KindSaveImage
	if s.images == nil {
		s.fail(ctx, rep, op, "", domain.ErrNoStore, MsgImageSaveFailed)
		return
	}
	name, ok, err := s.interaction.ChooseDestination(ctx, domain.ArtifactImage)
	if err != nil {
		s.fail(ctx, rep, op, "", err, MsgImageSaveFailed)
		return
	}
	if !ok {
		s.dismiss(ctx, op)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.canvas.Rasterize()); err != nil {
		s.fail(ctx, rep, op, name, err, MsgImageSaveFailed)
		return
	}
	if err := s.images.Save(ctx, name, buf.Bytes()); err != nil {
		s.fail(ctx, rep, op, name, err, MsgImageSaveFailed)
		return
	}

	s.image.Saved()
	s.succeed(ctx, op, name, MsgImageSaved)
}

func (s *Session) loadImage(ctx context.Context, rep *Report) {
	const op = domain.KindLoadImage
	if !s.proceed(ctx, rep, &s.image, domain.ArtifactImage, op) {
		return
	}
	if s.images == nil {
		s.fail(ctx, rep, op, "", domain.ErrNoStore, MsgImageLoadFailed)
		return
	}
	name, ok, err := s.interaction.ChooseSource(ctx, domain.ArtifactImage)
	if err != nil {
		s.fail(ctx, rep, op, "", err, MsgImageLoadFailed)
		return
	}
	if !ok {
		s.dismiss(ctx, op)
		return
	}

	data, err := s.images.Load(ctx, name)
	if err != nil {
		s.fail(ctx, rep, op, name, err, MsgImageLoadFailed)
		return
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		s.fail(ctx, rep, op, name, err, MsgImageLoadFailed)
		return
	}

	s.canvas.DrawImageAt(img, 0, 0)
	s.image.Saved()
	s.succeed(ctx, op, name, MsgImageLoaded)
}

func (s *Session) saveCommands(ctx context.Context, rep *Report) {
	const op = domain.KindSaveCommands
	if s.scripts == nil {
		s.fail(ctx, rep, op, "", domain.ErrNoStore, MsgScriptSaveFail)
		return
	}
	name, ok, err := s.interaction.ChooseDestination(ctx, domain.ArtifactScript)
	if err != nil {
		s.fail(ctx, rep, op, "", err, MsgScriptSaveFail)
		return
	}
	if !ok {
		s.dismiss(ctx, op)
		return
	}

	if err := s.scripts.Save(ctx, name, s.History()); err != nil {
		s.fail(ctx, rep, op, name, err, MsgScriptSaveFail)
		return
	}

	s.script.Saved()
	s.succeed(ctx, op, name, MsgScriptSaved)
}

// loadCommands replays a stored script through SubmitLine.
// Replayed drawing lines are appended to history and leave the commands dirty.
// A script already on the replay stack is refused, and the lines replayed for
// one top-level submission are capped at maxLines.
func (s *Session) loadCommands(ctx context.Context, rep *Report) {
	const op = domain.KindLoadCommands
	if s.depth == 0 {
		s.replayed = 0
	}
	if s.depth >= s.maxDepth {
		rep.Err = domain.ErrNestingTooDeep
		s.say(MsgNestingTooDeep)
		s.logger.Debug("replay depth exceeded", "depth", s.depth)
		return
	}
	if !s.proceed(ctx, rep, &s.script, domain.ArtifactScript, op) {
		return
	}
	if s.scripts == nil {
		s.fail(ctx, rep, op, "", domain.ErrNoStore, MsgScriptLoadFail)
		return
	}
	name, ok, err := s.interaction.ChooseSource(ctx, domain.ArtifactScript)
	if err != nil {
		s.fail(ctx, rep, op, "", err, MsgScriptLoadFail)
		return
	}
	if !ok {
		s.dismiss(ctx, op)
		return
	}

	if slices.Contains(s.replaying, name) {
		s.fail(ctx, rep, op, name, domain.ErrScriptCycle, MsgScriptCycle)
		return
	}

	lines, err := s.scripts.Load(ctx, name)
	if err != nil {
		s.fail(ctx, rep, op, name, err, MsgScriptLoadFail)
		return
	}

	s.depth++
	s.replaying = append(s.replaying, name)
	defer func() {
		s.depth--
		s.replaying = s.replaying[:len(s.replaying)-1]
	}()
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			s.fail(ctx, rep, op, name, err, MsgScriptLoadFail)
			return
		}
		if s.replayed >= s.maxLines {
			rep.Err = domain.ErrReplayTooLong
			// Reported once, by the outermost replay, after the nested ones unwind.
			if s.depth == 1 {
				s.say(MsgReplayTooLong)
			}
			s.logger.Debug("replay budget exhausted", "script", name, "replayed", s.replayed)
			return
		}
		s.replayed++
		s.SubmitLine(ctx, line)
	}

	s.succeed(ctx, op, name, MsgScriptLoaded)
}

// proceed runs the unsaved-changes guard before a load.
func (s *Session) proceed(ctx context.Context, rep *Report, g *domain.Guard, artifact domain.Artifact, op domain.Kind) bool {
	switch g.BeginLoad() {
	case domain.DecisionProceed:
		return true
	case domain.DecisionPrompt:
	default:
		return false
	}

	choice, err := s.interaction.ConfirmUnsaved(ctx, artifact)
	if err != nil {
		s.logger.Debug("unsaved prompt failed", "artifact", artifact, "err", err)
		rep.Err = err
		choice = domain.ChoiceCancel
	}
	decision, err := g.Resolve(choice)
	if err != nil {
		rep.Err = err
		return false
	}
	s.logger.Debug("unsaved prompt answered", "artifact", artifact, "choice", choice, "decision", decision)

	switch decision {
	case domain.DecisionSaveThenProceed:
		if artifact == domain.ArtifactScript {
			s.saveCommands(ctx, rep)
		} else {
			s.saveImage(ctx, rep)
		}
		return true
	case domain.DecisionProceed:
		return true
	}
	s.emitPersist(ctx, &domain.PersistEvent{Op: op, Cancelled: true})
	return false
}

func (s *Session) succeed(ctx context.Context, op domain.Kind, target, msg string) {
	s.say(msg)
	s.logger.Debug("persisted", "op", op, "target", target)
	s.emitPersist(ctx, &domain.PersistEvent{Op: op, Target: target})
}

func (s *Session) fail(ctx context.Context, rep *Report, op domain.Kind, target string, cause error, msg string) {
	err := &domain.PersistenceError{Op: op, Target: target, Err: cause}
	rep.Err = err
	s.say(msg)
	s.logger.Debug("persistence failed", "op", op, "target", target, "err", cause)
	s.emitPersist(ctx, &domain.PersistEvent{Op: op, Target: target, Err: err})
}

func (s *Session) dismiss(ctx context.Context, op domain.Kind) {
	s.logger.Debug("chooser dismissed", "op", op)
	s.emitPersist(ctx, &domain.PersistEvent{Op: op, Cancelled: true})
}

func (s *Session) say(msg string) {
	s.canvas.DisplayMessage(msg)
	for _, r := range s.reports {
		r.Messages = append(r.Messages, msg)
	}
}

func (s *Session) popReport() {
	s.reports = s.reports[:len(s.reports)-1]
}

func (s *Session) emitCommand(ctx context.Context, typ domain.EventType, line string, kind domain.Kind, recorded bool, err error) {
	hook := s.hooks.OnCommandApplied
	if typ == domain.EventCommandRejected {
		hook = s.hooks.OnCommandRejected
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.CommandEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Line:      line,
		Kind:      kind,
		Recorded:  recorded,
		Err:       err,
	})
}

func (s *Session) emitPersist(ctx context.Context, e *domain.PersistEvent) {
	if s.hooks.OnPersist == nil {
		return
	}
	e.EventBase = domain.EventBase{Timestamp: time.Now(), Type: domain.EventPersist}
	s.hooks.OnPersist(ctx, e)
}

// History returns a copy of the recorded lines.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// DiscardHistory empties the history. Dirty flags are left as they are.
func (s *Session) DiscardHistory() {
	s.history = nil
}

// IsImageDirty reports whether the canvas changed since the last image save or load.
func (s *Session) IsImageDirty() bool {
	return s.image.Dirty()
}

// IsCommandsDirty reports whether history changed since the last script save.
func (s *Session) IsCommandsDirty() bool {
	return s.script.Dirty()
}

// Pose returns the turtle state.
func (s *Session) Pose() domain.Pose {
	return s.pose
}

// Canvas returns the drawing collaborator.
func (s *Session) Canvas() ports.Canvas {
	return s.canvas
}

// Use swaps the interaction until the returned restore func is called.
func (s *Session) Use(i ports.Interaction) (restore func()) {
	prev := s.interaction
	if i == nil {
		i = dismissed{}
	}
	s.interaction = i
	return func() { s.interaction = prev }
}

// dismissed declines every chooser and cancels every prompt.
type dismissed struct{}

func (dismissed) ConfirmUnsaved(context.Context, domain.Artifact) (domain.Choice, error) {
	return domain.ChoiceCancel, nil
}

func (dismissed) ChooseDestination(context.Context, domain.Artifact) (string, bool, error) {
	return "", false, nil
}

func (dismissed) ChooseSource(context.Context, domain.Artifact) (string, bool, error) {
	return "", false, nil
}

// rejectedKind names the command a failed distance argument belonged to,
// or KindNone when the line named no command.
func rejectedKind(err error) domain.Kind {
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		return domain.KindNone
	}
	switch pe.Name {
	case domain.KindMoveForward.String():
		return domain.KindMoveForward
	case domain.KindMoveBackward.String():
		return domain.KindMoveBackward
	}
	return domain.KindNone
}

// IsPersistence reports whether err came from a failed save or load.
func IsPersistence(err error) bool {
	return errors.Is(err, domain.ErrPersistence)
}
