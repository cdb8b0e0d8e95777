package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
)

// Unsaved-changes prompt texts.
const (
	PromptUnsavedImage   = "Current image is not saved. Do you want to save it first?"
	PromptUnsavedScript  = "Current commands are not saved. Do you want to save them first?"
	PromptChoiceHint     = "[y]es / [n]o / [c]ancel"
	PromptChoiceRetry    = "Please answer yes, no or cancel."
	PromptDestinationFmt = "Save %s as (empty to cancel):"
	PromptSourceFmt      = "Load %s from (empty to cancel):"
)

// UnsavedPrompt returns the question asked before loading over unsaved work.
func UnsavedPrompt(a domain.Artifact) string {
	if a == domain.ArtifactScript {
		return PromptUnsavedScript
	}
	return PromptUnsavedImage
}

var (
	_ ports.Interaction = (*TextInteraction)(nil)
	_ ports.Interaction = StaticInteraction{}
)

// TextInteraction asks prompts and file names through an IOHandler.
// Prompts go to SystemOutput so they stay distinct from session messages.
type TextInteraction struct {
	Handler IOHandler
}

// NewTextInteraction creates an interaction bound to handler.
func NewTextInteraction(handler IOHandler) *TextInteraction {
	return &TextInteraction{Handler: handler}
}

func (t *TextInteraction) ConfirmUnsaved(ctx context.Context, a domain.Artifact) (domain.Choice, error) {
	if err := t.Handler.SystemOutput(ctx, UnsavedPrompt(a)+" "+PromptChoiceHint); err != nil {
		return domain.ChoiceCancel, err
	}
	for {
		input, err := t.Handler.Input(ctx)
		if err != nil {
			return domain.ChoiceCancel, err
		}
		if c, ok := domain.ParseChoice(strings.ToLower(strings.TrimSpace(input))); ok {
			return c, nil
		}
		if err := t.Handler.SystemOutput(ctx, PromptChoiceRetry); err != nil {
			return domain.ChoiceCancel, err
		}
	}
}

func (t *TextInteraction) ChooseDestination(ctx context.Context, a domain.Artifact) (string, bool, error) {
	return t.ask(ctx, fmt.Sprintf(PromptDestinationFmt, a))
}

func (t *TextInteraction) ChooseSource(ctx context.Context, a domain.Artifact) (string, bool, error) {
	return t.ask(ctx, fmt.Sprintf(PromptSourceFmt, a))
}

func (t *TextInteraction) ask(ctx context.Context, prompt string) (string, bool, error) {
	if err := t.Handler.SystemOutput(ctx, prompt); err != nil {
		return "", false, err
	}
	input, err := t.Handler.Input(ctx)
	if err != nil {
		return "", false, err
	}
	name := strings.TrimSpace(input)
	return name, name != "", nil
}

// StaticInteraction answers every prompt the same way.
// Headless hosts build one per request from the caller's parameters.
type StaticInteraction struct {
	Choice domain.Choice
	Target string // Destination name for saves; empty dismisses the chooser.
	Source string // Source name for loads; empty dismisses the chooser.
}

func (s StaticInteraction) ConfirmUnsaved(context.Context, domain.Artifact) (domain.Choice, error) {
	return s.Choice, nil
}

func (s StaticInteraction) ChooseDestination(context.Context, domain.Artifact) (string, bool, error) {
	return s.Target, s.Target != "", nil
}

func (s StaticInteraction) ChooseSource(context.Context, domain.Artifact) (string, bool, error) {
	return s.Source, s.Source != "", nil
}
