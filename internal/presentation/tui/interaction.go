package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/aretw0/turtle/pkg/runner"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

var _ ports.Interaction = (*FormInteraction)(nil)

// FormInteraction answers prompts with huh forms. It needs a terminal.
type FormInteraction struct {
	// Names lists existing artifacts so loads can offer a picker. Optional.
	Names func(ctx context.Context, a domain.Artifact) ([]string, error)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

func (f *FormInteraction) ConfirmUnsaved(ctx context.Context, a domain.Artifact) (domain.Choice, error) {
	choice := domain.ChoiceCancel
	sel := huh.NewSelect[domain.Choice]().
		Title(runner.UnsavedPrompt(a)).
		Options(
			huh.NewOption("Yes, save first", domain.ChoiceSave),
			huh.NewOption("No, continue without saving", domain.ChoiceDiscard),
			huh.NewOption("Cancel", domain.ChoiceCancel),
		).
		Value(&choice)

	if err := huh.NewForm(huh.NewGroup(sel)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return domain.ChoiceCancel, nil
		}
		return domain.ChoiceCancel, err
	}
	return choice, nil
}

func (f *FormInteraction) ChooseDestination(ctx context.Context, a domain.Artifact) (string, bool, error) {
	return f.input(ctx, fmt.Sprintf("Save %s as", a))
}

func (f *FormInteraction) ChooseSource(ctx context.Context, a domain.Artifact) (string, bool, error) {
	if f.Names == nil {
		return f.input(ctx, fmt.Sprintf("Load %s from", a))
	}
	names, err := f.Names(ctx, a)
	if err != nil || len(names) == 0 {
		return f.input(ctx, fmt.Sprintf("Load %s from", a))
	}

	var name string
	opts := make([]huh.Option[string], 0, len(names))
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
	}
	sel := huh.NewSelect[string]().
		Title(fmt.Sprintf("Load %s", a)).
		Options(opts...).
		Value(&name)
	return f.run(ctx, sel, &name)
}

func (f *FormInteraction) input(ctx context.Context, title string) (string, bool, error) {
	var name string
	in := huh.NewInput().
		Title(title).
		Description("Leave empty to cancel.").
		Value(&name)
	return f.run(ctx, in, &name)
}

func (f *FormInteraction) run(ctx context.Context, field huh.Field, name *string) (string, bool, error) {
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	n := strings.TrimSpace(*name)
	return n, n != "", nil
}
