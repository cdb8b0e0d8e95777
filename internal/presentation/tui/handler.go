package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/turtle/pkg/runner"
	"github.com/charmbracelet/huh"
)

var _ runner.IOHandler = (*FormHandler)(nil)

// FormHandler reads each line through a huh input field.
// It owns the terminal while reading, so it pairs with FormInteraction
// instead of a TextHandler whose background reader would race the forms.
type FormHandler struct {
	Writer   io.Writer
	Renderer runner.ContentRenderer
	Prompt   string
}

// NewFormHandler creates a FormHandler writing to stdout.
func NewFormHandler(renderer runner.ContentRenderer) *FormHandler {
	return &FormHandler{
		Writer:   os.Stdout,
		Renderer: renderer,
		Prompt:   strings.TrimSpace(runner.DefaultPrompt),
	}
}

func (h *FormHandler) Output(ctx context.Context, msg string) error {
	out := msg
	if h.Renderer != nil {
		if rendered, err := h.Renderer(msg); err == nil {
			out = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(out))
	return err
}

func (h *FormHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}

// Input returns io.EOF when the user aborts the field (ctrl+c).
func (h *FormHandler) Input(ctx context.Context) (string, error) {
	for {
		var line string
		field := huh.NewInput().
			Prompt(h.Prompt + " ").
			Value(&line)

		err := huh.NewForm(huh.NewGroup(field)).
			WithShowHelp(false).
			RunWithContext(ctx)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return "", io.EOF
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", err
		}

		clean, err := runner.SanitizeInput(line)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		// Echo the accepted line; the form clears itself on submit.
		fmt.Fprintf(h.Writer, "%s %s\n", h.Prompt, clean)
		return clean, nil
	}
}
