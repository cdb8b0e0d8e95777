package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

var failurePrefixes = []string{"Invalid ", "Missing ", "Failed ", "No command", "Script nesting"}

// NewMessageRenderer renders the about text as markdown and colours the
// remaining session messages: failures red, confirmations green.
func NewMessageRenderer(about string) func(string) (string, error) {
	markdown := NewRenderer()
	p := termenv.EnvColorProfile()

	return func(msg string) (string, error) {
		if msg == about {
			return markdown(msg)
		}
		if isFailure(msg) {
			return termenv.String(msg).Foreground(p.Color("#f87171")).String(), nil
		}
		return termenv.String(msg).Foreground(p.Color("#4ade80")).String(), nil
	}
}

func isFailure(msg string) bool {
	if strings.Contains(msg, " distance must be ") {
		return true
	}
	for _, prefix := range failurePrefixes {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
