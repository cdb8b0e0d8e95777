package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFailure(t *testing.T) {
	tests := map[string]bool{
		"Invalid command: fly":                         true,
		"Missing distance for move.":                   true,
		"Reverse distance must be between 1 and 1000.": true,
		"Failed to load image.":                        true,
		"No command entered.":                          true,
		"Script nesting too deep.":                     true,
		"Commands saved.":                              false,
		"Design by Mobin Sheikh.":                      false,
	}
	for msg, want := range tests {
		assert.Equal(t, want, isFailure(msg), msg)
	}
}

func TestMessageRenderer_KeepsText(t *testing.T) {
	t.Setenv("TERM", "dumb")
	render := NewMessageRenderer("# About")

	out, err := render("Commands saved.")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands saved.")

	out, err = render("# About")
	require.NoError(t, err)
	assert.Contains(t, out, "About")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "turtle 1.2.3")
}
