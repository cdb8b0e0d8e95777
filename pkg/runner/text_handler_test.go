package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf,
		WithTextHandlerRenderer(func(s string) (string, error) {
			return "Rendered: " + s, nil
		}),
	)

	require.NoError(t, handler.Output(context.Background(), "Commands saved."))
	assert.Equal(t, "Rendered: Commands saved.\n", outBuf.String())
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("move 10\r\nleft\n"), outBuf)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "move 10", val)

	val, err = handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "left", val)

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "> > > ", outBuf.String())
}

func TestTextHandler_Input_LastLineWithoutNewline(t *testing.T) {
	handler := NewTextHandler(strings.NewReader("red"), io.Discard)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "red", val)
}

func TestTextHandler_Input_SanitizeRetry(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("move 1000000\nleft\n"), outBuf, WithTextHandlerPrompt(""))

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "left", val)
	assert.Contains(t, outBuf.String(), "Please try again.")
}

func TestTextHandler_Input_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	handler := NewTextHandler(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextHandler_SystemOutput(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	require.NoError(t, handler.SystemOutput(context.Background(), "Bye."))
	assert.Equal(t, "[System] Bye.\n", outBuf.String())
}
