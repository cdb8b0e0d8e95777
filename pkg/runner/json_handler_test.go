package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []Record {
	t.Helper()
	var out []Record
	dec := json.NewDecoder(buf)
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestJSONHandler_Output(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)
	ctx := context.Background()

	require.NoError(t, handler.Output(ctx, "Image saved successfully."))
	require.NoError(t, handler.SystemOutput(ctx, "Save image as (empty to cancel):"))

	recs := decodeRecords(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, RecordMessage, recs[0].Type)
	assert.Equal(t, "Image saved successfully.", recs[0].Text)
	assert.Equal(t, RecordSystem, recs[1].Type)
}

func TestJSONHandler_Input(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader("\"move 10\"\nleft\n"), io.Discard)
	ctx := context.Background()

	val, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "move 10", val, "JSON strings are unquoted")

	val, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "left", val, "raw text passes through")

	_, err = handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_WriteReport(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)

	rep := session.Report{
		Line:     "move 0",
		Messages: []string{"Move distance must be between 1 and 1000."},
		Err:      &domain.ParseError{Kind: domain.ErrOutOfRange, Name: "move", Line: "move 0"},
	}
	require.NoError(t, handler.WriteReport(context.Background(), rep))

	recs := decodeRecords(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, RecordReport, recs[0].Type)
	assert.Equal(t, "move 0", recs[0].Line)
	require.NotNil(t, recs[0].Accepted)
	assert.False(t, *recs[0].Accepted)
	assert.Equal(t, "Move distance must be between 1 and 1000.", recs[0].Error)
}
