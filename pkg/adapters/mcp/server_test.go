package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/canvas"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	scripts := memory.NewScriptStore()
	m := session.NewManager(func(id string) (*session.Session, error) {
		rast := canvas.New(100, 100)
		return session.New(rast, session.WithOrigin(rast.Origin()), session.WithScriptStore(scripts)), nil
	})
	return NewServer(m)
}

func TestSubmitLine(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleSubmitLine(ctx, mcp.CallToolRequest{}, map[string]interface{}{"line": "move 20"})
	require.NoError(t, err)
	assert.True(t, resp.Recorded)
	assert.Equal(t, DefaultSessionID, resp.State.SessionID)
	assert.InDelta(t, 30, resp.State.Y, 1e-9)

	resp, err = s.handleSubmitLine(ctx, mcp.CallToolRequest{}, map[string]interface{}{"line": "jump"})
	require.NoError(t, err)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "Invalid command: jump", resp.Error)
}

func TestSubmitLine_SaveAndReload(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	args := func(kv ...string) map[string]interface{} {
		m := map[string]interface{}{"session_id": "a"}
		for i := 0; i < len(kv); i += 2 {
			m[kv[i]] = kv[i+1]
		}
		return m
	}

	_, err := s.handleSubmitLine(ctx, mcp.CallToolRequest{}, args("line", "left"))
	require.NoError(t, err)
	resp, err := s.handleSubmitLine(ctx, mcp.CallToolRequest{}, args("line", "savecommands", "target", "one"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Commands saved."}, resp.Messages)
	assert.False(t, resp.State.CommandsDirty)

	_, err = s.handleSubmitLine(ctx, mcp.CallToolRequest{}, args("line", "right"))
	require.NoError(t, err)
	resp, err = s.handleSubmitLine(ctx, mcp.CallToolRequest{}, args("line", "loadcommands", "source", "one", "on_unsaved", "save", "target", "two"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Commands saved.", "Commands loaded and executed."}, resp.Messages)
	assert.Equal(t, 3, resp.State.History)

	_, err = s.handleSubmitLine(ctx, mcp.CallToolRequest{}, args("line", "left", "on_unsaved", "perhaps"))
	assert.Error(t, err)
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "nope"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleSubmitLine(ctx, mcp.CallToolRequest{}, map[string]interface{}{"line": "green"})
	require.NoError(t, err)
	state, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "green", state.Color)
}

func TestReadHistory(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	contents, err := s.readHistory(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "[]", contents[0].(mcp.TextResourceContents).Text)

	_, err = s.handleSubmitLine(ctx, mcp.CallToolRequest{}, map[string]interface{}{"line": "penup"})
	require.NoError(t, err)

	contents, err = s.readHistory(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	var history []string
	require.NoError(t, json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &history))
	assert.Equal(t, []string{"penup"}, history)
}
