package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/canvas"
	"github.com/aretw0/turtle/pkg/runner"
	"github.com/aretw0/turtle/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *memory.ScriptStore) {
	t.Helper()
	scripts := memory.NewScriptStore()
	images := memory.NewImageStore()
	m := session.NewManager(func(id string) (*session.Session, error) {
		rast := canvas.New(120, 80)
		return session.New(rast,
			session.WithOrigin(rast.Origin()),
			session.WithScriptStore(scripts),
			session.WithImageStore(images),
		), nil
	})
	srv := httptest.NewServer(NewHandler(m, opts...))
	t.Cleanup(srv.Close)
	return srv, scripts
}

func postLines(t *testing.T, srv *httptest.Server, id string, body LinesRequest) LinesResponse {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/sessions/"+id+"/lines", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out LinesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSubmitLines(t *testing.T) {
	srv, _ := newTestServer(t)

	out := postLines(t, srv, "s1", LinesRequest{Lines: []string{"right", "move 10", "move 0"}})
	require.Len(t, out.Reports, 3)
	assert.True(t, out.Reports[1].Recorded)
	assert.False(t, out.Reports[2].Accepted)
	assert.Equal(t, []string{"Move distance must be between 1 and 1000."}, out.Reports[2].Messages)

	assert.Equal(t, "s1", out.State.ID)
	assert.InDelta(t, 70, out.State.Pose.X, 1e-9)
	assert.InDelta(t, 40, out.State.Pose.Y, 1e-9)
	assert.Equal(t, 90.0, out.State.Pose.Heading)
	assert.Equal(t, 2, out.State.HistoryLen)
	assert.True(t, out.State.ImageDirty)
}

func TestSubmitLines_PersistenceAnswers(t *testing.T) {
	srv, scripts := newTestServer(t)
	ctx := context.Background()

	postLines(t, srv, "s1", LinesRequest{Line: "move 5"})
	out := postLines(t, srv, "s1", LinesRequest{Line: "savecommands", Target: "mine"})
	assert.Equal(t, []string{"Commands saved."}, out.Reports[0].Messages)

	saved, err := scripts.Load(ctx, "mine")
	require.NoError(t, err)
	assert.Equal(t, []string{"move 5"}, saved)

	// Unsaved changes with the default cancel policy abort the load.
	postLines(t, srv, "s1", LinesRequest{Line: "left"})
	out = postLines(t, srv, "s1", LinesRequest{Line: "loadcommands", Source: "mine"})
	assert.Empty(t, out.Reports[0].Messages)
	assert.Equal(t, 2, out.State.HistoryLen)

	out = postLines(t, srv, "s1", LinesRequest{Line: "loadcommands", Source: "mine", OnUnsaved: "discard"})
	assert.Equal(t, []string{"Commands loaded and executed."}, out.Reports[0].Messages)
	assert.Equal(t, 3, out.State.HistoryLen)
}

func TestSubmitLines_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name  string
		body  string
		limit string
	}{
		{"Malformed JSON", "{", ""},
		{"Bad Policy", `{"line":"loadcommands","on_unsaved":"maybe"}`, ""},
		{"Too Large", `{"line":"move 1000"}`, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.limit != "" {
				t.Setenv(runner.EnvMaxInputSize, tt.limit)
			}
			resp, err := http.Post(srv.URL+"/sessions/s1/lines", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSessionQueries(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/sessions/ghost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	postLines(t, srv, "s1", LinesRequest{Lines: []string{"red", "move 10"}})

	resp, err = http.Get(srv.URL + "/sessions/s1/history")
	require.NoError(t, err)
	var hist map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hist))
	resp.Body.Close()
	assert.Equal(t, []string{"red", "move 10"}, hist["history"])

	resp, err = http.Get(srv.URL + "/sessions/s1/canvas.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	resp, err = http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	var list map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Equal(t, []string{"s1"}, list["sessions"])

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/s1", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/sessions/s1/history")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndInfo(t *testing.T) {
	srv, _ := newTestServer(t, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	})))

	for _, path := range []string{"/healthz", "/info", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/sessions", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// The ping frame has been read, so the subscription is registered.
	postLines(t, srv, "s1", LinesRequest{Line: "move 10"})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}
	var event LinesResponse
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
	assert.Equal(t, "move 10", event.Reports[0].Line)
}

func TestStreamManager_Close(t *testing.T) {
	sm := NewStreamManager()
	ch, unsubscribe := sm.Subscribe("s1")

	sm.Broadcast("s1", "hello")
	assert.Equal(t, "hello", <-ch)

	sm.Close("s1")
	_, ok := <-ch
	assert.False(t, ok)
	unsubscribe() // must not panic after Close
}
