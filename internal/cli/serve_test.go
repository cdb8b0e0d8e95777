package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/internal/logging"
	httpAdapter "github.com/aretw0/turtle/pkg/adapters/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, srv *httptest.Server, path, body string) httpAdapter.LinesResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out httpAdapter.LinesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServeHandler_SessionsAndMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory
	stores, err := openStores(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(newServeHandler(cfg, stores, logging.NewNop()))
	defer srv.Close()

	a := post(t, srv, "/sessions/a/lines", `{"line":"move 10"}`)
	require.Len(t, a.Reports, 1)
	assert.True(t, a.Reports[0].Accepted)
	assert.Equal(t, 1, a.State.HistoryLen)

	b := post(t, srv, "/sessions/b/lines", `{"line":"right"}`)
	assert.Equal(t, 1, b.State.HistoryLen)
	assert.NotEqual(t, a.State.Pose, b.State.Pose, "sessions draw on separate canvases")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "turtle_commands_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServeHandler_SharedStoreWithLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store.Driver = config.DriverRedis
	cfg.Store.Redis.Addr = mr.Addr()

	stores, err := openStores(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	srv := httptest.NewServer(newServeHandler(cfg, stores, logging.NewNop()))
	defer srv.Close()

	post(t, srv, "/sessions/writer/lines", `{"lines":["move 10","savecommands"],"target":"shared"}`)
	out := post(t, srv, "/sessions/reader/lines", `{"line":"loadcommands","source":"shared"}`)

	require.Len(t, out.Reports, 1)
	assert.Contains(t, out.Reports[0].Messages, "Commands loaded and executed.")
	assert.Equal(t, 1, out.State.HistoryLen)
}
