package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/turtle/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile_CollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	script := testutils.WriteScript(t, dir, "draw.txt", "move 10")
	other := filepath.Join(dir, "other.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := watchFile(ctx, script, 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(other, []byte("ignored\n"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(script, []byte("move 20\n"), 0o644))
	}

	select {
	case name := <-changes:
		assert.Equal(t, filepath.Clean(script), name)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case name := <-changes:
		t.Fatalf("unexpected second change: %s", name)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-changes
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	_, err := watchFile(context.Background(), filepath.Join(t.TempDir(), "missing", "x.txt"), time.Millisecond)
	assert.ErrorContains(t, err, "failed to watch")
}
