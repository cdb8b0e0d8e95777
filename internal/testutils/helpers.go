package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteScript writes lines as a script file under dir and returns its path.
// It fails the test immediately on error.
func WriteScript(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	body := strings.Join(lines, "\n")
	if len(lines) > 0 {
		body += "\n"
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "Failed to create script directory")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644), "Failed to write script")
	return path
}

// StoreDir creates a temporary store root and returns its absolute path.
func StoreDir(t *testing.T) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")
	return absPath
}
