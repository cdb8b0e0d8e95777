package ports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunScriptStoreContract verifies that a ScriptStore implementation
// adheres to the interface contract.
func RunScriptStoreContract(t *testing.T, store ScriptStore) {
	t.Helper()
	ctx := context.Background()
	name := "contract-script-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		lines := []string{"red", "move 10", "left", "reverse 5"}
		require.NoError(t, store.Save(ctx, name, lines))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, lines, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, []string{"clear"}))
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []string{"clear"}, loaded)
	})

	t.Run("Empty Script", func(t *testing.T) {
		empty := name + "-empty"
		require.NoError(t, store.Save(ctx, empty, nil))
		defer func() { _ = store.Delete(ctx, empty) }()

		loaded, err := store.Load(ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Long Line", func(t *testing.T) {
		long := name + "-long"
		lines := []string{"red", "move 10" + strings.Repeat(" ", 70*1024), "", "move 5"}
		require.NoError(t, store.Save(ctx, long, lines))
		defer func() { _ = store.Delete(ctx, long) }()

		loaded, err := store.Load(ctx, long)
		require.NoError(t, err)
		assert.Equal(t, lines, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrScriptNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, []string{"move 1"}))
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrScriptNotFound, "Load after Delete should return ErrScriptNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := name+"-1", name+"-2"
		require.NoError(t, store.Save(ctx, id1, []string{"left"}))
		require.NoError(t, store.Save(ctx, id2, []string{"right"}))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}

// RunImageStoreContract verifies that an ImageStore implementation
// adheres to the interface contract.
func RunImageStoreContract(t *testing.T, store ImageStore) {
	t.Helper()
	ctx := context.Background()
	name := "contract-image-" + time.Now().Format("20060102150405")
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0xff}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, payload))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, payload, loaded)
	})

	t.Run("Caller Mutation Does Not Leak", func(t *testing.T) {
		buf := append([]byte(nil), payload...)
		require.NoError(t, store.Save(ctx, name, buf))
		buf[0] = 0

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, payload, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrImageNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, payload))
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrImageNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := name+"-1", name+"-2"
		require.NoError(t, store.Save(ctx, id1, payload))
		require.NoError(t, store.Save(ctx, id2, payload))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
