package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptedScripts_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewScriptStore()
	store := middleware.NewEncryptedScripts(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	lines := []string{"red", "move 100", "right"}
	require.NoError(t, store.Save(ctx, "square", lines))

	raw, err := underlying.Load(ctx, "square")
	require.NoError(t, err)
	require.Len(t, raw, 1, "the envelope is a single line")
	assert.False(t, strings.Contains(raw[0], "move"), "plain commands must not reach the store")

	loaded, err := store.Load(ctx, "square")
	require.NoError(t, err)
	assert.Equal(t, lines, loaded)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"square"}, names)
}

func TestEncryptedScripts_Empty(t *testing.T) {
	ctx := context.Background()
	store := middleware.NewEncryptedScripts(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewScriptStore())

	require.NoError(t, store.Save(ctx, "nothing", nil))
	loaded, err := store.Load(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestEncryptedScripts_PassesNotFoundThrough(t *testing.T) {
	store := middleware.NewEncryptedScripts(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewScriptStore())
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrScriptNotFound)
}

func TestEncryptedScripts_RejectsPlainScripts(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewScriptStore()
	require.NoError(t, underlying.Save(ctx, "legacy", []string{"move 10"}))

	store := middleware.NewEncryptedScripts(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := store.Load(ctx, "legacy")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptedImages_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewImageStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	storeOld := middleware.NewEncryptedImages(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, storeOld.Save(ctx, "pic", []byte("old-bytes")))

	raw, err := underlying.Load(ctx, "pic")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("old-bytes"), raw)

	storeNew := middleware.NewEncryptedImages(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	data, err := storeNew.Load(ctx, "pic")
	require.NoError(t, err)
	assert.Equal(t, []byte("old-bytes"), data)

	// Saving again re-encrypts with the new key.
	require.NoError(t, storeNew.Save(ctx, "pic", []byte("new-bytes")))
	_, err = storeOld.Load(ctx, "pic")
	assert.Error(t, err, "the old key alone can no longer decrypt")
}

func TestNewEncryption_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptedScripts(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
	assert.Panics(t, func() {
		middleware.NewEncryptedImages(middleware.EncryptionConfig{})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorContains(t, err, "must be 32 bytes")
}
