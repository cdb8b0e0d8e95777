package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turtle/pkg/adapters/redis"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestScriptStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunScriptStoreContract(t, redis.NewScriptStore(client))
}

func TestImageStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunImageStoreContract(t, redis.NewImageStore(client))
}

func TestScriptStore_Layout(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewScriptStore(client, redis.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "square", []string{"move 10", "right"}))

	items, err := mr.List("custom:script:square")
	require.NoError(t, err)
	assert.Equal(t, []string{"move 10", "right"}, items)
	assert.True(t, mr.Exists("custom:script:index"))
}

func TestImageStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewImageStore(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "pic", []byte{1, 2, 3}))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "pic")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "pic")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)

	// Index pruning compares against wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestScriptStore_TTL_EmptyScript(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewScriptStore(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "blank", nil))
	lines, err := store.Load(ctx, "blank")
	require.NoError(t, err)
	assert.Empty(t, lines)

	time.Sleep(2100 * time.Millisecond)

	_, err = store.Load(ctx, "blank")
	assert.ErrorIs(t, err, domain.ErrScriptNotFound)
}
