package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "turtle:"

// farFuture is the index score used when no TTL is set (2100-01-01).
const farFuture = 4102444800

var (
	_ ports.ScriptStore = (*ScriptStore)(nil)
	_ ports.ImageStore  = (*ImageStore)(nil)
)

// Option configures a store.
type Option func(*keyspace)

// WithTTL sets the expiration for saved artifacts.
func WithTTL(ttl time.Duration) Option {
	return func(k *keyspace) {
		k.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(k *keyspace) {
		k.prefix = prefix
	}
}

// NewClient connects to a Redis server.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// keyspace lays out "<prefix><kind>:<name>" values plus a "<prefix><kind>:index" ZSET
// scored by expiry time, pruned lazily on List.
type keyspace struct {
	client   *backend.Client
	prefix   string
	kind     string
	ttl      time.Duration
	notFound error
}

func newKeyspace(client *backend.Client, kind string, notFound error, opts []Option) keyspace {
	k := keyspace{client: client, prefix: DefaultPrefix, kind: kind, notFound: notFound}
	for _, opt := range opts {
		opt(&k)
	}
	return k
}

func (k *keyspace) key(name string) string {
	return k.prefix + k.kind + ":" + name
}

func (k *keyspace) indexKey() string {
	return k.prefix + k.kind + ":index"
}

func (k *keyspace) score() float64 {
	if k.ttl == 0 {
		return farFuture
	}
	return float64(time.Now().Add(k.ttl).Unix())
}

// indexed reports whether name is in the index and not yet expired.
func (k *keyspace) indexed(ctx context.Context, name string) (bool, error) {
	score, err := k.client.ZScore(ctx, k.indexKey(), name).Result()
	if errors.Is(err, backend.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check index: %w", err)
	}
	return score > float64(time.Now().Unix()), nil
}

func (k *keyspace) delete(ctx context.Context, name string) error {
	pipe := k.client.TxPipeline()
	pipe.Del(ctx, k.key(name))
	pipe.ZRem(ctx, k.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (k *keyspace) list(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := k.client.ZRemRangeByScore(ctx, k.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}
	names, err := k.client.ZRange(ctx, k.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return names, nil
}

// ScriptStore keeps each script as a Redis list, one command per element.
type ScriptStore struct {
	ks keyspace
}

// NewScriptStore creates a script store on client.
func NewScriptStore(client *backend.Client, opts ...Option) *ScriptStore {
	return &ScriptStore{ks: newKeyspace(client, "script", domain.ErrScriptNotFound, opts)}
}

func (s *ScriptStore) Save(ctx context.Context, name string, lines []string) error {
	key := s.ks.key(name)
	pipe := s.ks.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(lines) > 0 {
		values := make([]any, len(lines))
		for i, l := range lines {
			values[i] = l
		}
		pipe.RPush(ctx, key, values...)
		if s.ks.ttl > 0 {
			pipe.Expire(ctx, key, s.ks.ttl)
		}
	}
	// Empty scripts live only in the index; Redis has no empty lists.
	pipe.ZAdd(ctx, s.ks.indexKey(), backend.Z{Score: s.ks.score(), Member: name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save script to redis: %w", err)
	}
	return nil
}

func (s *ScriptStore) Load(ctx context.Context, name string) ([]string, error) {
	lines, err := s.ks.client.LRange(ctx, s.ks.key(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read script from redis: %w", err)
	}
	if len(lines) > 0 {
		return lines, nil
	}

	ok, err := s.ks.indexed(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrScriptNotFound
	}
	return []string{}, nil
}

func (s *ScriptStore) Delete(ctx context.Context, name string) error {
	return s.ks.delete(ctx, name)
}

func (s *ScriptStore) List(ctx context.Context) ([]string, error) {
	return s.ks.list(ctx)
}

// ImageStore keeps each image as a binary string value.
type ImageStore struct {
	ks keyspace
}

// NewImageStore creates an image store on client.
func NewImageStore(client *backend.Client, opts ...Option) *ImageStore {
	return &ImageStore{ks: newKeyspace(client, "image", domain.ErrImageNotFound, opts)}
}

func (s *ImageStore) Save(ctx context.Context, name string, data []byte) error {
	pipe := s.ks.client.TxPipeline()
	pipe.Set(ctx, s.ks.key(name), data, s.ks.ttl)
	pipe.ZAdd(ctx, s.ks.indexKey(), backend.Z{Score: s.ks.score(), Member: name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save image to redis: %w", err)
	}
	return nil
}

func (s *ImageStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.ks.client.Get(ctx, s.ks.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to read image from redis: %w", err)
	}
	return data, nil
}

func (s *ImageStore) Delete(ctx context.Context, name string) error {
	return s.ks.delete(ctx, name)
}

func (s *ImageStore) List(ctx context.Context) ([]string, error) {
	return s.ks.list(ctx)
}
