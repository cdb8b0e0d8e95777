package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
)

var (
	_ ports.ScriptStore = (*ScriptStore)(nil)
	_ ports.ImageStore  = (*ImageStore)(nil)
)

// ScriptStore implements ports.ScriptStore in memory.
// Safe for concurrent use.
type ScriptStore struct {
	s store[string]
}

// NewScriptStore creates an empty script store.
func NewScriptStore() *ScriptStore {
	return &ScriptStore{s: newStore[string](domain.ErrScriptNotFound)}
}

func (st *ScriptStore) Save(ctx context.Context, name string, lines []string) error {
	st.s.save(name, lines)
	return nil
}

func (st *ScriptStore) Load(ctx context.Context, name string) ([]string, error) {
	return st.s.load(name)
}

func (st *ScriptStore) Delete(ctx context.Context, name string) error {
	st.s.delete(name)
	return nil
}

func (st *ScriptStore) List(ctx context.Context) ([]string, error) {
	return st.s.list(), nil
}

// ImageStore implements ports.ImageStore in memory.
// Safe for concurrent use.
type ImageStore struct {
	s store[byte]
}

// NewImageStore creates an empty image store.
func NewImageStore() *ImageStore {
	return &ImageStore{s: newStore[byte](domain.ErrImageNotFound)}
}

func (st *ImageStore) Save(ctx context.Context, name string, data []byte) error {
	st.s.save(name, data)
	return nil
}

func (st *ImageStore) Load(ctx context.Context, name string) ([]byte, error) {
	return st.s.load(name)
}

func (st *ImageStore) Delete(ctx context.Context, name string) error {
	st.s.delete(name)
	return nil
}

func (st *ImageStore) List(ctx context.Context) ([]string, error) {
	return st.s.list(), nil
}

// store copies on write and on read so callers never share backing arrays with it.
type store[T any] struct {
	mu       sync.RWMutex
	data     map[string][]T
	notFound error
}

func newStore[T any](notFound error) store[T] {
	return store[T]{data: make(map[string][]T), notFound: notFound}
}

func (s *store[T]) save(name string, v []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = slices.Clone(v)
}

func (s *store[T]) load(name string) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[name]
	if !ok {
		return nil, s.notFound
	}
	return slices.Clone(v), nil
}

func (s *store[T]) delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
}

func (s *store[T]) list() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
