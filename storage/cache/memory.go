package menucache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/trezcool/masomo-market/core/menu"
)

type memoryStore struct {
	prefix string
	items  *gocache.Cache
}

var _ menu.Cache = (*memoryStore)(nil)

// NewMemoryStore keeps trees in process. Expired entries are never returned;
// they are purged every cleanup interval (no janitor when cleanup <= 0).
func NewMemoryStore(prefix string, cleanup time.Duration) *memoryStore {
	if cleanup <= 0 {
		cleanup = -1
	}
	return &memoryStore{
		prefix: prefix,
		items:  gocache.New(menu.DefaultTTL, cleanup),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (menu.Tree, error) {
	v, ok := s.items.Get(prefixed(s.prefix, key))
	if !ok {
		return nil, menu.ErrCacheMiss
	}
	tree, ok := v.(menu.Tree)
	if !ok {
		return nil, menu.ErrCacheMiss
	}
	return tree, nil
}

func (s *memoryStore) Set(_ context.Context, key string, tree menu.Tree, ttl time.Duration) error {
	s.items.Set(prefixed(s.prefix, key), tree.Clone(), ttl)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(prefixed(s.prefix, key))
	return nil
}

// Flush drops every entry.
func (s *memoryStore) Flush() {
	s.items.Flush()
}
