package menucache

import (
	"context"
	"time"

	"github.com/trezcool/masomo-market/core/menu"
)

type nopStore struct{}

var _ menu.Cache = nopStore{}

// NewNopStore never caches: every lookup misses.
func NewNopStore() menu.Cache {
	return nopStore{}
}

func (nopStore) Get(context.Context, string) (menu.Tree, error) {
	return nil, menu.ErrCacheMiss
}

func (nopStore) Set(context.Context, string, menu.Tree, time.Duration) error { return nil }
func (nopStore) Delete(context.Context, string) error                        { return nil }
