package menu

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core/user"
)

// DefaultTTL is how long a built menu is served from the cache.
const DefaultTTL = 300 * time.Second

var ErrCacheMiss = errors.New("menu cache miss")

// Cache stores built trees. Any error other than ErrCacheMiss means the backend is unavailable.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) (Tree, error)
	Set(ctx context.Context, key string, tree Tree, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheKey is "{id}:{role}", so a role change never serves the menu of the previous role.
func CacheKey(identity user.Identity) string {
	return identity.String()
}

// RefreshPublisher tells the clients of an identity to fetch their menu again.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, identity user.Identity) error
}
