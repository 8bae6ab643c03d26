// Package menucache holds the backends of the sidebar menu cache.
package menucache

import (
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/menu"
)

// Drivers
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// New returns the store selected by conf.Menu.CacheDriver. rdb is only used by the redis driver.
func New(conf *core.Config, rdb redis.UniversalClient) (menu.Cache, error) {
	switch conf.Menu.CacheDriver {
	case DriverMemory, "":
		return NewMemoryStore(conf.Menu.CachePrefix, conf.Menu.CacheTTL), nil
	case DriverRedis:
		if rdb == nil {
			return nil, errors.New("redis menu cache: no redis client")
		}
		return NewRedisStore(rdb, conf.Menu.CachePrefix), nil
	case DriverNone:
		return NewNopStore(), nil
	default:
		return nil, errors.Errorf("unknown menu cache driver %q", conf.Menu.CacheDriver)
	}
}

// NewRedisClient connects to conf.Redis. The client is shared by the redis menu cache and the realtime publisher.
func NewRedisClient(conf *core.Config) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{conf.Redis.Address},
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}
