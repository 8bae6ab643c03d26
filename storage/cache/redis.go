package menucache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-market/core/menu"
)

type redisStore struct {
	prefix string
	client redis.UniversalClient
}

var _ menu.Cache = (*redisStore)(nil)

// NewRedisStore stores trees as JSON under "{prefix}:{key}" with the TTL set on the key.
func NewRedisStore(client redis.UniversalClient, prefix string) *redisStore {
	return &redisStore{prefix: prefix, client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (menu.Tree, error) {
	data, err := s.client.Get(ctx, prefixed(s.prefix, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, menu.ErrCacheMiss
		}
		return nil, errors.Wrap(err, "getting cached menu")
	}
	var tree menu.Tree
	if err = json.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "decoding cached menu")
	}
	return tree, nil
}

func (s *redisStore) Set(ctx context.Context, key string, tree menu.Tree, ttl time.Duration) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "encoding menu")
	}
	if err = s.client.Set(ctx, prefixed(s.prefix, key), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "caching menu")
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, prefixed(s.prefix, key)).Err(); err != nil {
		return errors.Wrap(err, "deleting cached menu")
	}
	return nil
}
