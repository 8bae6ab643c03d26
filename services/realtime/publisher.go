// Package realtime broadcasts events to the "user.{id}" channels the frontend listens on.
package realtime

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/menu"
	"github.com/trezcool/masomo-market/core/user"
)

// Drivers
const (
	DriverNone  = "none"
	DriverRedis = "redis"
)

// EventMenuRefresh asks the clients of a user to fetch their sidebar menu again.
const EventMenuRefresh = "MenuRefreshEvent"

type Event struct {
	ID     string `json:"id"`
	Event  string `json:"event"`
	UserID int64  `json:"user_id"`
}

// Channel returns the channel of identity's clients.
func Channel(identity user.Identity) string {
	return "user." + strconv.FormatInt(identity.ID, 10)
}

type nopPublisher struct{}

var _ menu.RefreshPublisher = nopPublisher{}

// NewNopPublisher drops every event; clients rely on polling.
func NewNopPublisher() menu.RefreshPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishRefresh(context.Context, user.Identity) error { return nil }

type redisPublisher struct {
	client redis.UniversalClient
}

var _ menu.RefreshPublisher = (*redisPublisher)(nil)

func NewRedisPublisher(client redis.UniversalClient) *redisPublisher {
	return &redisPublisher{client: client}
}

func (p *redisPublisher) PublishRefresh(ctx context.Context, identity user.Identity) error {
	data, err := json.Marshal(Event{
		ID:     uuid.New().String(),
		Event:  EventMenuRefresh,
		UserID: identity.ID,
	})
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	if err = p.client.Publish(ctx, Channel(identity), data).Err(); err != nil {
		return errors.Wrap(err, "publishing event")
	}
	return nil
}

// New returns the publisher selected by conf.Realtime.Driver. rdb is only used by the redis driver.
func New(conf *core.Config, rdb redis.UniversalClient) (menu.RefreshPublisher, error) {
	switch conf.Realtime.Driver {
	case DriverNone, "":
		return NewNopPublisher(), nil
	case DriverRedis:
		if rdb == nil {
			return nil, errors.New("redis realtime: no redis client")
		}
		return NewRedisPublisher(rdb), nil
	default:
		return nil, errors.Errorf("unknown realtime driver %q", conf.Realtime.Driver)
	}
}
