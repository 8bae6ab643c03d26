package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/user"
)

func TestRedisPublisher_PublishRefresh(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	identity := user.Identity{ID: 42, Role: user.RoleStudent}
	sub := client.Subscribe(ctx, Channel(identity))
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, NewRedisPublisher(client).PublishRefresh(ctx, identity))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "user.42", msg.Channel)
		var evt Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, EventMenuRefresh, evt.Event)
		assert.Equal(t, int64(42), evt.UserID)
		_, err = uuid.Parse(evt.ID)
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	mr.Close()
	assert.Error(t, NewRedisPublisher(client).PublishRefresh(ctx, identity))
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	tests := []struct {
		name    string
		driver  string
		rdb     redis.UniversalClient
		want    interface{}
		wantErr bool
	}{
		{name: "default", want: nopPublisher{}},
		{name: "none", driver: DriverNone, want: nopPublisher{}},
		{name: "redis", driver: DriverRedis, rdb: client, want: &redisPublisher{}},
		{name: "redis without client", driver: DriverRedis, wantErr: true},
		{name: "unknown", driver: "pusher", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{}
			conf.Realtime.Driver = tt.driver
			pub, err := New(conf, tt.rdb)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, pub)
			assert.NoError(t, NewNopPublisher().PublishRefresh(context.Background(), user.Identity{ID: 1}))
		})
	}
}
