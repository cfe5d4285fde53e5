package events

import (
	"context"
	"encoding/json"
	"time"

	"quickearn-admin/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channel = "store:events"

const (
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Event mirrors one change at a store path. Dashboard sessions subscribe to
// path prefixes and re-read the affected panel when an event arrives.
type Event struct {
	Path   string    `json:"path"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Bus fans mutation events out to every connected dashboard session across
// all server instances, via redis pub/sub. A nil *Bus drops all publishes,
// which keeps service tests free of redis.
type Bus struct {
	rdb *redis.Client
}

func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

func (b *Bus) Publish(ctx context.Context, path, action string) {
	if b == nil || b.rdb == nil {
		return
	}
	payload, err := json.Marshal(Event{Path: path, Action: action, At: time.Now()})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Log.Warn("failed to publish store event",
			zap.String("path", path),
			zap.Error(err))
	}
}

// Subscribe opens a redis subscription and decodes events onto the returned
// channel until ctx is done. The caller owns the returned channel's lifetime.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event, 16)
	if b == nil || b.rdb == nil {
		close(out)
		return out
	}

	sub := b.rdb.Subscribe(ctx, channel)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
