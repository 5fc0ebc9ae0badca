// Package persistence appends domain events to a Redis stream for auditing.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisEventStream writes events to one Redis stream, trimmed to roughly maxLen entries.
type RedisEventStream struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	logger logger.Logger
}

// NewRedisEventStream creates the audit stream writer. maxLen 0 disables trimming.
func NewRedisEventStream(client redis.UniversalClient, stream string, maxLen int64, log logger.Logger) *RedisEventStream {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisEventStream{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: log.WithComponent("event_stream"),
	}
}

// Append adds event to the stream and returns the entry id.
func (r *RedisEventStream) Append(ctx context.Context, event eventbus.Event) (string, error) {
	data, err := json.Marshal(event.Data())
	if err != nil {
		return "", fmt.Errorf("failed to serialize event data: %w", err)
	}

	values := map[string]interface{}{
		"type":      event.Type(),
		"source":    event.Source(),
		"timestamp": event.Timestamp().UnixNano(),
		"data":      data,
	}
	if userID := userIDOf(event); userID != "" {
		values["userId"] = userID
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append event to %s: %w", r.stream, err)
	}
	return id, nil
}

// Handler is an event bus subscriber that appends every event. Failures are logged and
// never propagate to the publisher.
func (r *RedisEventStream) Handler() eventbus.Handler {
	return func(ctx context.Context, event eventbus.Event) error {
		id, err := r.Append(ctx, event)
		if err != nil {
			r.logger.WithContext(ctx).Errorf("Audit append failed for %s: %v", event.Type(), err)
			return nil
		}
		r.logger.WithContext(ctx).Debugf("Audit entry %s stored for %s", id, event.Type())
		return nil
	}
}

// Subscribe registers Handler for every event on bus.
func (r *RedisEventStream) Subscribe(bus eventbus.EventBusInterface) {
	bus.Subscribe(eventbus.WildcardType, r.Handler())
}

func userIDOf(event eventbus.Event) string {
	data, ok := event.Data().(map[string]interface{})
	if !ok {
		return ""
	}
	userID, _ := data["userId"].(string)
	return userID
}
