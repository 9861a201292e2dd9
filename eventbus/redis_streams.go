package eventbus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the stream issue events are appended to.
const DefaultStream = "issue-events"

// RedisEventBus appends events to a Redis stream.
type RedisEventBus struct {
	client *redis.Client
	stream string
}

func NewRedisEventBus(client *redis.Client, stream string) *RedisEventBus {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisEventBus{client: client, stream: stream}
}

// Publish appends the event to the stream.
func (r *RedisEventBus) Publish(ctx context.Context, event *Event) error {
	eventJSON, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"event_id":   event.EventID,
			"event_type": event.EventType,
			"issue_id":   event.IssueID,
			"payload":    string(eventJSON),
			"timestamp":  event.Timestamp.Format(time.RFC3339),
		},
	}

	if _, err := r.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s for issue: %s", event.EventType, event.IssueID)
	return nil
}

// Recent returns up to count events, newest first.
func (r *RedisEventBus) Recent(ctx context.Context, count int64) ([]*Event, error) {
	messages, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	out := make([]*Event, 0, len(messages))
	for _, message := range messages {
		event, err := parseMessage(message)
		if err != nil {
			log.Printf("Error parsing message %s: %v", message.ID, err)
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func parseMessage(message redis.XMessage) (*Event, error) {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid payload in message")
	}
	return FromJSON([]byte(payload))
}
