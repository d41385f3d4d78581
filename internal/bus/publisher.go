package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers coordinator notifications. Directed messages go to a
// player's inbox channel, session messages to the session broadcast channel.
// It performs no business logic so the coordinator can be tested against a
// fake.
type Publisher interface {
	ToPlayer(ctx context.Context, playerID int, payload interface{}) error
	ToSession(ctx context.Context, sessionID int, payload interface{}) error
}

// RedisPublisher publishes JSON payloads over Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) ToPlayer(ctx context.Context, playerID int, payload interface{}) error {
	return p.publish(ctx, PlayerChannel(playerID), payload)
}

func (p *RedisPublisher) ToSession(ctx context.Context, sessionID int, payload interface{}) error {
	return p.publish(ctx, SessionChannel(sessionID), payload)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
