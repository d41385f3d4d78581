package bus

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/gamehall/backend/pkg/logger"
)

// Handler is the coordinator-facing dispatch surface. Each method may be
// invoked concurrently with the others and with itself.
type Handler interface {
	HandleJoin(ctx context.Context, playerID, gameType int)
	HandleCancel(ctx context.Context, playerID, gameType int)
	HandleResult(ctx context.Context, event ResultEvent)
}

// Consumer subscribes to the inbound coordinator channels and dispatches
// decoded messages to a Handler. Malformed payloads are logged and dropped.
type Consumer struct {
	rdb     *redis.Client
	handler Handler
}

func NewConsumer(rdb *redis.Client, handler Handler) *Consumer {
	return &Consumer{rdb: rdb, handler: handler}
}

// Run blocks until ctx is cancelled. Every message is handled on its own
// goroutine, so slow settlement of one session never delays pairing for
// another.
func (c *Consumer) Run(ctx context.Context) error {
	pubsub := c.rdb.Subscribe(ctx, ChannelLegacyJoin, ChannelJoin, ChannelCancel, ChannelResult)
	defer pubsub.Close()

	// Fail early if the subscription could not be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	logger.Info("bus consumer started",
		"channels", []string{ChannelLegacyJoin, ChannelJoin, ChannelCancel, ChannelResult})

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			go c.dispatch(ctx, msg.Channel, msg.Payload)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, channel, payload string) {
	switch channel {
	case ChannelLegacyJoin:
		playerID, err := strconv.Atoi(payload)
		if err != nil {
			logger.Warn("dropping malformed legacy join", "payload", payload, "error", err)
			return
		}
		logger.Info("legacy join request received", "player", playerID)
		c.handler.HandleJoin(ctx, playerID, 1)

	case ChannelJoin:
		playerID, gameType, err := ParsePlayerAndType(payload)
		if err != nil {
			logger.Warn("dropping malformed join", "payload", payload, "error", err)
			return
		}
		c.handler.HandleJoin(ctx, playerID, gameType)

	case ChannelCancel:
		playerID, gameType, err := ParsePlayerAndType(payload)
		if err != nil {
			logger.Warn("dropping malformed cancel", "payload", payload, "error", err)
			return
		}
		c.handler.HandleCancel(ctx, playerID, gameType)

	case ChannelResult:
		var event ResultEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			logger.Warn("dropping malformed result event", "payload", payload, "error", err)
			return
		}
		c.handler.HandleResult(ctx, event)
	}
}
