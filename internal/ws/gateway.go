// Package ws exposes the message bus to browser clients. Each connection is
// bridged to exactly one bus channel: a player connection mirrors the
// player's inbox, a session connection mirrors the session broadcast channel.
// The gateway relays frames without inspecting their game content.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/gamehall/backend/internal/bus"
	"github.com/gamehall/backend/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Gateway bridges Redis bus channels to WebSocket connections.
type Gateway struct {
	rdb           *redis.Client
	sendBufferLen int
}

func NewGateway(rdb *redis.Client, sendBufferLen int) *Gateway {
	return &Gateway{rdb: rdb, sendBufferLen: sendBufferLen}
}

// clientFrame is what a player connection sends upstream: a payload for one
// of the inbound coordinator channels.
type clientFrame struct {
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

// inboundChannels are the only channels a player connection may publish to.
var inboundChannels = map[string]bool{
	bus.ChannelLegacyJoin: true,
	bus.ChannelJoin:       true,
	bus.ChannelCancel:     true,
	bus.ChannelResult:     true,
}

// PlayerHandler upgrades GET /ws/player/:id. Downstream it mirrors the
// player's inbox channel; upstream it accepts frames addressed to the
// inbound coordinator channels.
func (g *Gateway) PlayerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}
		g.serve(c, bus.PlayerChannel(playerID), g.playerReadPump)
	}
}

// SessionHandler upgrades GET /ws/session/:id. Both directions mirror the
// session broadcast channel, which is how the two clients exchange moves.
func (g *Gateway) SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		g.serve(c, bus.SessionChannel(sessionID), g.sessionReadPump)
	}
}

type readPump func(ctx context.Context, conn *websocket.Conn, channel string)

func (g *Gateway) serve(c *gin.Context, channel string, read readPump) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "channel", channel, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := g.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	send := make(chan []byte, g.sendBufferLen)
	go func() {
		defer cancel()
		for msg := range pubsub.Channel() {
			select {
			case send <- []byte(msg.Payload):
			default:
				logger.Warn("dropping message, client send buffer full", "channel", channel)
			}
		}
	}()
	go g.writePump(ctx, conn, send, channel)

	logger.Info("websocket client connected", "channel", channel)
	read(ctx, conn, channel)
	logger.Info("websocket client disconnected", "channel", channel)
}

// playerReadPump forwards client frames to the inbound coordinator channels.
func (g *Gateway) playerReadPump(ctx context.Context, conn *websocket.Conn, channel string) {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Warn("dropping malformed client frame", "channel", channel, "error", err)
			continue
		}
		if !inboundChannels[frame.Channel] {
			logger.Warn("dropping frame for unknown channel",
				"channel", channel, "target", frame.Channel)
			continue
		}
		if err := g.rdb.Publish(ctx, frame.Channel, frame.Payload).Err(); err != nil {
			logger.Error("failed to relay client frame",
				"channel", channel, "target", frame.Channel, "error", err)
		}
	}
}

// sessionReadPump relays client frames verbatim onto the session channel.
func (g *Gateway) sessionReadPump(ctx context.Context, conn *websocket.Conn, channel string) {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := g.rdb.Publish(ctx, channel, data).Err(); err != nil {
			logger.Error("failed to relay session frame", "channel", channel, "error", err)
		}
	}
}

func (g *Gateway) writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte, channel string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write error", "channel", channel, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
