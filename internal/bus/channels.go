// Package bus defines the message channel contract between the coordinator,
// the game clients and the relay gateway, plus the Redis implementation of
// both directions. Channel names and payload shapes are part of the client
// protocol and must not change.
package bus

import (
	"fmt"
	"strconv"
	"strings"
)

// Inbound channels consumed by the coordinator.
const (
	// ChannelLegacyJoin carries a bare player id; game type defaults to 1.
	ChannelLegacyJoin = "player-join"
	// ChannelJoin carries "<playerId>:<gameTypeId>".
	ChannelJoin = "game-join"
	// ChannelCancel carries "<playerId>:<gameTypeId>".
	ChannelCancel = "game-cancel"
	// ChannelResult carries a JSON ResultEvent.
	ChannelResult = "game-result"
)

const sessionChannelPrefix = "game-session-"

// PlayerChannel returns the directed inbox channel for a player.
func PlayerChannel(playerID int) string {
	return fmt.Sprintf("player-%d", playerID)
}

// SessionChannel returns the broadcast channel for a session.
func SessionChannel(sessionID int) string {
	return fmt.Sprintf("%s%d", sessionChannelPrefix, sessionID)
}

// SessionIDFromChannel extracts the session id from a session channel name.
func SessionIDFromChannel(channel string) (int, error) {
	raw, ok := strings.CutPrefix(channel, sessionChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("not a session channel: %q", channel)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad session id in channel %q: %w", channel, err)
	}
	return id, nil
}

// ParsePlayerAndType parses the "<playerId>:<gameTypeId>" payload used by the
// join and cancel channels.
func ParsePlayerAndType(payload string) (playerID, gameType int, err error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed payload %q", payload)
	}
	playerID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad player id in payload %q: %w", payload, err)
	}
	gameType, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad game type in payload %q: %w", payload, err)
	}
	return playerID, gameType, nil
}
