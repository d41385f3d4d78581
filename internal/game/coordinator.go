// Package game implements the matchmaking and settlement coordinator: the
// per-type waiting queues, the in-play set, session creation and the
// transactional application of game results.
package game

import (
	"context"

	"github.com/gamehall/backend/internal/bus"
	"github.com/gamehall/backend/internal/store"
	"github.com/gamehall/backend/pkg/logger"
)

// Coordinator owns the shared matchmaking state. All state is instance-owned
// and injected at construction so multiple coordinators can run in tests.
// Handle* methods are safe to call concurrently.
type Coordinator struct {
	store    store.Store
	pub      bus.Publisher
	queues   *waitingQueues
	inPlay   *inPlaySet
	sessions *sessionLocks
}

func NewCoordinator(st store.Store, pub bus.Publisher) *Coordinator {
	return &Coordinator{
		store:    st,
		pub:      pub,
		queues:   newWaitingQueues(),
		inPlay:   newInPlaySet(),
		sessions: newSessionLocks(),
	}
}

// HandleJoin pairs the player with the oldest waiting player of the same
// game type, or enqueues them. Joins from players bound to an unsettled
// session are rejected; repeated joins from a waiting player only re-send
// the waiting notification. A join for a different game type while waiting
// moves the player to the new type's queue.
func (c *Coordinator) HandleJoin(ctx context.Context, playerID, gameType int) {
	if c.inPlay.Contains(playerID) {
		logger.Info("join rejected, player already in a game", "player", playerID)
		c.sendAlreadyInGame(ctx, playerID)
		return
	}

	opponent, outcome := c.queues.Reserve(gameType, playerID, c.inPlay.Contains)
	switch outcome {
	case reserveAlreadyWaiting:
		logger.Info("player already waiting", "player", playerID, "type", gameType)
		c.sendWaiting(ctx, playerID)
	case reserveWaiting:
		logger.Info("player queued", "player", playerID, "type", gameType)
		c.sendWaiting(ctx, playerID)
	case reservePaired:
		c.createSession(ctx, opponent, playerID, gameType)
	}
}

// createSession materializes a session for a confirmed pair. playerA is the
// original waiting player and moves first. On store failure the opponent is
// restored to the head of the queue and the joining player keeps waiting;
// neither player is marked in-play.
func (c *Coordinator) createSession(ctx context.Context, playerA, playerB, gameType int) {
	sessionID, err := c.store.CreateSession(ctx, playerA, playerB, gameType)
	if err != nil {
		logger.Error("session creation failed, restoring opponent to queue head",
			"playerA", playerA, "playerB", playerB, "type", gameType, "error", err)
		c.queues.PushFront(gameType, playerA)
		c.sendWaiting(ctx, playerB)
		return
	}

	c.inPlay.Add(playerA)
	c.inPlay.Add(playerB)
	// A join for another type can land between the opponent pop and the
	// in-play marking above; drop any queue entries from that window.
	c.queues.RemoveAll(playerA)
	c.queues.RemoveAll(playerB)

	channel := bus.SessionChannel(sessionID)
	nameA := c.username(ctx, playerA)
	nameB := c.username(ctx, playerB)

	c.send(ctx, playerA, bus.MatchNotification{
		Queue:            channel,
		YourTurn:         true,
		YourUsername:     nameA,
		OpponentUsername: nameB,
	})
	c.send(ctx, playerB, bus.MatchNotification{
		Queue:            channel,
		YourTurn:         false,
		YourUsername:     nameB,
		OpponentUsername: nameA,
	})

	logger.Info("session created",
		"session", sessionID, "channel", channel,
		"playerA", playerA, "playerB", playerB, "type", gameType)
}

// HandleCancel removes the player from the waiting queue for gameType. A
// cancel for a player who is not waiting (or already in-play) is a no-op.
func (c *Coordinator) HandleCancel(ctx context.Context, playerID, gameType int) {
	if c.queues.Remove(gameType, playerID) {
		logger.Info("player canceled waiting", "player", playerID, "type", gameType)
	}
}

// QueueSnapshot exposes the waiting queues to the ops API.
func (c *Coordinator) QueueSnapshot() map[int][]int {
	return c.queues.Snapshot()
}

// InPlaySnapshot exposes the in-play set to the ops API.
func (c *Coordinator) InPlaySnapshot() []int {
	return c.inPlay.Snapshot()
}

func (c *Coordinator) sendWaiting(ctx context.Context, playerID int) {
	c.send(ctx, playerID, bus.MatchNotification{
		Queue:            bus.QueueWaiting,
		YourTurn:         false,
		YourUsername:     c.username(ctx, playerID),
		OpponentUsername: bus.WaitingOpponentPlaceholder,
	})
}

func (c *Coordinator) sendAlreadyInGame(ctx context.Context, playerID int) {
	c.send(ctx, playerID, bus.AlreadyInGameNotification{
		Queue:   bus.QueueAlreadyInGame,
		Message: "You are already in an active game",
	})
}

func (c *Coordinator) send(ctx context.Context, playerID int, payload interface{}) {
	if err := c.pub.ToPlayer(ctx, playerID, payload); err != nil {
		logger.Error("failed to notify player", "player", playerID, "error", err)
	}
}

func (c *Coordinator) username(ctx context.Context, playerID int) string {
	name, err := c.store.Username(ctx, playerID)
	if err != nil {
		logger.Warn("username lookup failed", "player", playerID, "error", err)
		return "unknown"
	}
	return name
}
