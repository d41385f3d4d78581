// Package store is the persistence boundary of the coordinator. The
// interfaces here cover exactly the operations pairing and settlement need,
// so the coordinator can be exercised against an in-memory fake.
package store

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when a settlement references a session id
// that does not exist (e.g. a stale result event).
var ErrSessionNotFound = errors.New("session not found")

// StatKind names a lifetime counter on player_stats.
type StatKind string

const (
	StatWin  StatKind = "wins"
	StatLoss StatKind = "losses"
	StatDraw StatKind = "draws"
)

// Session is the settlement-relevant view of a game row.
type Session struct {
	PlayerA  int
	PlayerB  int
	Finished bool
	Draw     bool
}

// Store provides the non-transactional operations used during pairing.
type Store interface {
	// CreateSession inserts a new active game and returns its generated id.
	CreateSession(ctx context.Context, playerA, playerB, gameType int) (int, error)
	// Username resolves a player's display name; "unknown" if absent.
	Username(ctx context.Context, playerID int) (string, error)
	// BeginSettle opens the transaction a settlement runs in.
	BeginSettle(ctx context.Context) (SettleTx, error)
}

// SettleTx is a settlement transaction. Either Commit applies every mutation
// or Rollback discards all of them; callers defer Rollback so failures on any
// step leave the store untouched.
type SettleTx interface {
	Session(ctx context.Context, sessionID int) (Session, error)
	Rating(ctx context.Context, playerID int) (int, error)
	SetRating(ctx context.Context, playerID, newRating int) error
	IncrementStat(ctx context.Context, playerID int, kind StatKind) error
	// MarkFinished moves the session to finished with an end timestamp.
	// winner and loser are nil for a draw.
	MarkFinished(ctx context.Context, sessionID int, winner, loser *int, draw bool) error
	Username(ctx context.Context, playerID int) (string, error)
	Commit() error
	Rollback() error
}
