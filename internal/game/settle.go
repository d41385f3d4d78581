package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamehall/backend/internal/bus"
	"github.com/gamehall/backend/internal/rating"
	"github.com/gamehall/backend/internal/store"
	"github.com/gamehall/backend/pkg/logger"
)

// HandleResult settles a finished game: it resolves the participants,
// computes new ratings for decisive results, applies rating, stat and game
// record updates in one store transaction, releases both players from the
// in-play set and broadcasts the outcome on the session channel.
//
// Settlement of one session is serialized by a per-session lock; duplicate
// events for an already-finished session are detected inside the transaction
// and treated as a no-op. The event is not retried on failure.
func (c *Coordinator) HandleResult(ctx context.Context, event bus.ResultEvent) {
	sessionID, err := bus.SessionIDFromChannel(event.Queue)
	if err != nil {
		logger.Warn("dropping result event with bad session channel",
			"queue", event.Queue, "error", err)
		return
	}

	lock := c.sessions.Get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	err = c.settle(ctx, sessionID, event)
	if err != nil {
		logger.Error("settlement failed",
			"session", sessionID, "type", event.Type, "error", err)
	}
	if err == nil || errors.Is(err, store.ErrSessionNotFound) {
		c.sessions.Release(sessionID)
	}
}

func (c *Coordinator) settle(ctx context.Context, sessionID int, event bus.ResultEvent) error {
	tx, err := c.store.BeginSettle(ctx)
	if err != nil {
		return err
	}
	// No-op after a successful Commit; rolls back every mutation otherwise.
	defer tx.Rollback()

	session, err := tx.Session(ctx, sessionID)
	if err != nil {
		return err
	}

	switch event.Type {
	case bus.ResultTypeDraw:
		if session.Draw {
			logger.Info("duplicate draw event ignored", "session", sessionID)
			return nil
		}
		if session.Finished {
			logger.Info("draw event for finished session ignored", "session", sessionID)
			return nil
		}
		return c.settleDraw(ctx, tx, sessionID, session)

	case bus.ResultTypeWin, bus.ResultTypeResign:
		if session.Finished {
			logger.Info("result event for finished session ignored",
				"session", sessionID, "type", event.Type)
			return nil
		}

		var winnerID int
		if event.Type == bus.ResultTypeWin {
			winnerID = event.WinnerID
		} else {
			winnerID, err = opponentOf(session, event.ResignedPlayerID)
			if err != nil {
				return err
			}
		}
		loserID, err := opponentOf(session, winnerID)
		if err != nil {
			return err
		}
		return c.settleDecisive(ctx, tx, sessionID, winnerID, loserID)

	default:
		return fmt.Errorf("unknown result type %q", event.Type)
	}
}

func (c *Coordinator) settleDecisive(ctx context.Context, tx store.SettleTx, sessionID, winnerID, loserID int) error {
	winnerOld, err := tx.Rating(ctx, winnerID)
	if err != nil {
		return err
	}
	loserOld, err := tx.Rating(ctx, loserID)
	if err != nil {
		return err
	}

	winnerNew, loserNew := rating.Calculate(winnerOld, loserOld)

	if err := tx.SetRating(ctx, winnerID, winnerNew); err != nil {
		return err
	}
	if err := tx.SetRating(ctx, loserID, loserNew); err != nil {
		return err
	}
	if err := tx.IncrementStat(ctx, winnerID, store.StatWin); err != nil {
		return err
	}
	if err := tx.IncrementStat(ctx, loserID, store.StatLoss); err != nil {
		return err
	}
	if err := tx.MarkFinished(ctx, sessionID, &winnerID, &loserID, false); err != nil {
		return err
	}

	winnerName, err := tx.Username(ctx, winnerID)
	if err != nil {
		return err
	}
	loserName, err := tx.Username(ctx, loserID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement for session %d: %w", sessionID, err)
	}

	c.inPlay.Remove(winnerID)
	c.inPlay.Remove(loserID)

	notification := bus.ResultNotification{
		Type:            bus.ResultTypeWin,
		Queue:           bus.SessionChannel(sessionID),
		WinnerID:        winnerID,
		LoserID:         loserID,
		WinnerName:      winnerName,
		LoserName:       loserName,
		WinnerOldRating: winnerOld,
		WinnerNewRating: winnerNew,
		LoserOldRating:  loserOld,
		LoserNewRating:  loserNew,
	}
	if err := c.pub.ToSession(ctx, sessionID, notification); err != nil {
		logger.Error("failed to broadcast result", "session", sessionID, "error", err)
	}

	logger.Info("session settled",
		"session", sessionID, "winner", winnerID, "loser", loserID,
		"winnerRating", winnerNew, "loserRating", loserNew)
	return nil
}

func (c *Coordinator) settleDraw(ctx context.Context, tx store.SettleTx, sessionID int, session store.Session) error {
	if err := tx.IncrementStat(ctx, session.PlayerA, store.StatDraw); err != nil {
		return err
	}
	if err := tx.IncrementStat(ctx, session.PlayerB, store.StatDraw); err != nil {
		return err
	}
	if err := tx.MarkFinished(ctx, sessionID, nil, nil, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draw for session %d: %w", sessionID, err)
	}

	c.inPlay.Remove(session.PlayerA)
	c.inPlay.Remove(session.PlayerB)

	notification := bus.DrawNotification{
		Type:   bus.ResultTypeDraw,
		Queue:  bus.SessionChannel(sessionID),
		GameID: sessionID,
		IsDraw: true,
	}
	if err := c.pub.ToSession(ctx, sessionID, notification); err != nil {
		logger.Error("failed to broadcast draw", "session", sessionID, "error", err)
	}

	logger.Info("session settled as draw",
		"session", sessionID, "playerA", session.PlayerA, "playerB", session.PlayerB)
	return nil
}

// opponentOf returns the other participant of the session, or an error if
// playerID is not a participant.
func opponentOf(session store.Session, playerID int) (int, error) {
	switch playerID {
	case session.PlayerA:
		return session.PlayerB, nil
	case session.PlayerB:
		return session.PlayerA, nil
	default:
		return 0, fmt.Errorf("player %d is not part of this game", playerID)
	}
}
