package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gamehall/backend/internal/models"
)

const defaultRating = 1000

// Postgres implements Store on top of sqlx.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateSession(ctx context.Context, playerA, playerB, gameType int) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO games (player_a, player_b, type_id, stat)
		VALUES ($1, $2, $3, 'active')
		RETURNING id
	`, playerA, playerB, gameType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *Postgres) Username(ctx context.Context, playerID int) (string, error) {
	return username(ctx, s.db, playerID)
}

func (s *Postgres) BeginSettle(ctx context.Context) (SettleTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin settlement: %w", err)
	}
	return &pgSettleTx{tx: tx}, nil
}

// RecentGames returns the most recently finished games for the ops API.
func (s *Postgres) RecentGames(ctx context.Context, limit int) ([]models.Game, error) {
	var games []models.Game
	err := s.db.SelectContext(ctx, &games, `
		SELECT id, type_id, player_a, player_b, stat, winner, loser, draw, created_at, end_time
		FROM games
		WHERE stat = 'finished'
		ORDER BY end_time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent games: %w", err)
	}
	return games, nil
}

type pgSettleTx struct {
	tx *sqlx.Tx
}

func (t *pgSettleTx) Session(ctx context.Context, sessionID int) (Session, error) {
	var row struct {
		PlayerA int    `db:"player_a"`
		PlayerB int    `db:"player_b"`
		Stat    string `db:"stat"`
		Draw    bool   `db:"draw"`
	}
	// FOR UPDATE keeps concurrent settlements of one session serialized at
	// the store as well, backing up the coordinator's per-session lock.
	err := t.tx.GetContext(ctx, &row, `
		SELECT player_a, player_b, stat, draw FROM games WHERE id = $1 FOR UPDATE
	`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session %d: %w", sessionID, err)
	}
	return Session{
		PlayerA:  row.PlayerA,
		PlayerB:  row.PlayerB,
		Finished: row.Stat == "finished",
		Draw:     row.Draw,
	}, nil
}

func (t *pgSettleTx) Rating(ctx context.Context, playerID int) (int, error) {
	var rating int
	err := t.tx.GetContext(ctx, &rating, `
		SELECT current_rating FROM players WHERE id = $1
	`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rating for player %d: %w", playerID, err)
	}
	return rating, nil
}

func (t *pgSettleTx) SetRating(ctx context.Context, playerID, newRating int) error {
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE players SET current_rating = $1 WHERE id = $2
	`, newRating, playerID); err != nil {
		return fmt.Errorf("set rating for player %d: %w", playerID, err)
	}
	return nil
}

func (t *pgSettleTx) IncrementStat(ctx context.Context, playerID int, kind StatKind) error {
	var column string
	switch kind {
	case StatWin:
		column = "wins"
	case StatLoss:
		column = "losses"
	case StatDraw:
		column = "draws"
	default:
		return fmt.Errorf("unknown stat kind %q", kind)
	}

	query := fmt.Sprintf(`UPDATE player_stats SET %s = %s + 1 WHERE player_id = $1`, column, column)
	if _, err := t.tx.ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("increment %s for player %d: %w", column, playerID, err)
	}
	return nil
}

func (t *pgSettleTx) MarkFinished(ctx context.Context, sessionID int, winner, loser *int, draw bool) error {
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE games
		SET winner = $1, loser = $2, draw = $3, end_time = NOW(), stat = 'finished'
		WHERE id = $4
	`, winner, loser, draw, sessionID); err != nil {
		return fmt.Errorf("finish session %d: %w", sessionID, err)
	}
	return nil
}

func (t *pgSettleTx) Username(ctx context.Context, playerID int) (string, error) {
	return username(ctx, t.tx, playerID)
}

func (t *pgSettleTx) Commit() error {
	return t.tx.Commit()
}

func (t *pgSettleTx) Rollback() error {
	return t.tx.Rollback()
}

func username(ctx context.Context, q sqlx.QueryerContext, playerID int) (string, error) {
	var name string
	err := sqlx.GetContext(ctx, q, &name, `
		SELECT username FROM players WHERE id = $1
	`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "unknown", nil
	}
	if err != nil {
		return "", fmt.Errorf("username for player %d: %w", playerID, err)
	}
	return name, nil
}
