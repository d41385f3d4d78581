package models

import (
	"time"
)

// Player represents a registered player. The coordinator only reads the
// username and reads/writes the rating; everything else belongs to the
// account service.
type Player struct {
	ID            int       `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	CurrentRating int       `db:"current_rating" json:"current_rating"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PlayerStats holds lifetime win/loss/draw counters.
type PlayerStats struct {
	PlayerID int `db:"player_id" json:"player_id"`
	Wins     int `db:"wins" json:"wins"`
	Losses   int `db:"losses" json:"losses"`
	Draws    int `db:"draws" json:"draws"`
}

// Game represents a session between two players. Created 'active' at pairing
// time and moved to 'finished' exactly once at settlement. Winner, Loser and
// EndTime are NULL until settlement (and stay NULL for draws), so they are
// pointers and serialize as plain values or are omitted.
type Game struct {
	ID        int        `db:"id" json:"id"`
	TypeID    int        `db:"type_id" json:"type_id"`
	PlayerA   int        `db:"player_a" json:"player_a"`
	PlayerB   int        `db:"player_b" json:"player_b"`
	Stat      string     `db:"stat" json:"stat"`
	Winner    *int       `db:"winner" json:"winner,omitempty"`
	Loser     *int       `db:"loser" json:"loser,omitempty"`
	Draw      bool       `db:"draw" json:"draw"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	EndTime   *time.Time `db:"end_time" json:"end_time,omitempty"`
}
