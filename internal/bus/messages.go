package bus

// Pseudo-queue values used in the "queue" field of directed notifications
// when no session exists yet.
const (
	QueueWaiting       = "WAITING"
	QueueAlreadyInGame = "ALREADY_IN_GAME"
)

// WaitingOpponentPlaceholder is shown by clients while no opponent is known.
const WaitingOpponentPlaceholder = "ממתין ליריב..."

// Result event types on the inbound result channel.
const (
	ResultTypeWin    = "result"
	ResultTypeDraw   = "draw"
	ResultTypeResign = "resign"
)

// MatchNotification is sent to a player's inbox when they are queued
// (Queue == "WAITING") or matched (Queue == the session channel).
type MatchNotification struct {
	Queue            string `json:"queue"`
	YourTurn         bool   `json:"yourTurn"`
	YourUsername     string `json:"yourUsername"`
	OpponentUsername string `json:"opponentUsername"`
}

// AlreadyInGameNotification rejects a join from a player bound to an
// unsettled session.
type AlreadyInGameNotification struct {
	Queue   string `json:"queue"`
	Message string `json:"message"`
}

// ResultEvent is the inbound settlement request published by a game client.
// WinnerID is set for "result" events, ResignedPlayerID for "resign" events.
type ResultEvent struct {
	Type             string `json:"type"`
	Queue            string `json:"queue"`
	WinnerID         int    `json:"winnerId"`
	ResignedPlayerID int    `json:"resignedPlayerId"`
}

// ResultNotification is broadcast on the session channel after a decisive
// game is settled.
type ResultNotification struct {
	Type            string `json:"type"`
	Queue           string `json:"queue"`
	WinnerID        int    `json:"winnerId"`
	LoserID         int    `json:"loserId"`
	WinnerName      string `json:"winnerName"`
	LoserName       string `json:"loserName"`
	WinnerOldRating int    `json:"winnerOldRating"`
	WinnerNewRating int    `json:"winnerNewRating"`
	LoserOldRating  int    `json:"loserOldRating"`
	LoserNewRating  int    `json:"loserNewRating"`
}

// DrawNotification is broadcast on the session channel after a drawn game is
// settled.
type DrawNotification struct {
	Type   string `json:"type"`
	Queue  string `json:"queue"`
	GameID int    `json:"gameId"`
	IsDraw bool   `json:"isDraw"`
}
