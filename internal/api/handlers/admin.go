package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gamehall/backend/internal/game"
	"github.com/gamehall/backend/internal/store"
)

// GetQueues returns the current waiting queues per game type.
func GetQueues(coord *game.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"queues": coord.QueueSnapshot()})
	}
}

// GetInPlay returns the players currently bound to an unsettled session.
func GetInPlay(coord *game.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		players := coord.InPlaySnapshot()
		c.JSON(http.StatusOK, gin.H{
			"count":   len(players),
			"players": players,
		})
	}
}

// GetRecentGames returns the most recently settled games.
func GetRecentGames(pg *store.Postgres) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}

		games, err := pg.RecentGames(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load games"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": games})
	}
}
