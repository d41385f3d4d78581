package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gamehall/backend/internal/api/handlers"
	"github.com/gamehall/backend/internal/config"
	"github.com/gamehall/backend/internal/game"
	"github.com/gamehall/backend/internal/middleware"
	"github.com/gamehall/backend/internal/store"
	"github.com/gamehall/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, pg *store.Postgres, rdb *redis.Client, coord *game.Coordinator, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// WebSocket relay for browser clients
		gateway := ws.NewGateway(rdb, cfg.WSSendBufferSize)
		v1.GET("/ws/player/:id", gateway.PlayerHandler())
		v1.GET("/ws/session/:id", gateway.SessionHandler())

		// Ops endpoints
		admin := v1.Group("/admin", middleware.AdminAuth(cfg.JWTSecret))
		{
			admin.GET("/queues", handlers.GetQueues(coord))
			admin.GET("/inplay", handlers.GetInPlay(coord))
			admin.GET("/games", handlers.GetRecentGames(pg))
		}
	}
}
