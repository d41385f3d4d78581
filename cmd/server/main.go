package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/gamehall/backend/internal/api"
	"github.com/gamehall/backend/internal/bus"
	"github.com/gamehall/backend/internal/config"
	"github.com/gamehall/backend/internal/database"
	"github.com/gamehall/backend/internal/game"
	"github.com/gamehall/backend/internal/migrations"
	"github.com/gamehall/backend/internal/redis"
	"github.com/gamehall/backend/internal/store"
	"github.com/gamehall/backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal("failed to run migrations", "error", err)
		}
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	defer rdb.Close()

	pg := store.NewPostgres(db)
	publisher := bus.NewRedisPublisher(rdb)
	coordinator := game.NewCoordinator(pg, publisher)

	// Consume join/cancel/result events from the bus
	consumer := bus.NewConsumer(rdb, coordinator)
	go func() {
		if err := consumer.Run(context.Background()); err != nil && err != context.Canceled {
			logger.Fatal("bus consumer stopped", "error", err)
		}
	}()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, pg, rdb, coordinator, cfg)

	logger.Info("starting gamehall coordinator", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", "error", err)
	}
}
