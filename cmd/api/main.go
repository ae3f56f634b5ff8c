package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskguardian/configs"
	"taskguardian/internal/api"
	"taskguardian/internal/api/handlers"
	"taskguardian/internal/auth"
	"taskguardian/internal/middleware"
	"taskguardian/internal/repository"
	"taskguardian/internal/ws"
	"taskguardian/pkg/database"
	"taskguardian/pkg/logger"
)

const sessionTTL = 24 * time.Hour

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	if err := repository.CreateTableIfNotExists(db); err != nil {
		logger.ErrorLogger.Error("Error creating tables", zap.Error(err))
		logger.SyncLoggers()
		panic(err)
	}

	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, sessionTTL)

	hub := ws.NewHub()
	go hub.Run()

	h := handlers.New(db, redisClient, tokens, hub)

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	api.RegisterRoutes(app, h, tokens)

	// Task event stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client := &ws.Client{Conn: conn}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		// Subscribers only listen; reading just detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.Port), zap.String("site_url", cfg.SiteURL))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
