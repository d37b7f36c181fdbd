package main

import (
	"context" // context package is needed for Redis operations

	"github.com/obutuz/Miley/internal/config"  // Custom package for configuration
	"github.com/obutuz/Miley/internal/db"      // Database connection
	"github.com/obutuz/Miley/internal/mail"    // Outgoing mail
	"github.com/obutuz/Miley/internal/routes"  // Route registration
	"github.com/obutuz/Miley/internal/session" // Redis backed sessions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine readable logs in production
	}
	if cfg.SecretKey == "" {
		logrus.Fatal("SECRET_KEY must be set") // Session cookies cannot be signed without it
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Sessions live in Redis, the cookie only carries a signed session id
	sessions := session.NewManager(session.NewStore(redisClient, cfg.SessionTTL), cfg.SecretKey, cfg.IsProd)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	routes.Setup(r, routes.Deps{
		DB:       gdb,
		Redis:    redisClient,
		Sessions: sessions,
		Mailer:   mail.New(cfg),
		Config:   cfg,
	})

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
