package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/taskflow/taskflow-api/internal/cache"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/logger"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/router"
	"github.com/taskflow/taskflow-api/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, closer, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, appLog); err != nil {
		appLog.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient := connectRedis(cfg, appLog)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)
	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		tokens,
		cache.NewTokenDenylist(redisClient),
	)

	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		appLog.Warn("OPENAI_API_KEY not set, task suggestions are disabled")
	}

	taskService := services.NewTaskService(
		repository.NewTaskRepository(db),
		cache.NewStatsCache(redisClient, cfg.StatsCacheTTL),
		suggester,
	)

	var limiter cache.RateLimiter
	if cfg.RateLimitMax > 0 {
		limiter = cache.NewRateLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	r := router.New(router.Deps{
		Config:      cfg,
		Log:         appLog,
		DB:          db,
		Redis:       redisClient,
		AuthService: authService,
		TaskService: taskService,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals
	appLog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.WithError(err).Error("Server forced to shut down")
	}
	appLog.Info("Server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; every
// Redis-backed component then uses its in-process fallback.
func connectRedis(cfg *config.Config, appLog *logrus.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		appLog.Info("REDIS_URL not set, using in-memory cache and rate limiting")
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid REDIS_URL")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		appLog.WithError(err).Warn("Redis unavailable, using in-memory fallbacks")
		_ = client.Close()
		return nil
	}

	appLog.Info("Redis connection established")
	return client
}
