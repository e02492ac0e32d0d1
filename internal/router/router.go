// Package router wires middleware and handlers into the gin engine.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/taskflow/taskflow-api/internal/cache"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/handlers"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/services"
	"gorm.io/gorm"
)

// Deps holds everything the router needs. Redis is optional.
type Deps struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	AuthService *services.AuthService
	TaskService *services.TaskService
	RateLimiter cache.RateLimiter
}

// New builds the engine with the full middleware chain and route table.
func New(deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Recovery(deps.Log),
		middleware.SecurityHeaders(deps.Config.IsProduction()),
		cors.New(cors.Config{
			AllowOrigins:     []string{deps.Config.ClientURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)

	requireAuth := middleware.RequireAuth(deps.AuthService)
	requireOwner := middleware.RequireTaskOwnership(deps.TaskService)

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter, deps.Log))
	}
	{
		api.GET("/health", healthHandler.Health)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetMe)
			auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
			auth.PUT("/password", requireAuth, authHandler.UpdatePassword)
			auth.POST("/logout", requireAuth, authHandler.Logout)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/stats", taskHandler.GetStats)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", requireOwner, taskHandler.GetTask)
			tasks.PUT("/:id", requireOwner, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireOwner, taskHandler.DeleteTask)
		}
	}

	r.NoRoute(handlers.NotFound)

	return r
}
