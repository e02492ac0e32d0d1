package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/dto"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports process liveness and dependency reachability.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler creates a HealthHandler. redis may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

type healthStatus struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health always answers 200 while the process is serving; dependency state
// is reported in data.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := healthStatus{Database: "up", Redis: "disabled"}
	if h.db == nil || database.Ping(ctx, h.db) != nil {
		status.Database = "down"
	}
	if h.redis != nil {
		status.Redis = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Redis = "down"
		}
	}

	c.JSON(http.StatusOK, dto.OKWithMessage("Server is running", status))
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.Response{Success: false, Message: "Route not found"})
}
