package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ativus/ativus/infrastructure/http/response"
)

// HealthHandler reports readiness of the service's dependencies. Redis is
// optional; only the database gates readiness.
type HealthHandler struct {
	db          *sql.DB
	redisClient *redis.Client
}

func NewHealthHandler(db *sql.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "down"
		response.WriteJSON(w, http.StatusServiceUnavailable, response.Envelope{
			Status:  false,
			Message: "unhealthy",
			Data:    checks,
		})
		return
	}
	checks["database"] = "up"

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	}

	response.Success(w, http.StatusOK, "healthy", checks)
}
