package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// readinessTimeout bounds how long a probe waits on the backing stores.
const readinessTimeout = 5 * time.Second

// HealthHandler answers orchestrator probes.
type HealthHandler struct {
	pool        *pgxpool.Pool
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:        pool,
		redisClient: redisClient,
	}
}

// Liveness reports that the process is up. It deliberately checks nothing
// else; a node with a flaky database should be drained, not restarted.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness verifies both backing stores answer before the node takes
// traffic. A node that cannot reach Postgres must not accept reservations.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"postgres", h.pool.Ping},
		{"redis", func(ctx context.Context) error { return h.redisClient.Ping(ctx).Err() }},
	}

	status := map[string]string{"status": "ready"}
	for _, check := range checks {
		if err := check.ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, check.name+" unhealthy", err.Error())
			return
		}
		status[check.name] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
