// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/stratarefer/internal/app/system/jsonutil"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler provides health check endpoints.
type Handler struct {
	db          Pinger
	mailEnabled bool
	storageType string
	logger      *zap.Logger
}

// NewHandler creates a health Handler. mailEnabled and storageType are
// reported as-is so operators can see the effective configuration.
func NewHandler(db Pinger, mailEnabled bool, storageType string, logger *zap.Logger) *Handler {
	return &Handler{
		db:          db,
		mailEnabled: mailEnabled,
		storageType: storageType,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with /, /ready and /live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the probe aliases /ready, /readyz and /livez.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) ping(ctx context.Context) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), h.logger, "health.ping")
	defer cancel()
	return h.db.Ping(ctx, readpref.Primary())
}

// Check reports database connectivity and the configured side services.
// Only the database affects the status code.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status: "ok",
		Services: map[string]string{
			"storage": h.storageType,
			"mail":    "disabled",
		},
	}
	if h.mailEnabled {
		resp.Services["mail"] = "enabled"
	}

	if err := h.ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Services["mongodb"] = "ok"
	jsonutil.JSON(w, http.StatusOK, resp)
}

// Ready reports whether the database answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Live always answers while the process runs.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
