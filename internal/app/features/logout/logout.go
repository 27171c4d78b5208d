// internal/app/features/logout/logout.go
package logout

import (
	"net/http"

	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionDestroyer expires the caller's session cookie.
type SessionDestroyer interface {
	DestroySession(w http.ResponseWriter, r *http.Request)
}

// Handler provides logout handlers.
type Handler struct {
	sessions SessionDestroyer
	logger   *zap.Logger
}

// NewHandler creates a new logout Handler.
func NewHandler(sessions SessionDestroyer, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// Routes returns a chi.Router with logout routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleLogout)
	r.Get("/", h.handleLogout) // plain links
	return r
}

// handleLogout terminates the session and returns to the login form.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if p, _, ok := gate.Caller(r); ok {
		h.logger.Info("admin signed out", zap.String("principal_id", p.ID))
	}

	h.sessions.DestroySession(w, r)

	http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
}
