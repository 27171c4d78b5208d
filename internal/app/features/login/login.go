// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	"github.com/dalemusser/stratarefer/internal/app/system/authutil"
	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/dalemusser/stratarefer/internal/app/system/network"
	"github.com/dalemusser/stratarefer/internal/app/system/normalize"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ProfileFinder loads the profile an administrator signs in with.
type ProfileFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// SessionCreator issues the session cookie after a successful sign-in.
type SessionCreator interface {
	CreateSession(w http.ResponseWriter, r *http.Request, principalID primitive.ObjectID, email string) error
}

// Handler provides the admin sign-in form.
type Handler struct {
	profiles   ProfileFinder
	sessions   SessionCreator
	errLog     *errorsfeature.ErrorLogger
	trustProxy bool
	logger     *zap.Logger
}

// NewHandler creates a new login Handler. trustProxy controls whether the
// client address logged for sign-in attempts is taken from proxy headers.
func NewHandler(profiles ProfileFinder, sessions SessionCreator, errLog *errorsfeature.ErrorLogger, trustProxy bool, logger *zap.Logger) *Handler {
	return &Handler{
		profiles:   profiles,
		sessions:   sessions,
		errLog:     errLog,
		trustProxy: trustProxy,
		logger:     logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	viewdata.BaseVM
	Email string
	Next  string
}

// Routes returns a chi.Router for the login path.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)
	return r
}

const (
	msgInvalidCredentials = "Correo o contraseña incorrectos."
	msgUnavailable        = "Servicio no disponible temporalmente. Intenta de nuevo."
	msgMissingFields      = "Ingresa tu correo y tu contraseña."
)

// MarkerMessage maps a gate marker to the notice shown above the form.
// Unknown markers show nothing.
func MarkerMessage(code string) string {
	switch gate.Marker(code) {
	case gate.MarkerUnauthorized:
		return "Tu cuenta no tiene permisos de administrador."
	case gate.MarkerProfileError:
		return "No pudimos verificar tu perfil. Intenta de nuevo."
	case gate.MarkerSessionError:
		return "No pudimos iniciar tu sesión. Intenta de nuevo."
	}
	return ""
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, email, next, errMsg string) {
	vm := LoginVM{
		BaseVM: viewdata.New(r, "Iniciar sesión", "/"),
		Email:  email,
		Next:   next,
	}
	vm.Error = errMsg
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login/index", vm)
}

// showLogin renders the form. The gate has already redirected signed-in
// administrators away from here.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", query.Get(r, "next"), MarkerMessage(query.Get(r, "error")))
}

// handleLogin checks email and password, and only admits administrators.
// Every credential failure shows the same message.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if email == "" || password == "" {
		h.render(w, r, http.StatusBadRequest, email, next, msgMissingFields)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "login.GetByEmail")
	defer cancel()

	p, err := h.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			authutil.BurnCompare(password)
			h.logAttempt(r, email, "unknown_email")
			h.render(w, r, http.StatusUnauthorized, email, next, msgInvalidCredentials)
			return
		}
		h.errLog.Log(r, "database error during login lookup", err)
		h.render(w, r, http.StatusServiceUnavailable, email, next, msgUnavailable)
		return
	}

	if p.PasswordHash == nil || !authutil.CheckPassword(password, *p.PasswordHash) {
		if p.PasswordHash == nil {
			authutil.BurnCompare(password)
		}
		h.logAttempt(r, email, "wrong_password")
		h.render(w, r, http.StatusUnauthorized, email, next, msgInvalidCredentials)
		return
	}

	if !p.IsActive() {
		h.logAttempt(r, email, "disabled")
		h.render(w, r, http.StatusUnauthorized, email, next, msgInvalidCredentials)
		return
	}

	if role, ok := gate.ParseRole(p.Rol); !ok || !role.IsAdmin() {
		h.logAttempt(r, email, "not_admin")
		h.render(w, r, http.StatusForbidden, email, next, MarkerMessage(string(gate.MarkerUnauthorized)))
		return
	}

	if err := h.sessions.CreateSession(w, r, p.ID, p.Email); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Redirect(w, r, gate.LoginURL(gate.Outcome{Kind: gate.RedirectToLogin, Marker: gate.MarkerSessionError}), http.StatusSeeOther)
		return
	}

	h.logger.Info("admin signed in",
		zap.String("principal_id", p.ID.Hex()),
		zap.String("ip", network.ClientIP(r, h.trustProxy)))

	http.Redirect(w, r, gate.SafeNext(next), http.StatusSeeOther)
}

func (h *Handler) logAttempt(r *http.Request, email, reason string) {
	h.logger.Info("admin sign-in rejected",
		zap.String("email", email),
		zap.String("reason", reason),
		zap.String("ip", network.ClientIP(r, h.trustProxy)))
}
