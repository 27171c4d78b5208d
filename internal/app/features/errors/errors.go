// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"strings"

	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger attaches request context to handler-level log entries.
type ErrorLogger struct {
	logger *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

func requestFields(r *http.Request, err error, extra []zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, 3+len(extra))
	fields = append(fields,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	return append(fields, extra...)
}

// Log records a failure that produced an error response.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg, requestFields(r, err, nil)...)
}

// Warn records a failed best-effort side effect. The request itself
// still succeeds.
func (e *ErrorLogger) Warn(r *http.Request, msg string, err error, fields ...zap.Field) {
	e.logger.Warn(msg, requestFields(r, err, fields)...)
}

// LogWithFields is Log with extra structured fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	e.logger.Error(msg, requestFields(r, err, fields)...)
}

// Handler renders the HTML status pages.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// backFor points admin pages back at the dashboard and everything else
// at the public listing.
func backFor(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/admin/") {
		return "/admin/dashboard"
	}
	return "/"
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title, name string) {
	vm := viewdata.New(r, title, backFor(r))
	w.WriteHeader(status)
	templates.Render(w, r, name, vm)
}

func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "Acceso denegado", "errors/forbidden")
}

func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusUnauthorized, "No autorizado", "errors/unauthorized")
}

// NotFound is also the router's fallback handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "Página no encontrada", "errors/not_found")
}

func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "Error del servidor", "errors/internal")
}
