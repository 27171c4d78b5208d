package gate

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/stratarefer/internal/app/system/metrics"
	"go.uber.org/zap"
)

type ctxKey string

const callerKey ctxKey = "gateCaller"

type caller struct {
	principal *Principal
	role      Role
}

// Caller returns the principal and role the gate admitted for this request.
// ok is false outside gated routes and for anonymous callers.
func Caller(r *http.Request) (p *Principal, role Role, ok bool) {
	c, ok := r.Context().Value(callerKey).(caller)
	if !ok || c.principal == nil {
		return nil, "", false
	}
	return c.principal, c.role, true
}

// WithCaller places a principal and role in the request context.
func WithCaller(r *http.Request, p *Principal, role Role) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), callerKey, caller{principal: p, role: role}))
}

// Middleware applies Evaluate to every request and turns the outcome into
// HTTP: Allow passes through with the caller in context, redirects answer
// 303 (or HX-Redirect for HTMX requests).
func (g *Gate) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := g.Evaluate(w, r)
			if out.Bypass {
				next.ServeHTTP(w, r)
				return
			}

			record(logger, r, out)

			if out.InvalidateSession {
				g.sessions.DestroySession(w, r)
			}

			switch out.Kind {
			case Allow:
				if out.Principal != nil {
					r = WithCaller(r, out.Principal, out.Role)
				}
				next.ServeHTTP(w, r)
			case RedirectToDefault:
				redirect(w, r, out.Next)
			default:
				redirect(w, r, LoginURL(out))
			}
		})
	}
}

// LoginURL builds the login redirect target for a RedirectToLogin outcome.
func LoginURL(out Outcome) string {
	if out.Marker != MarkerNone {
		return LoginPath + "?error=" + url.QueryEscape(string(out.Marker))
	}
	if out.Next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(out.Next)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func record(logger *zap.Logger, r *http.Request, out Outcome) {
	metrics.RecordGateDecision(out.Kind.String(), out.State.String(), string(out.Marker))

	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("outcome", out.Kind.String()),
		zap.String("state", out.State.String()),
	}
	if out.Principal != nil {
		fields = append(fields, zap.String("principal_id", out.Principal.ID))
	}
	if out.Marker != MarkerNone {
		fields = append(fields, zap.String("marker", string(out.Marker)))
	}

	switch {
	case out.Err != nil:
		logger.Error("gate: profile lookup failed", append(fields, zap.Error(out.Err))...)
	case out.Marker == MarkerUnauthorized:
		logger.Warn("gate: access denied", fields...)
	case out.Kind == Allow:
		logger.Debug("gate: allowed", fields...)
	default:
		logger.Info("gate: redirect", fields...)
	}
}
