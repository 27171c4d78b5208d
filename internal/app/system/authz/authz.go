// Package authz answers "is this caller an administrator" outside and
// inside the gate.
//
// Pages under /admin read the caller the gate placed in context (UserCtx,
// IsAdmin). The JSON API is not under /admin, so RequireAdminAPI resolves
// the session and role itself on every request.
package authz

import (
	"net/http"

	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/dalemusser/stratarefer/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserCtx returns the caller's role, email and id as admitted by the gate.
// If no caller is present or the id is malformed it returns
// ("", "", NilObjectID, false), so ok=true always carries a usable id.
func UserCtx(r *http.Request) (role gate.Role, email string, id primitive.ObjectID, ok bool) {
	p, role, ok := gate.Caller(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return "", "", primitive.NilObjectID, false
	}
	return role, p.Email, id, true
}

// IsAdmin reports whether the request carries an administrator caller.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role.IsAdmin()
}

// IsLoggedIn reports whether there is a caller in the request context.
func IsLoggedIn(r *http.Request) bool {
	_, _, _, ok := UserCtx(r)
	return ok
}

// RequireAdminPage re-checks, behind the gate, that the caller is an
// administrator. Anything else is sent to the login form with the
// unauthorized marker.
func RequireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			http.Redirect(w, r, gate.LoginURL(gate.Outcome{Kind: gate.RedirectToLogin, Marker: gate.MarkerUnauthorized}), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminAPI returns middleware for JSON endpoints that only
// administrators may call. It answers 401 without a session, 500 when the
// role lookup fails and 403 for any other role. On success the caller is
// placed in context the same way the gate does it.
func RequireAdminAPI(sessions gate.SessionResolver, roles gate.RoleResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := sessions.Resolve(w, r)
			if !ok || p == nil {
				jsonutil.Unauthorized(w, "No autorizado")
				return
			}

			role, found, err := roles.ResolveRole(r.Context(), p.ID)
			if err != nil {
				logger.Error("authz: profile lookup failed",
					zap.String("principal_id", p.ID),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				jsonutil.InternalError(w, "Error al verificar permisos")
				return
			}
			if !found || !role.IsAdmin() {
				logger.Warn("authz: non-admin API call rejected",
					zap.String("principal_id", p.ID),
					zap.String("role", role.String()),
					zap.String("path", r.URL.Path))
				jsonutil.Forbidden(w, "Se requieren permisos de administrador")
				return
			}

			next.ServeHTTP(w, gate.WithCaller(r, p, role))
		})
	}
}
