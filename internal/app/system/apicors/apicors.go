// Package apicors sets CORS headers on the public JSON endpoints so the
// referral form can be embedded on a separate careers site.
//
// Responses never allow credentials. Cross-origin callers get the public
// listing and the intake endpoint; the admin methods on /api/vacantes need
// the session cookie and so stay same-origin.
package apicors

import (
	"net/http"
	"strings"
)

// Methods advertised in preflight responses.
const allowMethods = "GET, POST, OPTIONS"

// Middleware returns CORS middleware for the given origins. An empty list
// adds no headers at all. "*" allows any origin.
func Middleware(origins []string) func(http.Handler) http.Handler {
	anyOrigin := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if !anyOrigin && len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			_, ok := allowed[origin]
			switch {
			case anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case ok:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			default:
				// Unknown origin: no CORS headers, the browser blocks the read.
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
