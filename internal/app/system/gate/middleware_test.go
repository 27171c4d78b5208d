package gate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratarefer/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

func counterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// okHandler records whether it ran and what caller the gate placed in context.
type okHandler struct {
	called bool
	p      *Principal
	role   Role
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.p, h.role, _ = Caller(r)
	w.WriteHeader(http.StatusOK)
}

func serve(g *Gate, req *http.Request) (*httptest.ResponseRecorder, *okHandler) {
	next := &okHandler{}
	rec := httptest.NewRecorder()
	g.Middleware(zap.NewNop())(next).ServeHTTP(rec, req)
	return rec, next
}

func TestMiddleware_Responses(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		principal     *Principal
		roles         fakeRoles
		wantStatus    int
		wantLocation  string
		wantNext      bool
		wantDestroyed int
	}{
		{
			name:       "admin allowed",
			target:     "/admin/vacantes",
			principal:  alice,
			roles:      fakeRoles{role: RoleAdministrator, ok: true},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:         "anonymous sent to login with next",
			target:       "/admin/vacantes",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/admin/login?next=%2Fadmin%2Fvacantes",
		},
		{
			name:          "referrer sent to login with unauthorized marker",
			target:        "/admin/vacantes",
			principal:     alice,
			roles:         fakeRoles{role: RoleReferrer, ok: true},
			wantStatus:    http.StatusSeeOther,
			wantLocation:  "/admin/login?error=unauthorized",
			wantDestroyed: 1,
		},
		{
			name:         "lookup error sent to login with profile_error",
			target:       "/admin/dashboard",
			principal:    alice,
			roles:        fakeRoles{err: errors.New("no reachable servers")},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/admin/login?error=profile_error",
		},
		{
			name:         "admin on login redirected to next",
			target:       "/admin/login?next=%2Fadmin%2Freferencias",
			principal:    alice,
			roles:        fakeRoles{role: RoleAdministrator, ok: true},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/admin/referencias",
		},
		{
			name:         "admin on login with hostile next goes to dashboard",
			target:       "/admin/login?next=//evil.example",
			principal:    alice,
			roles:        fakeRoles{role: RoleAdministrator, ok: true},
			wantStatus:   http.StatusSeeOther,
			wantLocation: DefaultPath,
		},
		{
			name:       "login form rendered for anonymous",
			target:     "/admin/login",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "public path passes through",
			target:     "/api/vacantes",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{principal: tt.principal}
			roles := tt.roles
			g := New(sessions, &roles)

			rec, next := serve(g, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
			if next.called != tt.wantNext {
				t.Errorf("next called = %v, want %v", next.called, tt.wantNext)
			}
			if sessions.destroyed != tt.wantDestroyed {
				t.Errorf("sessions destroyed = %d, want %d", sessions.destroyed, tt.wantDestroyed)
			}
		})
	}
}

func TestMiddleware_CallerInContext(t *testing.T) {
	g := New(&fakeSessions{principal: alice}, &fakeRoles{role: RoleAdministrator, ok: true})

	_, next := serve(g, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	if !next.called {
		t.Fatal("next handler not called")
	}
	if next.p == nil || next.p.ID != alice.ID {
		t.Errorf("Caller principal = %+v, want %+v", next.p, alice)
	}
	if next.role != RoleAdministrator {
		t.Errorf("Caller role = %q, want %q", next.role, RoleAdministrator)
	}
}

func TestMiddleware_HTMXRedirect(t *testing.T) {
	g := New(&fakeSessions{}, &fakeRoles{})

	req := httptest.NewRequest(http.MethodGet, "/admin/referencias", nil)
	req.Header.Set("HX-Request", "true")
	rec, next := serve(g, req)

	if next.called {
		t.Error("next handler should not be called")
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/admin/login?next=%2Fadmin%2Freferencias" {
		t.Errorf("HX-Redirect = %q", got)
	}
	if rec.Header().Get("Location") != "" {
		t.Error("HTMX response should not carry a Location header")
	}
}

func TestMiddleware_CountsDecisions(t *testing.T) {
	g := New(&fakeSessions{principal: alice}, &fakeRoles{role: RoleReferrer, ok: true})

	before := counterValue(metrics.GateDecisionsTotal, "redirect_login", "wrong_role", "unauthorized")
	serve(g, httptest.NewRequest(http.MethodGet, "/admin/vacantes", nil))
	after := counterValue(metrics.GateDecisionsTotal, "redirect_login", "wrong_role", "unauthorized")

	if after-before != 1 {
		t.Errorf("gate decision counter delta = %v, want 1", after-before)
	}
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		out  Outcome
		want string
	}{
		{Outcome{Kind: RedirectToLogin}, LoginPath},
		{Outcome{Kind: RedirectToLogin, Next: "/admin/vacantes"}, "/admin/login?next=%2Fadmin%2Fvacantes"},
		{Outcome{Kind: RedirectToLogin, Marker: MarkerProfileError}, "/admin/login?error=profile_error"},
		{Outcome{Kind: RedirectToLogin, Marker: MarkerUnauthorized, Next: "/admin/x"}, "/admin/login?error=unauthorized"},
	}

	for _, tt := range tests {
		if got := LoginURL(tt.out); got != tt.want {
			t.Errorf("LoginURL(%+v) = %q, want %q", tt.out, got, tt.want)
		}
	}
}
