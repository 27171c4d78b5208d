package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stratarefer/internal/app/system/auth"
	"github.com/dalemusser/stratarefer/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeDestroyer struct{ calls int }

func (f *fakeDestroyer) DestroySession(http.ResponseWriter, *http.Request) { f.calls++ }

func TestLogout_RedirectsToLogin(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			d := &fakeDestroyer{}
			h := NewHandler(d, zap.NewNop())

			req := testutil.NewAuthenticatedRequest(method, "/", testutil.AdminUser())
			rec := httptest.NewRecorder()
			Routes(h).ServeHTTP(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if loc := rec.Header().Get("Location"); loc != "/admin/login" {
				t.Errorf("Location = %q, want %q", loc, "/admin/login")
			}
			if d.calls != 1 {
				t.Errorf("DestroySession calls = %d, want 1", d.calls)
			}
		})
	}
}

func TestLogout_WithoutCaller(t *testing.T) {
	d := &fakeDestroyer{}
	h := NewHandler(d, zap.NewNop())

	rec := httptest.NewRecorder()
	h.handleLogout(rec, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))

	if rec.Code != http.StatusSeeOther || d.calls != 1 {
		t.Errorf("status = %d, destroy calls = %d", rec.Code, d.calls)
	}
}

// The real session manager must no longer resolve the cookie after logout.
func TestLogout_ExpiresRealSession(t *testing.T) {
	sm, err := auth.NewSessionManager("xK8nP2mQ9rT5vW7yB3cF6hJ0lN4sU1wZ", "", "", 24*time.Hour, time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	loginRec := httptest.NewRecorder()
	if err := sm.CreateSession(loginRec, httptest.NewRequest(http.MethodPost, "/admin/login", nil), primitive.NewObjectID(), "admin@example.com"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	cookie := loginRec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	NewHandler(sm, zap.NewNop()).handleLogout(rec, req)

	var expired *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.SessionName() {
			expired = c
		}
	}
	if expired == nil || expired.MaxAge >= 0 {
		t.Fatalf("logout did not expire the cookie: %+v", expired)
	}

	after := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	after.AddCookie(expired)
	if _, ok := sm.Resolve(httptest.NewRecorder(), after); ok {
		t.Error("expired cookie still resolves to a principal")
	}
}
