package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the caller a handler under test sees.
type TestUser struct {
	ID    string
	Email string
	Role  gate.Role
}

func AdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Email: "admin@test.com", Role: gate.RoleAdministrator}
}

func ReferrerUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Email: "referidor@test.com", Role: gate.RoleReferrer}
}

func (u TestUser) ObjectID() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(u.ID)
	return oid
}

// WithUser places user in the request context the way the gate does after
// an Allow decision.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return gate.WithCaller(r, &gate.Principal{ID: user.ID, Email: user.Email}, user.Role)
}

func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

type csrfKey string

// WithCSRFToken marks a request as having passed the CSRF layer. Handlers
// called directly never see gorilla/csrf, so csrf.Token returns "" and
// pages render with an empty hidden field.
func WithCSRFToken(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), csrfKey("csrf_token"), "test-token"))
}

// NewAuthenticatedRequestWithCSRF is the usual request for admin form pages.
func NewAuthenticatedRequestWithCSRF(method, target string, user TestUser) *http.Request {
	return WithCSRFToken(NewAuthenticatedRequest(method, target, user))
}
