// Package gate is the access control gate for the admin area.
//
// Every request under /admin passes through Gate.Evaluate, which combines a
// SessionResolver (who is calling), a RoleResolver (what role they hold) and
// SafeNext (where a post-login redirect may go) into a single Outcome:
//
//	path          session  role           outcome
//	login         none     -              Allow
//	login         some     administrador  RedirectToDefault (validated next)
//	login         some     other/none     Allow
//	login         some     lookup error   Allow
//	other admin   none     -              RedirectToLogin (original path)
//	other admin   some     administrador  Allow
//	other admin   some     other/none     RedirectToLogin, unauthorized, invalidate session
//	other admin   some     lookup error   RedirectToLogin, profile_error
//
// Paths outside /admin are always allowed without calling either resolver.
// Evaluate keeps no state between calls.
package gate

import (
	"context"
	"net/http"
)

// Principal is an authenticated caller as seen by the gate.
type Principal struct {
	ID    string
	Email string // display only
}

// SessionResolver maps request credentials to a principal.
//
// Resolve never fails: a missing, malformed, tampered or expired session
// resolves to (nil, false). It may refresh the session cookie on w.
type SessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*Principal, bool)
	DestroySession(w http.ResponseWriter, r *http.Request)
}

// RoleResolver fetches the current role of a principal.
//
// ok is false when no profile exists or the stored role is not recognized.
// err is non-nil only when the lookup itself failed.
type RoleResolver interface {
	ResolveRole(ctx context.Context, principalID string) (role Role, ok bool, err error)
}

// Kind is the variant of an Outcome.
type Kind int

const (
	Allow Kind = iota
	RedirectToLogin
	RedirectToDefault
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToDefault:
		return "redirect_default"
	}
	return "unknown"
}

// State is the caller state derived from the resolvers.
type State int

const (
	Unauthenticated State = iota
	AuthenticatedNoRole
	AuthenticatedWrongRole
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedNoRole:
		return "no_role"
	case AuthenticatedWrongRole:
		return "wrong_role"
	case AuthenticatedAdmin:
		return "admin"
	}
	return "unknown"
}

// Marker is the informational error code appended to login redirects.
type Marker string

const (
	MarkerNone         Marker = ""
	MarkerUnauthorized Marker = "unauthorized"
	MarkerProfileError Marker = "profile_error"
	MarkerSessionError Marker = "session_error"
)

// Outcome is the decision for one request.
type Outcome struct {
	Kind Kind

	// Next is the original request URI for RedirectToLogin without a marker,
	// and the validated target for RedirectToDefault.
	Next string

	Marker            Marker
	InvalidateSession bool
	State             State

	// Bypass is set for paths outside the admin area.
	Bypass bool

	// Principal and Role are set when a session was resolved.
	Principal *Principal
	Role      Role

	// Err holds the role lookup failure, if any. It is for logging only.
	Err error
}

// Gate evaluates access to the admin area.
type Gate struct {
	sessions SessionResolver
	roles    RoleResolver
}

// New creates a Gate over the given resolvers.
func New(sessions SessionResolver, roles RoleResolver) *Gate {
	return &Gate{sessions: sessions, roles: roles}
}

// Evaluate decides the outcome for r. It never panics and never returns an
// error; every branch produces an Outcome.
func (g *Gate) Evaluate(w http.ResponseWriter, r *http.Request) Outcome {
	if !IsAdminPath(r.URL.Path) {
		return Outcome{Kind: Allow, Bypass: true}
	}
	onLogin := IsLoginPath(r.URL.Path)

	p, ok := g.sessions.Resolve(w, r)
	if !ok || p == nil || p.ID == "" {
		if onLogin {
			return Outcome{Kind: Allow, State: Unauthenticated}
		}
		return Outcome{
			Kind:  RedirectToLogin,
			Next:  r.URL.RequestURI(),
			State: Unauthenticated,
		}
	}

	role, found, err := g.roles.ResolveRole(r.Context(), p.ID)
	if err != nil {
		out := Outcome{
			State:     AuthenticatedNoRole,
			Principal: p,
			Err:       err,
		}
		if onLogin {
			// Render the form; redirecting here would loop.
			out.Kind = Allow
			return out
		}
		out.Kind = RedirectToLogin
		out.Marker = MarkerProfileError
		return out
	}

	state := AuthenticatedNoRole
	switch {
	case found && role.IsAdmin():
		state = AuthenticatedAdmin
	case found:
		state = AuthenticatedWrongRole
	}

	if onLogin {
		if state == AuthenticatedAdmin {
			return Outcome{
				Kind:      RedirectToDefault,
				Next:      SafeNext(r.URL.Query().Get("next")),
				State:     state,
				Principal: p,
				Role:      role,
			}
		}
		return Outcome{Kind: Allow, State: state, Principal: p, Role: role}
	}

	if state == AuthenticatedAdmin {
		return Outcome{Kind: Allow, State: state, Principal: p, Role: role}
	}
	return Outcome{
		Kind:              RedirectToLogin,
		Marker:            MarkerUnauthorized,
		InvalidateSession: true,
		State:             state,
		Principal:         p,
		Role:              role,
	}
}
