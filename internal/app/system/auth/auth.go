// Package auth implements cookie sessions for the admin area. SessionManager
// is the gate's SessionResolver.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Session error classification for logging and monitoring.
type sessionErrorType int

const (
	sessionErrUnknown   sessionErrorType = iota
	sessionErrExpired                    // timestamp expired - normal
	sessionErrTampered                   // MAC invalid - potential attack
	sessionErrCorrupted                  // decode/decrypt failed - corruption or key rotation
	sessionErrBackend                    // store/backend failure
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey      = "is_authenticated"
	principalIDKey = "principal_id"
	emailKey       = "email"
	issuedAtKey    = "issued_at"
)

// DefaultSessionName is used when no cookie name is configured.
const DefaultSessionName = "stratarefer-session"

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager encapsulates the cookie store and its configuration.
// Use NewSessionManager to create an instance.
type SessionManager struct {
	store         *sessions.CookieStore
	logger        *zap.Logger
	name          string
	maxAge        time.Duration
	refreshWindow time.Duration
	now           func() time.Time
}

// NewSessionManager creates a new SessionManager.
//
// Parameters:
//   - sessionKey: signing key for cookies (must be ≥32 chars in production)
//   - name: session cookie name (defaults to DefaultSessionName if empty)
//   - domain: cookie domain (empty means current host)
//   - maxAge: session lifetime (e.g., 24*time.Hour)
//   - refreshWindow: re-issue the cookie when less than this remains; 0 disables
//   - secure: if true, cookies are marked Secure (for HTTPS production)
//   - logger: zap logger for session error logging
//
// Returns an error if sessionKey is empty or too weak for production mode.
func NewSessionManager(sessionKey, name, domain string, maxAge, refreshWindow time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}
	if maxAge <= 0 {
		return nil, &SessionConfigError{Message: "session max age must be positive"}
	}
	if refreshWindow < 0 || refreshWindow >= maxAge {
		return nil, &SessionConfigError{Message: "session refresh window must be between 0 and the session max age"}
	}

	isWeak := len(sessionKey) < 32 || isDefaultKey(sessionKey)

	if secure {
		if isWeak {
			return nil, &SessionConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)),
			zap.Bool("is_default", isDefaultKey(sessionKey)))
	}

	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	// Keeps the securecookie timestamp check in line with the cookie lifetime.
	store.MaxAge(int(maxAge.Seconds()))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge),
		zap.Duration("refresh_window", refreshWindow))

	return &SessionManager{
		store:         store,
		logger:        logger,
		name:          name,
		maxAge:        maxAge,
		refreshWindow: refreshWindow,
		now:           time.Now,
	}, nil
}

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

// SessionName returns the configured session cookie name.
func (sm *SessionManager) SessionName() string {
	return sm.name
}

/*─────────────────────────────────────────────────────────────────────────────*
| Resolve                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Resolve returns the principal carried by the request's session cookie.
// A missing, malformed, tampered or expired cookie resolves to (nil, false);
// the cause is logged, never returned. When the session is close to expiry
// it is re-issued on w.
func (sm *SessionManager) Resolve(w http.ResponseWriter, r *http.Request) (*gate.Principal, bool) {
	if _, err := r.Cookie(sm.name); err != nil {
		return nil, false
	}

	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sm.logSessionError(r, err)
		return nil, false
	}

	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil, false
	}
	id := getString(sess, principalIDKey)
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		sm.logger.Warn("session carries an invalid principal id",
			zap.String("path", r.URL.Path))
		return nil, false
	}

	p := &gate.Principal{ID: id, Email: getString(sess, emailKey)}

	issued, _ := sess.Values[issuedAtKey].(int64)
	if sm.needsRefresh(issued) {
		sess.Values[issuedAtKey] = sm.now().Unix()
		if err := sess.Save(r, w); err != nil {
			sm.logger.Warn("session refresh failed",
				zap.Error(err),
				zap.String("principal_id", id))
		} else {
			sm.logger.Debug("session refreshed", zap.String("principal_id", id))
		}
	}

	return p, true
}

func (sm *SessionManager) needsRefresh(issued int64) bool {
	if sm.refreshWindow <= 0 {
		return false
	}
	if issued == 0 {
		return true
	}
	expires := time.Unix(issued, 0).Add(sm.maxAge)
	return expires.Sub(sm.now()) < sm.refreshWindow
}

func (sm *SessionManager) logSessionError(r *http.Request, err error) {
	errType, errCategory := classifySessionError(err)
	switch errType {
	case sessionErrExpired:
		sm.logger.Debug("session expired",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	case sessionErrTampered:
		sm.logger.Warn("session MAC validation failed (possible tampering)",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()))
	case sessionErrCorrupted:
		sm.logger.Info("session decode failed",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	case sessionErrBackend:
		sm.logger.Error("session store error",
			zap.Error(err),
			zap.String("path", r.URL.Path))
	default:
		sm.logger.Warn("session error",
			zap.Error(err),
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session Management                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateSession establishes a session for the principal.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, principalID primitive.ObjectID, email string) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// A stale or foreign cookie must not block a fresh login.
		sess, _ = sm.store.New(r, sm.name)
	}

	sess.Values[isAuthKey] = true
	sess.Values[principalIDKey] = principalID.Hex()
	sess.Values[emailKey] = email
	sess.Values[issuedAtKey] = sm.now().Unix()

	return sess.Save(r, w)
}

// DestroySession terminates the caller's session by expiring the cookie.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, _ = sm.store.New(r, sm.name)
	}

	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// isDefaultKey checks if the session key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError categorizes a session/cookie error for appropriate logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	if scErr, ok := err.(securecookie.Error); ok {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}

		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "decrypt"):
			return sessionErrCorrupted, "decrypt_failed"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}
