package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionIdleTimeout is how long an unused session is kept.
const SessionIdleTimeout = 12 * time.Hour

// Session is one browser's in-memory UI state. Lock it while reading or mutating.
type Session struct {
	sync.Mutex
	State *view.State

	// AdminArmed allows exactly one GET /admin after an admin action redirect.
	// A plain reload finds it cleared and drops back to the calendar.
	AdminArmed bool
	Flash      string
	FlashOK    bool

	lastSeen time.Time
}

// TakeFlash returns and clears the one-shot message.
// PRE: caller holds the lock
func (s *Session) TakeFlash() (string, bool) {
	msg, ok := s.Flash, s.FlashOK
	s.Flash, s.FlashOK = "", false
	return msg, ok
}

// SessionStore is an in-memory session store. Nothing is persisted.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create stores a fresh session in the calendar view and returns its token.
// POST: Session is stored, token is returned
func (ss *SessionStore) Create() (string, *Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}
	sess := &Session{State: view.New(), lastSeen: ss.now()}
	ss.mu.Lock()
	ss.sessions[token] = sess
	ss.mu.Unlock()
	return token, sess, nil
}

// Get retrieves a session by token and refreshes its idle timer.
// POST: Returns the session if known and not idle past SessionIdleTimeout
func (ss *SessionStore) Get(token string) (*Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.sessions[token]
	if !ok {
		return nil, false
	}
	now := ss.now()
	if now.Sub(sess.lastSeen) > SessionIdleTimeout {
		delete(ss.sessions, token)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// Len returns the number of stored sessions.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Sweep drops sessions idle past SessionIdleTimeout.
func (ss *SessionStore) Sweep() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	now := ss.now()
	n := 0
	for token, sess := range ss.sessions {
		if now.Sub(sess.lastSeen) > SessionIdleTimeout {
			delete(ss.sessions, token)
			n++
		}
	}
	return n
}

// SessionCookieName is the browser-session cookie carrying the session token.
const SessionCookieName = "calendario_session"

// Sessions returns middleware that attaches a session to every request,
// creating one (and its cookie) when the browser has none.
// The cookie has no Max-Age, so it ends with the browser session.
func Sessions(store *SessionStore, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}
			var sess *Session
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				sess, _ = store.Get(cookie.Value)
			}
			if sess == nil {
				token, created, err := store.Create()
				if err != nil {
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				sess = created
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
				})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// SessionFromContext extracts the session from the request context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
