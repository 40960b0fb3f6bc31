package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

// TestSessions_CreatesBrowserSessionCookie verifies a new visitor gets a session cookie with no Max-Age.
func TestSessions_CreatesBrowserSessionCookie(t *testing.T) {
	store := NewSessionStore()
	var got *Session
	handler := Sessions(store, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got == nil || got.State.View != view.Calendar {
		t.Fatalf("session = %+v, want fresh calendar state", got)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("cookies = %+v", cookies)
	}
	if cookies[0].MaxAge != 0 || !cookies[0].Expires.IsZero() {
		t.Errorf("cookie must end with the browser session: %+v", cookies[0])
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

// TestSessions_ReusesKnownToken verifies the same browser keeps its state.
func TestSessions_ReusesKnownToken(t *testing.T) {
	store := NewSessionStore()
	token, sess, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	sess.State.OpenLogin()

	var got *Session
	handler := Sessions(store, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
	}))
	req := httptest.NewRequest("GET", "/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got != sess {
		t.Error("expected the stored session")
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("no new cookie expected for a known session")
	}
}

// TestSessions_HealthzHasNoSession verifies probes do not create sessions.
func TestSessions_HealthzHasNoSession(t *testing.T) {
	store := NewSessionStore()
	Sessions(store, false)(okHandler(http.StatusOK)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

// TestSessionStore_IdleExpiry verifies idle sessions are dropped on Get and Sweep.
func TestSessionStore_IdleExpiry(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	t1, _, _ := store.Create()
	t2, _, _ := store.Create()

	now = now.Add(SessionIdleTimeout + time.Minute)
	if _, ok := store.Get(t1); ok {
		t.Error("expired session returned")
	}
	if n := store.Sweep(); n != 1 {
		t.Errorf("Sweep = %d, want 1", n)
	}
	if _, ok := store.Get(t2); ok {
		t.Error("swept session returned")
	}
}

func TestSession_TakeFlash(t *testing.T) {
	s := &Session{Flash: "ok", FlashOK: true}
	msg, ok := s.TakeFlash()
	if msg != "ok" || !ok {
		t.Errorf("got %q %v", msg, ok)
	}
	if msg, _ := s.TakeFlash(); msg != "" {
		t.Errorf("flash not cleared: %q", msg)
	}
}
