package web

import (
	"net/http"

	"github.com/tiagotdas/calendario-fiscal/internal/application/orchestrators"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/calendar"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

// handleCalendar renders the public calendar (GET /?month=YYYY-MM).
// Every visit resets the visitor to the calendar view and drops admin status.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := session(r)
	defer unlock()

	month := s.now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		if m, err := calendar.ParseMonth(raw); err == nil {
			month = m
		}
	}

	data := s.newPage(r, "Calendário")
	data.Calendar = s.calendarMonth(month)
	data.Banner = data.Calendar.Banner
	if ok {
		sess.State.ViewCalendar()
		sess.AdminArmed = false
		data.Flash, data.FlashOK = sess.TakeFlash()
	}
	s.render(w, http.StatusOK, "calendar.html", data)
}

// handleSubscribe handles POST /subscribe. The outcome is shown inline on the calendar.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	deps := orchestrators.SubscribeDeps{Ready: s.opts.Ready, Now: s.now}
	if !s.Demo() && s.opts.Subscribers != nil {
		deps.Subscribers = s.opts.Subscribers
	}
	res := orchestrators.ExecuteSubscribe(r.Context(), orchestrators.SubscribeInput{Email: r.FormValue("email")}, deps)

	if sess, unlock, ok := session(r); ok {
		sess.Flash, sess.FlashOK = res.Message, res.OK
		unlock()
	}
	redirect(w, r, "/")
}

// handleLoginPage handles the restricted-access control (GET /login).
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := session(r)
	defer unlock()
	if !ok {
		redirect(w, r, "/")
		return
	}
	if sess.State.IsAdmin() {
		sess.State.ViewCalendar()
	}
	sess.State.OpenLogin()

	data := s.newPage(r, "Acesso restrito")
	data.Banner = s.calendarMonth(s.now()).Banner
	s.render(w, http.StatusOK, "login.html", data)
}

// handleLogin handles POST /login: plain equality against the shared password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	sess, unlock, ok := session(r)
	defer unlock()
	if !ok {
		redirect(w, r, "/")
		return
	}
	if sess.State.View != view.Login {
		sess.State.OpenLogin()
	}

	if orchestrators.ExecuteAdminLogin(
		orchestrators.AdminLoginInput{State: sess.State, Password: r.FormValue("password")},
		orchestrators.AdminLoginDeps{Secret: s.opts.AdminPassword},
	) {
		sess.AdminArmed = true
		redirect(w, r, "/admin")
		return
	}

	data := s.newPage(r, "Acesso restrito")
	data.LoginError = sess.State.LoginError
	s.render(w, http.StatusOK, "login.html", data)
}

// handleLoginBack handles POST /login/back.
func (s *Server) handleLoginBack(w http.ResponseWriter, r *http.Request) {
	if sess, unlock, ok := session(r); ok {
		sess.State.Back()
		unlock()
	}
	redirect(w, r, "/")
}
