package web

import (
	"net/http"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/middleware"
	"github.com/tiagotdas/calendario-fiscal/internal/application/orchestrators"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// adminSession returns the locked session of an unlocked admin panel, or
// redirects to the calendar. The caller must call unlock when ok.
func adminSession(w http.ResponseWriter, r *http.Request) (*middleware.Session, func(), bool) {
	sess, unlock, ok := session(r)
	if !ok || !sess.State.IsAdmin() {
		unlock()
		redirect(w, r, "/")
		return nil, nil, false
	}
	return sess, unlock, true
}

// backToAdmin redirects to the panel, allowing exactly one render.
// PRE: caller holds the session lock
func backToAdmin(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	sess.AdminArmed = true
	redirect(w, r, "/admin")
}

// writer returns the obligation writer, or nil in demo mode.
func (s *Server) writer() orchestrators.ObligationWriter {
	if s.Demo() {
		return nil
	}
	return s.opts.Feed
}

// currentObligations is the list the admin panel shows and edits.
func (s *Server) currentObligations() []obligation.Obligation {
	return s.calendarMonth(s.now()).Obligations
}

// handleAdminPage renders the admin panel (GET /admin). Only the render that
// follows an admin action is allowed; a reload drops admin status.
func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()
	if !sess.AdminArmed {
		sess.State.ViewCalendar()
		redirect(w, r, "/")
		return
	}
	sess.AdminArmed = false

	month := s.calendarMonth(s.now())
	data := s.newPage(r, "Painel administrativo")
	data.Banner = month.Banner
	data.Form = sess.State.Form
	data.Obligations = month.Obligations
	if id := sess.State.PendingDeleteID; id != "" {
		target := obligation.Obligation{ID: id, Title: id}
		for _, o := range month.Obligations {
			if o.ID == id {
				target = o
				break
			}
		}
		data.PendingDelete = &target
	}
	s.render(w, http.StatusOK, "admin.html", data)
}

// handleSaveObligation handles POST /admin/obligations (create or update).
// Write failures are logged only; the form keeps the typed values.
func (s *Server) handleSaveObligation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()

	fields := obligation.Fields{
		Title:  r.FormValue("title"),
		Date:   r.FormValue("date"),
		Sphere: r.FormValue("sphere"),
	}
	if wr := s.writer(); wr != nil {
		// Errors are already logged by the orchestrator.
		_, _ = orchestrators.ExecuteSaveObligation(r.Context(),
			orchestrators.SaveObligationInput{State: sess.State, Fields: fields},
			orchestrators.SaveObligationDeps{Obligations: wr})
	} else {
		sess.State.SetFields(fields)
	}
	backToAdmin(w, r, sess)
}

// handleStartEdit handles POST /admin/obligations/{id}/edit.
func (s *Server) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()

	id := r.PathValue("id")
	for _, o := range s.currentObligations() {
		if o.ID == id {
			sess.State.StartEdit(o)
			break
		}
	}
	backToAdmin(w, r, sess)
}

// handleCancelEdit handles POST /admin/edit/cancel.
func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()
	sess.State.CancelEdit()
	backToAdmin(w, r, sess)
}

// handleRequestDelete handles POST /admin/obligations/{id}/delete: opens the
// confirmation modal. Nothing is deleted yet.
func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()
	sess.State.RequestDelete(r.PathValue("id"))
	backToAdmin(w, r, sess)
}

// handleConfirmDelete handles POST /admin/delete/confirm.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()
	if wr := s.writer(); wr != nil {
		_, _ = orchestrators.ExecuteDeleteObligation(r.Context(), sess.State,
			orchestrators.DeleteObligationDeps{Obligations: wr})
	} else {
		sess.State.CancelDelete()
	}
	backToAdmin(w, r, sess)
}

// handleCancelDelete handles POST /admin/delete/cancel.
func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	sess, unlock, ok := adminSession(w, r)
	if !ok {
		return
	}
	defer unlock()
	sess.State.CancelDelete()
	backToAdmin(w, r, sess)
}

// handleViewCalendar handles POST /admin/calendar: leaves the panel and drops admin status.
func (s *Server) handleViewCalendar(w http.ResponseWriter, r *http.Request) {
	if sess, unlock, ok := session(r); ok {
		sess.State.ViewCalendar()
		sess.AdminArmed = false
		unlock()
	}
	redirect(w, r, "/")
}
