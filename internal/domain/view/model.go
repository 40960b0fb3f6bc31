package view

import (
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// View identifies which screen a visitor is on.
type View string

// View constants.
const (
	Calendar View = "calendar"
	Login    View = "login"
	Admin    View = "admin"
)

// WrongPasswordMessage is shown inline when the admin password does not match.
const WrongPasswordMessage = "Senha incorreta."

// Form is the single admin form shared by create and edit.
// INVARIANT: EditingID is empty in create mode.
type Form struct {
	EditingID string
	Title     string
	Date      string
	Sphere    string
}

// Fields returns the obligation fields currently typed into the form.
func (f Form) Fields() obligation.Fields {
	return obligation.Fields{Title: f.Title, Date: f.Date, Sphere: f.Sphere}
}

// IsEditing reports whether a submit will update rather than create.
func (f Form) IsEditing() bool {
	return f.EditingID != ""
}

func emptyForm() Form {
	return Form{Sphere: obligation.SphereFederal}
}

// State is one visitor's UI state. It is held in memory only.
type State struct {
	View            View
	Form            Form
	PendingDeleteID string // non-empty while the confirmation modal is open
	LoginError      string
}

// New returns the initial state: the calendar view.
func New() *State {
	return &State{View: Calendar, Form: emptyForm()}
}

// IsAdmin reports whether the admin panel is unlocked.
func (s *State) IsAdmin() bool {
	return s.View == Admin
}

// OpenLogin handles the restricted-access control.
// PRE: none
// POST: View is Login unless the admin panel is already open
func (s *State) OpenLogin() {
	if s.View == Admin {
		return
	}
	s.View = Login
	s.LoginError = ""
}

// Authenticate compares password with secret by plain string equality.
// PRE: View is Login
// POST: on match View is Admin; otherwise View stays Login with LoginError set
func (s *State) Authenticate(password, secret string) bool {
	if s.View != Login {
		return false
	}
	if password != secret {
		s.LoginError = WrongPasswordMessage
		return false
	}
	s.View = Admin
	s.LoginError = ""
	s.Form = emptyForm()
	s.PendingDeleteID = ""
	return true
}

// Back leaves the login screen without authenticating.
// PRE: View is Login
// POST: View is Calendar
func (s *State) Back() {
	if s.View == Login {
		s.View = Calendar
		s.LoginError = ""
	}
}

// ViewCalendar returns to the public calendar, dropping admin status.
// PRE: none
// POST: View is Calendar; form and modal are cleared
func (s *State) ViewCalendar() {
	s.View = Calendar
	s.LoginError = ""
	s.Form = emptyForm()
	s.PendingDeleteID = ""
}

// StartEdit pre-fills the form from o and remembers its id.
func (s *State) StartEdit(o obligation.Obligation) {
	s.Form = Form{EditingID: o.ID, Title: o.Title, Date: o.Date, Sphere: o.Sphere}
}

// CancelEdit forgets the remembered id and resets the fields.
func (s *State) CancelEdit() {
	s.Form = emptyForm()
}

// ResetForm returns the form to the empty create state after a successful submit.
func (s *State) ResetForm() {
	s.Form = emptyForm()
}

// SetFields records typed values without touching the remembered id.
func (s *State) SetFields(f obligation.Fields) {
	s.Form.Title = f.Title
	s.Form.Date = f.Date
	s.Form.Sphere = f.Sphere
}

// RequestDelete opens the confirmation modal for id. Nothing is deleted yet.
func (s *State) RequestDelete(id string) {
	s.PendingDeleteID = id
}

// ConfirmDelete closes the modal and returns the id to delete.
// POST: ok is false when no modal was open
func (s *State) ConfirmDelete() (id string, ok bool) {
	id = s.PendingDeleteID
	s.PendingDeleteID = ""
	return id, id != ""
}

// CancelDelete closes the modal with no side effect.
func (s *State) CancelDelete() {
	s.PendingDeleteID = ""
}
