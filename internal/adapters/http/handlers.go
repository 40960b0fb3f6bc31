package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/csrf"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/middleware"
	"github.com/tiagotdas/calendario-fiscal/internal/application/projections"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

var pageFiles = []string{"calendar.html", "login.html", "admin.html"}

var templateFuncs = template.FuncMap{
	"sphereClass": func(sphere string) string { return obligation.StyleFor(sphere).Class },
	"sphereLabel": func(sphere string) string { return obligation.StyleFor(sphere).Label },
	"knownSphere": func(sphere string) bool { return slices.Contains(obligation.Spheres, sphere) },
	"brDate": func(date string) string {
		t, err := time.Parse(obligation.DateLayout, date)
		if err != nil {
			return date
		}
		return t.Format("02/01/2006")
	},
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tpl, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = tpl
	}
	return pages, nil
}

// pageData is shared by every page template.
type pageData struct {
	Title         string
	CSRFField     template.HTML
	Banner        string
	Demo          bool
	Spheres       []string
	Calendar      projections.CalendarMonthResult
	Flash         string
	FlashOK       bool
	LoginError    string
	Form          view.Form
	Obligations   []obligation.Obligation
	PendingDelete *obligation.Obligation
}

func (s *Server) newPage(r *http.Request, title string) pageData {
	return pageData{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		Demo:      s.Demo(),
		Spheres:   obligation.Spheres,
	}
}

// render executes into a buffer first so template errors never produce half a page.
func (s *Server) render(w http.ResponseWriter, status int, page string, data pageData) {
	tpl, ok := s.pages[page]
	if !ok {
		internalError(w, errUnknownPage(page))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errUnknownPage string

func (e errUnknownPage) Error() string { return "unknown page " + string(e) }

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

// session returns the locked session for r. Call the returned unlock when done.
func session(r *http.Request) (*middleware.Session, func(), bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return nil, func() {}, false
	}
	sess.Lock()
	return sess, sess.Unlock, true
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// calendarMonth projects the requested month from live or placeholder data.
func (s *Server) calendarMonth(month time.Time) projections.CalendarMonthResult {
	deps := projections.GetCalendarMonthDeps{Status: s.opts.Status, Now: s.now}
	if s.opts.Feed != nil {
		deps.Feed = s.opts.Feed
	}
	return projections.QueryGetCalendarMonth(projections.GetCalendarMonthQuery{Month: month}, deps)
}
