package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/middleware"
	"github.com/tiagotdas/calendario-fiscal/internal/application/feed"
	"github.com/tiagotdas/calendario-fiscal/internal/application/listutil"
	"github.com/tiagotdas/calendario-fiscal/internal/application/projections"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/calendar"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// streamHeartbeat keeps idle event streams open through proxies.
const streamHeartbeat = 25 * time.Second

type obligationsResponse struct {
	Obligations []obligation.Obligation `json:"obligations"`
	Placeholder bool                    `json:"placeholder"`
	Demo        bool                    `json:"demo"`
	Error       string                  `json:"error,omitempty"`
	At          time.Time               `json:"at"`
	Page        *listutil.PageInfo      `json:"page,omitempty"`
}

// snapshotResponse maps a feed snapshot to the wire shape. A failed read
// falls back to placeholders, never to an empty list.
func (s *Server) snapshotResponse(snap feed.Snapshot) obligationsResponse {
	if snap.Failed() {
		return obligationsResponse{
			Obligations: obligation.Placeholders(s.now()),
			Placeholder: true,
			Error:       "obligations unavailable",
			At:          snap.At,
		}
	}
	return obligationsResponse{Obligations: snap.Obligations, At: snap.At}
}

// handleAPIObligations handles GET /api/obligations. Without query
// parameters it returns the current list in store order; ?sphere=, ?month=,
// ?q=, ?sort=, ?dir=, ?page= and ?per_page= narrow it.
func (s *Server) handleAPIObligations(w http.ResponseWriter, r *http.Request) {
	var resp obligationsResponse
	if s.Demo() {
		resp = obligationsResponse{
			Obligations: obligation.Placeholders(s.now()),
			Placeholder: true,
			Demo:        true,
			At:          s.now(),
		}
	} else {
		snap, ok := s.opts.Feed.Current()
		if !ok {
			snap = s.opts.Feed.Refresh(r.Context())
		}
		resp = s.snapshotResponse(snap)
	}

	params := listutil.ParseListParams(r.URL.Query(), projections.ObligationSortColumns, projections.ObligationFilterKeys)
	list := projections.QueryListObligations(projections.ListObligationsQuery{Params: params}, resp.Obligations)
	resp.Obligations = list.Obligations
	resp.Page = &list.Page
	writeJSON(w, http.StatusOK, resp)
}

// handleAPIObligationStream handles GET /api/obligations/stream as Server-Sent Events.
// The subscription lives exactly as long as the request.
func (s *Server) handleAPIObligationStream(w http.ResponseWriter, r *http.Request) {
	if s.Demo() {
		http.Error(w, "live feed unavailable in demo mode", http.StatusServiceUnavailable)
		return
	}

	// Latest snapshot wins; a slow client skips intermediate ones.
	updates := make(chan feed.Snapshot, 1)
	cancel := s.opts.Feed.Subscribe(func(snap feed.Snapshot) {
		select {
		case updates <- snap:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- snap
		}
	})
	defer cancel()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			payload, err := json.Marshal(s.snapshotResponse(snap))
			if err != nil {
				internalError(w, err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

type calendarResponse struct {
	Month       string               `json:"month"`
	Label       string               `json:"label"`
	Prev        string               `json:"prev"`
	Next        string               `json:"next"`
	Weekdays    []string             `json:"weekdays"`
	Weeks       [][]calendar.DayCell `json:"weeks"`
	Banner      string               `json:"banner,omitempty"`
	Placeholder bool                 `json:"placeholder"`
	Demo        bool                 `json:"demo"`
}

// handleAPICalendar handles GET /api/calendar?month=YYYY-MM.
func (s *Server) handleAPICalendar(w http.ResponseWriter, r *http.Request) {
	month := s.now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := calendar.ParseMonth(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		month = m
	}
	res := s.calendarMonth(month)
	writeJSON(w, http.StatusOK, calendarResponse{
		Month:       res.MonthKey,
		Label:       res.Label,
		Prev:        res.PrevKey,
		Next:        res.NextKey,
		Weekdays:    res.WeekdayNames,
		Weeks:       res.Weeks,
		Banner:      res.Banner,
		Placeholder: res.Placeholder,
		Demo:        res.Demo,
	})
}

// handleAPIPerf handles GET /api/admin/perf: request and query timings of the last hour.
// Only an unlocked admin panel may read it.
func (s *Server) handleAPIPerf(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	sess.Lock()
	admin := sess.State.IsAdmin()
	sess.Unlock()
	if !admin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if s.opts.Collector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Collector.Snapshot(s.now().Add(-time.Hour), 10))
}

// HealthPingTimeout bounds the database check in /healthz.
const HealthPingTimeout = 2 * time.Second

// handleHealthz handles GET /healthz. An unreachable database answers 503.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	mode := "live"
	if s.Demo() {
		mode = "demo"
	}
	ready := s.opts.Ready != nil && s.opts.Ready() == nil
	body := map[string]any{"status": "ok", "mode": mode, "ready": ready}
	status := http.StatusOK
	if s.opts.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), HealthPingTimeout)
		defer cancel()
		if err := s.opts.Ping(ctx); err != nil {
			slog.Error("health_event", "event", "database_unreachable", "error", err)
			body["status"], body["database"] = "unavailable", "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			body["database"] = "ok"
		}
	}
	writeJSON(w, status, body)
}
