package projections

import (
	"errors"
	"testing"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/application/feed"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

type fixedSource struct {
	snap feed.Snapshot
	ok   bool
}

func (f fixedSource) Current() (feed.Snapshot, bool) { return f.snap, f.ok }

func countObligations(res CalendarMonthResult) int {
	n := 0
	for _, c := range res.Cells {
		n += len(c.Obligations)
	}
	return n
}

// TestQueryGetCalendarMonth tests data selection and banners for each mode.
func TestQueryGetCalendarMonth(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	live := []obligation.Obligation{{ID: "a", Title: "DCTFWeb", Date: "2024-03-10", Sphere: obligation.SphereFederal}}

	tests := []struct {
		name            string
		deps            GetCalendarMonthDeps
		wantBanner      string
		wantPlaceholder bool
		wantDemo        bool
		wantCount       int
	}{
		{
			name:      "live",
			deps:      GetCalendarMonthDeps{Feed: fixedSource{snap: feed.Snapshot{Obligations: live}, ok: true}, Now: clock},
			wantCount: 1,
		},
		{
			name:      "live empty is not a failure",
			deps:      GetCalendarMonthDeps{Feed: fixedSource{snap: feed.Snapshot{Obligations: []obligation.Obligation{}}, ok: true}, Now: clock},
			wantCount: 0,
		},
		{
			name:            "read failure",
			deps:            GetCalendarMonthDeps{Feed: fixedSource{snap: feed.Snapshot{Err: errors.New("denied")}, ok: true}, Now: clock},
			wantBanner:      ReadFailedBanner,
			wantPlaceholder: true,
			wantCount:       3,
		},
		{
			name:            "auth failure keeps its own banner",
			deps:            GetCalendarMonthDeps{Feed: fixedSource{snap: feed.Snapshot{Err: errors.New("not ready")}, ok: true}, Status: "Falha na autenticação.", Now: clock},
			wantBanner:      "Falha na autenticação.",
			wantPlaceholder: true,
			wantCount:       3,
		},
		{
			name:            "demo",
			deps:            GetCalendarMonthDeps{Now: clock},
			wantBanner:      DemoBanner,
			wantPlaceholder: true,
			wantDemo:        true,
			wantCount:       3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := QueryGetCalendarMonth(GetCalendarMonthQuery{Month: now}, tt.deps)
			if res.Banner != tt.wantBanner || res.Placeholder != tt.wantPlaceholder || res.Demo != tt.wantDemo {
				t.Errorf("banner=%q placeholder=%v demo=%v", res.Banner, res.Placeholder, res.Demo)
			}
			if got := countObligations(res); got != tt.wantCount {
				t.Errorf("binned obligations = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

// TestQueryGetCalendarMonth_Navigation tests labels and neighbouring month keys.
func TestQueryGetCalendarMonth_Navigation(t *testing.T) {
	res := QueryGetCalendarMonth(
		GetCalendarMonthQuery{Month: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		GetCalendarMonthDeps{Now: time.Now},
	)
	if res.MonthKey != "2024-01" || res.PrevKey != "2023-12" || res.NextKey != "2024-02" {
		t.Errorf("keys = %s %s %s", res.PrevKey, res.MonthKey, res.NextKey)
	}
	if res.Label != "Janeiro de 2024" {
		t.Errorf("Label = %q", res.Label)
	}
	if len(res.Weeks)*7 != len(res.Cells) || len(res.WeekdayNames) != 7 {
		t.Errorf("weeks=%d cells=%d", len(res.Weeks), len(res.Cells))
	}
}

// TestQueryGetCalendarMonth_Loading tests the state before the first snapshot.
func TestQueryGetCalendarMonth_Loading(t *testing.T) {
	res := QueryGetCalendarMonth(GetCalendarMonthQuery{Month: time.Now()}, GetCalendarMonthDeps{Feed: fixedSource{}, Now: time.Now})
	if !res.Loading || res.Placeholder || countObligations(res) != 0 {
		t.Errorf("got %+v", res)
	}
}
