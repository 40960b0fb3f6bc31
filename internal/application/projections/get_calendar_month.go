package projections

import (
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/application/feed"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/calendar"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// Banner texts for the degraded display modes.
const (
	DemoBanner       = "Modo demonstração: nenhum banco de dados configurado. Exibindo obrigações de exemplo; a inscrição de e-mails está desativada."
	ReadFailedBanner = "Não foi possível carregar as obrigações. Exibindo dados de exemplo."
)

// SnapshotSource exposes the latest obligation snapshot. The obligation feed satisfies it.
type SnapshotSource interface {
	Current() (feed.Snapshot, bool)
}

// GetCalendarMonthQuery carries input for the calendar projection.
type GetCalendarMonthQuery struct {
	Month time.Time // any day of the month to show
}

// GetCalendarMonthDeps holds dependencies for the calendar projection.
// Feed is nil in demo mode. Status is a startup problem to show as a banner, if any.
type GetCalendarMonthDeps struct {
	Feed   SnapshotSource
	Status string
	Now    func() time.Time
}

// CalendarMonthResult is everything a view needs to render one month.
type CalendarMonthResult struct {
	Month        time.Time
	MonthKey     string
	Label        string
	PrevKey      string
	NextKey      string
	WeekdayNames []string
	Cells        []calendar.DayCell
	Weeks        [][]calendar.DayCell
	Obligations  []obligation.Obligation // the unbinned source list, in store order
	Banner       string
	Placeholder  bool // Obligations is the demo dataset
	Demo         bool
	Loading      bool // live mode, no snapshot yet
}

// QueryGetCalendarMonth chooses live or placeholder data and builds the month grid.
// PRE: deps.Now is non-nil
// POST: never returns an empty calendar because of a failure; demo mode and read
// failures fall back to obligation.Placeholders with a banner
func QueryGetCalendarMonth(query GetCalendarMonthQuery, deps GetCalendarMonthDeps) CalendarMonthResult {
	now := deps.Now()
	month := calendar.StartOfMonth(query.Month)

	res := CalendarMonthResult{
		Month:        month,
		MonthKey:     month.Format(calendar.MonthLayout),
		Label:        calendar.MonthLabel(month),
		PrevKey:      calendar.PrevMonth(month).Format(calendar.MonthLayout),
		NextKey:      calendar.NextMonth(month).Format(calendar.MonthLayout),
		WeekdayNames: calendar.WeekdayNames[:],
		Banner:       deps.Status,
	}

	switch {
	case deps.Feed == nil:
		res.Demo = true
		res.Placeholder = true
		res.Banner = DemoBanner
		res.Obligations = obligation.Placeholders(now)
	default:
		snap, ok := deps.Feed.Current()
		switch {
		case !ok:
			res.Loading = true
			res.Obligations = []obligation.Obligation{}
		case snap.Failed():
			res.Placeholder = true
			if res.Banner == "" {
				res.Banner = ReadFailedBanner
			}
			res.Obligations = obligation.Placeholders(now)
		default:
			res.Obligations = snap.Obligations
		}
	}

	res.Cells = calendar.BuildGrid(month, res.Obligations, now)
	res.Weeks = calendar.Weeks(res.Cells)
	return res
}
