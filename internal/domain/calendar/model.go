package calendar

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// DaysPerWeek is the width of the grid.
const DaysPerWeek = 7

// MonthLayout is the layout accepted by ParseMonth.
const MonthLayout = "2006-01"

// DayCell is one derived, non-persisted grid entry.
type DayCell struct {
	Date           time.Time               `json:"-"`
	Key            string                  `json:"date"` // YYYY-MM-DD
	IsCurrentMonth bool                    `json:"isCurrentMonth"`
	IsToday        bool                    `json:"isToday"`
	Obligations    []obligation.Obligation `json:"obligationsForDay"`
}

// Day returns the day of month of the cell.
func (c DayCell) Day() int {
	return c.Date.Day()
}

// BuildGrid derives the display grid for the month containing month.
// The day-of-month of month is ignored. Padding cells come from the adjacent
// months and carry no obligations. Obligations are matched by exact equality
// of their Date string against the cell's YYYY-MM-DD key.
// PRE: none
// POST: len(result)%7 == 0; dates strictly increasing; every obligation dated
// inside the month appears in exactly one cell
func BuildGrid(month time.Time, obligations []obligation.Obligation, now time.Time) []DayCell {
	y, m, _ := month.Date()
	loc := month.Location()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	daysInMonth := DaysIn(first)
	leading := int(first.Weekday())

	byDate := make(map[string][]obligation.Obligation)
	for _, o := range obligations {
		byDate[o.Date] = append(byDate[o.Date], o)
	}

	todayKey := dateKey(now)

	cells := make([]DayCell, 0, ((leading+daysInMonth+DaysPerWeek-1)/DaysPerWeek)*DaysPerWeek)
	for i := leading; i > 0; i-- {
		cells = append(cells, padding(first.AddDate(0, 0, -i)))
	}
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(y, m, d, 0, 0, 0, 0, loc)
		key := dateKey(date)
		cells = append(cells, DayCell{
			Date:           date,
			Key:            key,
			IsCurrentMonth: true,
			IsToday:        key == todayKey,
			Obligations:    byDate[key],
		})
	}
	next := time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	for i := 0; len(cells)%DaysPerWeek != 0; i++ {
		cells = append(cells, padding(next.AddDate(0, 0, i)))
	}
	return cells
}

func padding(date time.Time) DayCell {
	return DayCell{Date: date, Key: dateKey(date)}
}

// dateKey formats the calendar date without any zone conversion.
func dateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// DaysIn returns the number of days in the month of t.
func DaysIn(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weeks splits cells into rows of DaysPerWeek.
// PRE: len(cells)%7 == 0
func Weeks(cells []DayCell) [][]DayCell {
	weeks := make([][]DayCell, 0, len(cells)/DaysPerWeek)
	for i := 0; i+DaysPerWeek <= len(cells); i += DaysPerWeek {
		weeks = append(weeks, cells[i:i+DaysPerWeek])
	}
	return weeks
}

// ParseMonth parses a YYYY-MM string into the first day of that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// PrevMonth returns the first day of the month before t's month.
func PrevMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, -1, 0)
}

// NextMonth returns the first day of the month after t's month.
func NextMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// WeekdayNames are the column headers, Sunday first.
var WeekdayNames = [DaysPerWeek]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// MonthLabel returns e.g. "Março de 2024".
func MonthLabel(t time.Time) string {
	// Casers keep state and must not be shared between goroutines.
	return cases.Title(language.BrazilianPortuguese).String(monthNames[t.Month()-1]) + " de " + fmt.Sprint(t.Year())
}
