package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

var outsideAnyMonth = time.Date(1999, 1, 1, 12, 0, 0, 0, time.UTC)

func currentMonthCells(cells []DayCell) []DayCell {
	var out []DayCell
	for _, c := range cells {
		if c.IsCurrentMonth {
			out = append(out, c)
		}
	}
	return out
}

// TestBuildGrid_CompleteWeeks checks every month from 2000 to 2030.
func TestBuildGrid_CompleteWeeks(t *testing.T) {
	for y := 2000; y <= 2030; y++ {
		for m := time.January; m <= time.December; m++ {
			month := time.Date(y, m, 17, 0, 0, 0, 0, time.UTC)
			cells := BuildGrid(month, nil, outsideAnyMonth)

			require.Zero(t, len(cells)%DaysPerWeek, "%d-%02d: %d cells", y, m, len(cells))
			require.GreaterOrEqual(t, len(cells), DaysIn(month))

			current := currentMonthCells(cells)
			require.Len(t, current, DaysIn(month))
			for i, c := range current {
				require.Equal(t, i+1, c.Day(), "%d-%02d: gap or repeat at index %d", y, m, i)
			}
			for i := 1; i < len(cells); i++ {
				require.True(t, cells[i].Date.After(cells[i-1].Date), "%d-%02d: cells out of order at %d", y, m, i)
				require.Equal(t, 24*time.Hour, cells[i].Date.Sub(cells[i-1].Date))
			}
		}
	}
}

// TestBuildGrid_March2024 covers the documented scenario.
func TestBuildGrid_March2024(t *testing.T) {
	month := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	cells := BuildGrid(month, nil, outsideAnyMonth)

	leading := int(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).Weekday())
	assert.Equal(t, 5, leading)
	assert.Len(t, cells, 42)

	for i := 0; i < leading; i++ {
		assert.False(t, cells[i].IsCurrentMonth)
	}
	assert.Equal(t, "2024-02-25", cells[0].Key)
	assert.Equal(t, "2024-02-29", cells[leading-1].Key)
	assert.Equal(t, "2024-03-01", cells[leading].Key)
	assert.Equal(t, "2024-03-31", cells[leading+30].Key)
	assert.Equal(t, "2024-04-06", cells[41].Key)
	assert.False(t, cells[41].IsCurrentMonth)
}

// TestBuildGrid_NoPadding covers a month that starts on Sunday and ends on Saturday.
func TestBuildGrid_NoPadding(t *testing.T) {
	cells := BuildGrid(time.Date(2015, time.February, 10, 0, 0, 0, 0, time.UTC), nil, outsideAnyMonth)
	require.Len(t, cells, 28)
	for _, c := range cells {
		assert.True(t, c.IsCurrentMonth, c.Key)
	}
}

// TestBuildGrid_Binning checks obligations land in exactly one matching cell.
func TestBuildGrid_Binning(t *testing.T) {
	darf := obligation.Obligation{ID: "o1", Title: "DARF", Date: "2024-03-10", Sphere: obligation.SphereFederal}
	gps := obligation.Obligation{ID: "o2", Title: "GPS", Date: "2024-03-10", Sphere: "Previdência"}
	leap := obligation.Obligation{ID: "o3", Title: "Padding day", Date: "2024-02-29", Sphere: obligation.SphereMunicipal}
	bad := obligation.Obligation{ID: "o4", Title: "Bad date", Date: "10/03/2024"}
	all := []obligation.Obligation{darf, gps, leap, bad}

	march := BuildGrid(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), all, outsideAnyMonth)
	hits := map[string][]string{}
	for _, c := range march {
		for _, o := range c.Obligations {
			hits[o.ID] = append(hits[o.ID], c.Key)
		}
	}
	assert.Equal(t, []string{"2024-03-10"}, hits["o1"])
	assert.Equal(t, []string{"2024-03-10"}, hits["o2"])
	assert.Empty(t, hits["o3"], "padding cells carry no obligations")
	assert.Empty(t, hits["o4"])

	april := BuildGrid(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), all, outsideAnyMonth)
	for _, c := range april {
		assert.Empty(t, c.Obligations, c.Key)
	}
}

// TestBuildGrid_NoZoneShift checks that a negative UTC offset does not move dates.
func TestBuildGrid_NoZoneShift(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	o := obligation.Obligation{ID: "o1", Title: "ICMS", Date: "2024-03-01", Sphere: obligation.SphereEstadual}
	now := time.Date(2024, time.March, 1, 22, 30, 0, 0, brt) // already March 2 in UTC

	cells := BuildGrid(time.Date(2024, time.March, 1, 0, 0, 0, 0, brt), []obligation.Obligation{o}, now)
	first := currentMonthCells(cells)[0]
	assert.Equal(t, "2024-03-01", first.Key)
	assert.Len(t, first.Obligations, 1)
	assert.True(t, first.IsToday)
}

// TestBuildGrid_IsToday checks exactly one today cell inside the month and none outside.
func TestBuildGrid_IsToday(t *testing.T) {
	month := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	count := func(cells []DayCell) (n int, key string) {
		for _, c := range cells {
			if c.IsToday {
				n++
				key = c.Key
			}
		}
		return n, key
	}

	n, key := count(BuildGrid(month, nil, time.Date(2024, time.March, 19, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, n)
	assert.Equal(t, "2024-03-19", key)

	// Feb 29 is a padding cell in March's grid.
	n, _ = count(BuildGrid(month, nil, time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC)))
	assert.Zero(t, n)

	n, _ = count(BuildGrid(month, nil, time.Date(2025, time.March, 19, 8, 0, 0, 0, time.UTC)))
	assert.Zero(t, n)
}

// TestWeeks tests splitting into rows.
func TestWeeks(t *testing.T) {
	cells := BuildGrid(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), nil, outsideAnyMonth)
	weeks := Weeks(cells)
	require.Len(t, weeks, 6)
	for _, w := range weeks {
		assert.Len(t, w, DaysPerWeek)
		assert.Equal(t, time.Sunday, w[0].Date.Weekday())
	}
}

// TestMonthNavigation tests parsing and prev/next across year boundaries.
func TestMonthNavigation(t *testing.T) {
	m, err := ParseMonth("2024-01")
	require.NoError(t, err)
	assert.Equal(t, "2023-12", PrevMonth(m).Format(MonthLayout))
	assert.Equal(t, "2024-02", NextMonth(m).Format(MonthLayout))
	assert.Equal(t, "2025-01", NextMonth(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)).Format(MonthLayout))

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
}

// TestMonthLabel tests Portuguese month labels.
func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Março de 2024", MonthLabel(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Dezembro de 2025", MonthLabel(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

// TestFormatText compares the text rendering against golden files.
func TestFormatText(t *testing.T) {
	obligations := []obligation.Obligation{
		{ID: "1", Title: "DARF", Date: "2024-03-10", Sphere: obligation.SphereFederal},
		{ID: "2", Title: "ICMS", Date: "2024-03-20", Sphere: obligation.SphereEstadual},
		{ID: "3", Title: "ISS", Date: "2024-04-10", Sphere: obligation.SphereMunicipal},
	}
	g := goldie.New(t)

	tests := []struct {
		name  string
		month time.Time
	}{
		{"march_2024", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"february_2015", time.Date(2015, time.February, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, FormatText(&buf, tc.month, BuildGrid(tc.month, obligations, outsideAnyMonth)))
			g.Assert(t, tc.name, buf.Bytes())
		})
	}
}

// TestFormatText_PaddingAlignsWithDays tests that padding dots sit in the units column of the day numbers.
func TestFormatText_PaddingAlignsWithDays(t *testing.T) {
	month := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, FormatText(&buf, month, BuildGrid(month, nil, outsideAnyMonth)))

	lines := strings.Split(buf.String(), "\n")
	first, last := lines[2], lines[7]
	assert.Equal(t, "  .   .   .   .   .   1   2", first)
	assert.Equal(t, " 31   .   .   .   .   .   .", last)
	for i, r := range first {
		if r == '.' {
			assert.Equal(t, 2, i%4, "dot at column %d", i)
		}
	}
}
