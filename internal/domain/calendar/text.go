package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// FormatText writes a plain-text rendering of a grid built by BuildGrid:
// a title line, weekday headers, one row per week and then the month's
// obligations in grid order. Days with obligations are marked with "*";
// padding days are shown as ".".
// PRE: cells came from BuildGrid(month, ...)
// POST: output is deterministic for a given input
func FormatText(w io.Writer, month time.Time, cells []DayCell) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, MonthLabel(month))
	fmt.Fprintln(bw, strings.Join(WeekdayNames[:], " "))

	for _, week := range Weeks(cells) {
		var row strings.Builder
		for _, c := range week {
			switch {
			case !c.IsCurrentMonth:
				row.WriteString("  . ")
			case len(c.Obligations) > 0:
				fmt.Fprintf(&row, "%3d*", c.Day())
			default:
				fmt.Fprintf(&row, "%3d ", c.Day())
			}
		}
		fmt.Fprintln(bw, strings.TrimRight(row.String(), " "))
	}

	var listed []string
	for _, c := range cells {
		for _, o := range c.Obligations {
			listed = append(listed, fmt.Sprintf("%02d %-9s %s", c.Day(), obligation.StyleFor(o.Sphere).Label, o.Title))
		}
	}
	fmt.Fprintln(bw)
	if len(listed) == 0 {
		fmt.Fprintln(bw, "Sem obrigações neste mês.")
	}
	for _, l := range listed {
		fmt.Fprintln(bw, l)
	}
	return bw.Flush()
}
