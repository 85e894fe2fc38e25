package layout

import (
	"slices"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
)

// MonthCell is one day of a month grid.
type MonthCell struct {
	Date     time.Time
	InMonth  bool
	EventIDs []string // events touching the day, by start
}

// MonthGrid is a month laid out as whole weeks.
type MonthGrid struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
	Weeks     [][7]MonthCell
}

// BuildMonth lays out month as rows of whole weeks. Leading and trailing
// days from the neighbouring months fill the first and last rows and are
// marked with InMonth false. An event appears on every day it touches.
func BuildMonth(year int, month time.Month, weekStart time.Weekday, events []event.Event, loc *time.Location) MonthGrid {
	if loc == nil {
		loc = time.Local
	}
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	gridStart := dateutil.StartOfWeek(firstOfMonth, weekStart)
	gridEnd := dateutil.StartOfWeek(lastOfMonth, weekStart).AddDate(0, 0, 6)

	sorted := event.CloneAll(events)
	event.SortByStart(sorted)

	byDay := make(map[string][]string)
	for _, e := range sorted {
		for _, d := range Days(e.Interval(), loc) {
			if d.Before(gridStart) || d.After(gridEnd) {
				continue
			}
			key := d.Format(time.DateOnly)
			byDay[key] = append(byDay[key], e.ID)
		}
	}

	g := MonthGrid{Year: year, Month: month, WeekStart: weekStart}
	for weekFirst := gridStart; !weekFirst.After(gridEnd); weekFirst = weekFirst.AddDate(0, 0, 7) {
		var row [7]MonthCell
		for i := range 7 {
			d := weekFirst.AddDate(0, 0, i)
			row[i] = MonthCell{
				Date:     d,
				InMonth:  d.Month() == month,
				EventIDs: slices.Clone(byDay[d.Format(time.DateOnly)]),
			}
		}
		g.Weeks = append(g.Weeks, row)
	}
	return g
}

// Cell returns the cell for date, false if the grid does not show it.
func (g MonthGrid) Cell(date time.Time) (MonthCell, bool) {
	for _, row := range g.Weeks {
		for _, c := range row {
			if dateutil.SameDay(c.Date, date) {
				return c, true
			}
		}
	}
	return MonthCell{}, false
}
