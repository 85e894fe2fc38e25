package layout

import (
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

// Week holds the layouts of 7 consecutive days.
type Week struct {
	StartDate time.Time    // first day of the week
	Days      [7]DayLayout // StartDate (0) through StartDate+6 (6)
}

// BuildWeek lays out the week containing date. weekStart selects the day
// the week begins on.
func BuildWeek(events []event.Event, date time.Time, weekStart time.Weekday, w DayWindow, g timegrid.Grid) Week {
	first := dateutil.StartOfWeek(date, weekStart)
	wk := Week{StartDate: first}
	for i := range 7 {
		wk.Days[i] = BuildDay(events, first.AddDate(0, 0, i), w, g)
	}
	return wk
}

// EndDate returns the last day of the week.
func (w Week) EndDate() time.Time {
	return w.StartDate.AddDate(0, 0, 6)
}

// MaxLanes returns the widest lane count across the week.
func (w Week) MaxLanes() int {
	n := 1
	for _, d := range w.Days {
		n = max(n, d.LaneCount)
	}
	return n
}
