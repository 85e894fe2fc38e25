// Package summary provides week summary statistics over laid-out events.
package summary

import (
	"cmp"
	"slices"
	"time"

	"github.com/javiermolinar/calgrid/internal/conflict"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

// DayStats holds the statistics of one day, measured inside the day window.
type DayStats struct {
	Date        time.Time
	Events      int
	BusyMinutes int // minutes covered by at least one event
	Lanes       int
}

// WeekStats holds aggregated statistics for the week.
type WeekStats struct {
	Events        int
	BusyMinutes   int
	WindowMinutes int // length of all seven day windows
	LabelMinutes  map[event.Label]int
	DoubleBooked  int // events overlapping another event of a shared attendee
	MaxLanes      int // widest day of the week
	DayStats      [7]DayStats
}

// BusyPercent returns the share of the week's windows covered by events.
func (s WeekStats) BusyPercent() int {
	if s.WindowMinutes == 0 {
		return 0
	}
	return (s.BusyMinutes * 100) / s.WindowMinutes
}

// BusiestDay returns the index of the day with the most busy minutes, -1 for
// an empty week.
func (s WeekStats) BusiestDay() (day int, busyMinutes int) {
	day = -1
	for i, ds := range s.DayStats {
		if ds.BusyMinutes > busyMinutes {
			busyMinutes = ds.BusyMinutes
			day = i
		}
	}
	return day, busyMinutes
}

// Labels returns the labels with time booked, most minutes first.
func (s WeekStats) Labels() []event.Label {
	out := make([]event.Label, 0, len(s.LabelMinutes))
	for l := range s.LabelMinutes {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b event.Label) int {
		if d := s.LabelMinutes[b] - s.LabelMinutes[a]; d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})
	return out
}

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Start  time.Time
	End    time.Time
	Events []event.Event // events visible in the week, by start
	Stats  WeekStats
}

// Options configures the week to summarize.
type Options struct {
	WeekStart time.Weekday
	Window    layout.DayWindow
	Grid      timegrid.Grid
}

// SummarizeWeek builds summary data for the week containing date.
func SummarizeWeek(date time.Time, events []event.Event, opts Options) *WeekSummary {
	wk := layout.BuildWeek(events, date, opts.WeekStart, opts.Window, opts.Grid)
	byID := make(map[string]event.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	stats := WeekStats{LabelMinutes: make(map[event.Label]int), MaxLanes: wk.MaxLanes()}
	seen := make(map[string]bool)
	var visible []event.Event
	for i, d := range wk.Days {
		ds := DayStats{Date: d.Date, Events: d.Len(), Lanes: d.LaneCount}
		ds.BusyMinutes = busyMinutes(d.Entries)
		stats.DayStats[i] = ds
		stats.BusyMinutes += ds.BusyMinutes
		stats.WindowMinutes += d.Window.Close - d.Window.Open

		for _, entry := range d.Entries {
			e := byID[entry.EventID]
			stats.LabelMinutes[e.Label] += int(entry.VisibleEnd.Sub(entry.VisibleStart) / time.Minute)
			if !seen[e.ID] {
				seen[e.ID] = true
				visible = append(visible, e.Clone())
			}
		}
	}
	event.SortByStart(visible)

	stats.Events = len(visible)
	for _, e := range visible {
		if conflict.Any(e.Start, e.End, e.Attendees, events, e.ID) {
			stats.DoubleBooked++
		}
	}

	return &WeekSummary{
		Start:  wk.StartDate,
		End:    wk.EndDate(),
		Events: visible,
		Stats:  stats,
	}
}

// busyMinutes returns the length of the union of the entries' visible spans.
func busyMinutes(entries []layout.Entry) int {
	spans := make([]event.Interval, 0, len(entries))
	for _, e := range entries {
		spans = append(spans, event.Interval{Start: e.VisibleStart, End: e.VisibleEnd})
	}
	slices.SortFunc(spans, func(a, b event.Interval) int { return a.Start.Compare(b.Start) })

	var (
		total time.Duration
		cur   event.Interval
	)
	for i, s := range spans {
		switch {
		case i == 0:
			cur = s
		case s.Start.After(cur.End):
			total += cur.End.Sub(cur.Start)
			cur = s
		case s.End.After(cur.End):
			cur.End = s.End
		}
	}
	if len(spans) > 0 {
		total += cur.End.Sub(cur.Start)
	}
	return int(total / time.Minute)
}
