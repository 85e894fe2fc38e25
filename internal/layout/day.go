package layout

import (
	"slices"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

// Entry is one event's bar on one day.
type Entry struct {
	EventID      string    `json:"-"`
	Lane         int       `json:"lane"`
	LaneCount    int       `json:"laneCount"`
	VisibleStart time.Time `json:"visibleStart"`
	VisibleEnd   time.Time `json:"visibleEnd"`

	// ClippedStart/ClippedEnd mark bars cut by the window or by midnight.
	ClippedStart bool `json:"clippedStart,omitempty"`
	ClippedEnd   bool `json:"clippedEnd,omitempty"`
}

// WidthPercent returns the bar width as a share of the day column.
func (e Entry) WidthPercent() float64 {
	return 100 / float64(max(1, e.LaneCount))
}

// OffsetPercent returns the bar's left edge as a share of the day column.
func (e Entry) OffsetPercent() float64 {
	return float64(e.Lane) * e.WidthPercent()
}

// DayLayout is the lane layout of a single day.
type DayLayout struct {
	Date      time.Time // midnight
	Window    DayWindow
	LaneCount int
	Entries   []Entry // sorted by visible start, then lane
}

// Entry returns the entry for an event on this day.
func (d DayLayout) Entry(eventID string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.EventID == eventID {
			return e, true
		}
	}
	return Entry{}, false
}

// Map returns the entries keyed by event ID, the shape a renderer consumes.
func (d DayLayout) Map() map[string]Entry {
	m := make(map[string]Entry, len(d.Entries))
	for _, e := range d.Entries {
		m[e.EventID] = e
	}
	return m
}

// Len returns the number of bars on the day.
func (d DayLayout) Len() int {
	return len(d.Entries)
}

// BuildDay projects every event onto day's window and packs the visible
// parts into lanes. day may carry any time of day; its date and location
// select the calendar day.
func BuildDay(events []event.Event, day time.Time, w DayWindow, g timegrid.Grid) DayLayout {
	day = dateutil.TruncateToDay(day)

	type projected struct {
		iv       event.Interval
		original event.Interval
	}
	var visible []projected
	for _, e := range events {
		iv, ok := Project(e.Interval(), day, w, g)
		if !ok {
			continue
		}
		visible = append(visible, projected{iv: iv, original: e.Interval()})
	}

	items := make([]event.Interval, len(visible))
	for i, p := range visible {
		items[i] = p.iv
	}
	placements, laneCount := AssignLanes(items)

	entries := make([]Entry, len(placements))
	for i, p := range placements {
		orig := visible[i].original
		entries[i] = Entry{
			EventID:      p.Item.ID,
			Lane:         p.Lane,
			LaneCount:    laneCount,
			VisibleStart: p.Item.Start,
			VisibleEnd:   p.Item.End,
			ClippedStart: orig.Start.Before(p.Item.Start),
			ClippedEnd:   orig.End.After(p.Item.End),
		}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := a.VisibleStart.Compare(b.VisibleStart); c != 0 {
			return c
		}
		return a.Lane - b.Lane
	})

	return DayLayout{
		Date:      day,
		Window:    w,
		LaneCount: laneCount,
		Entries:   entries,
	}
}

// BuildRange builds one DayLayout per day from first through last inclusive.
func BuildRange(events []event.Event, first, last time.Time, w DayWindow, g timegrid.Grid) []DayLayout {
	first = dateutil.TruncateToDay(first)
	last = dateutil.TruncateToDay(last)

	var days []DayLayout
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, BuildDay(events, d, w, g))
	}
	return days
}
