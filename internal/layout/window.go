// Package layout turns events into per-day lane layouts for rendering.
package layout

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

// ErrInvalidWindow is returned when a day window does not open before it closes.
var ErrInvalidWindow = errors.New("day window must open before it closes")

// DayWindow is the visible range [Open, Close) of every day, in minutes since
// local midnight. It only affects rendering, never what can be stored.
type DayWindow struct {
	Open  int
	Close int
}

// ParseDayWindow builds a window from "HH:MM" clocks. closes may be "24:00".
func ParseDayWindow(opens, closes string) (DayWindow, error) {
	o, err := dateutil.ParseClock(opens)
	if err != nil {
		return DayWindow{}, fmt.Errorf("day open: %w", err)
	}
	c, err := dateutil.ParseClock(closes)
	if err != nil {
		return DayWindow{}, fmt.Errorf("day close: %w", err)
	}
	w := DayWindow{Open: o, Close: c}
	if err := w.Validate(); err != nil {
		return DayWindow{}, err
	}
	return w, nil
}

// FullDay is a window covering the whole day.
func FullDay() DayWindow {
	return DayWindow{Open: 0, Close: 24 * 60}
}

// Validate checks the window bounds.
func (w DayWindow) Validate() error {
	if w.Open < 0 || w.Close > 24*60 || w.Open >= w.Close {
		return fmt.Errorf("%w: %s-%s", ErrInvalidWindow, dateutil.FormatClock(w.Open), dateutil.FormatClock(w.Close))
	}
	return nil
}

// String returns the window as "HH:MM-HH:MM".
func (w DayWindow) String() string {
	return dateutil.FormatClock(w.Open) + "-" + dateutil.FormatClock(w.Close)
}

// Minutes returns the window length in minutes.
func (w DayWindow) Minutes() int {
	return w.Close - w.Open
}

// Bounds returns the open and close instants of the window on day's date,
// in day's location.
func (w DayWindow) Bounds(day time.Time) (opensAt, closesAt time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	opensAt = time.Date(y, m, d, w.Open/60, w.Open%60, 0, 0, loc)
	closesAt = time.Date(y, m, d, w.Close/60, w.Close%60, 0, 0, loc)
	return opensAt, closesAt
}

// Project clips iv to the window on day and snaps the result onto the grid,
// start down and end up. ok is false when the interval does not reach into
// the window at all. Each day an event touches is projected independently.
func Project(iv event.Interval, day time.Time, w DayWindow, g timegrid.Grid) (event.Interval, bool) {
	opensAt, closesAt := w.Bounds(day)

	visibleStart := iv.Start
	if opensAt.After(visibleStart) {
		visibleStart = opensAt
	}
	visibleEnd := iv.End
	if closesAt.Before(visibleEnd) {
		visibleEnd = closesAt
	}
	if !visibleStart.Before(visibleEnd) {
		return event.Interval{}, false
	}

	out := event.Interval{
		ID:    iv.ID,
		Start: g.Quantize(visibleStart, timegrid.Down),
		End:   g.Quantize(visibleEnd, timegrid.Up),
	}
	if out.Empty() {
		return event.Interval{}, false
	}
	return out, true
}

// Days lists midnight of every calendar day in loc that iv touches.
// An interval ending exactly at midnight does not touch the following day.
func Days(iv event.Interval, loc *time.Location) []time.Time {
	if iv.Empty() {
		return nil
	}
	if loc == nil {
		loc = iv.Start.Location()
	}
	first := dateutil.TruncateToDay(iv.Start.In(loc))
	lastInstant := iv.End.In(loc).Add(-time.Nanosecond)
	last := dateutil.TruncateToDay(lastInstant)

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
