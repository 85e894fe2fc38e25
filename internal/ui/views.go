package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/javiermolinar/calgrid/internal/config"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/render"
	"github.com/javiermolinar/calgrid/internal/render/theme"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

const (
	minDayColWidth   = 20
	maxDayColWidth   = 60
	minWeekColWidth  = 8
	minMonthColWidth = 10
)

// viewer renders the calendar with the configured grid, window and zone.
type viewer struct {
	grid      timegrid.Grid
	window    layout.DayWindow
	loc       *time.Location
	weekStart time.Weekday
	palette   *theme.Palette
	owner     string
	width     int
}

func newViewer(cfg *config.Config) (viewer, error) {
	g, err := cfg.TimeGrid()
	if err != nil {
		return viewer{}, err
	}
	w, err := cfg.Window()
	if err != nil {
		return viewer{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return viewer{}, err
	}
	ws, err := cfg.WeekStart()
	if err != nil {
		return viewer{}, err
	}

	v := viewer{
		grid:      g,
		window:    w,
		loc:       loc,
		weekStart: ws,
		owner:     cfg.Session.Owner,
		width:     termWidth(),
	}
	if colorEnabled() {
		th, err := theme.Load(cfg.UI.Theme)
		if err != nil {
			return viewer{}, err
		}
		v.palette = theme.NewPalette(th)
	}
	return v, nil
}

func (v viewer) options(colWidth int) render.Options {
	return render.Options{
		Grid:     v.grid,
		Palette:  v.palette,
		ColWidth: colWidth,
		Viewer:   v.owner,
	}
}

// columns splits the terminal width, minus the time column, into n columns.
func (v viewer) columns(n, minWidth, maxWidth int) int {
	w := (v.width - 6 - n) / n
	w = max(minWidth, w)
	if maxWidth > 0 {
		w = min(maxWidth, w)
	}
	return w
}

func (v viewer) day(w io.Writer, events []event.Event, date time.Time) error {
	d := layout.BuildDay(events, date.In(v.loc), v.window, v.grid)
	return render.Day(w, d, events, v.options(v.columns(1, minDayColWidth, maxDayColWidth)))
}

func (v viewer) week(w io.Writer, events []event.Event, date time.Time) error {
	wk := layout.BuildWeek(events, date.In(v.loc), v.weekStart, v.window, v.grid)
	return render.Week(w, wk, events, v.options(v.columns(7, minWeekColWidth, 0)))
}

func (v viewer) month(w io.Writer, events []event.Event, year int, month time.Month) error {
	g := layout.BuildMonth(year, month, v.weekStart, events, v.loc)
	return render.Month(w, g, events, v.options(v.columns(7, minMonthColWidth, 0)))
}

func (v viewer) agenda(w io.Writer, events []event.Event) error {
	return render.Agenda(w, events, v.loc)
}

// json writes the layout of days consecutive days starting at date.
func (v viewer) json(w io.Writer, events []event.Event, date time.Time, days int) error {
	if days < 1 {
		return fmt.Errorf("days must be positive, got %d", days)
	}
	first := date.In(v.loc)
	last := first.AddDate(0, 0, days-1)
	return render.JSON(w, layout.BuildRange(events, first, last, v.window, v.grid))
}
