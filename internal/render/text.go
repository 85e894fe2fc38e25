package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/render/theme"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

const (
	defaultColWidth = 24
	timeColWidth    = 6
	privateTitle    = "(private)"
	ellipsis        = "…"
)

// Options controls text rendering.
type Options struct {
	Grid     timegrid.Grid
	Palette  *theme.Palette // nil renders without color
	ColWidth int            // width of one day column
	Viewer   string         // private events are shown in full only to attendees
}

func (o Options) colWidth() int {
	if o.ColWidth <= 0 {
		return defaultColWidth
	}
	return o.ColWidth
}

func (o Options) grid() timegrid.Grid {
	if o.Grid.CellMinutes() == 0 {
		return timegrid.MustNew(timegrid.DefaultCellMinutes)
	}
	return o.Grid
}

// Day draws one day with its lanes side by side, one row per grid cell.
func Day(w io.Writer, d layout.DayLayout, events []event.Event, opts Options) error {
	rows := rowStarts(d, opts.grid())
	byID := indexEvents(events)

	header := fmt.Sprintf("%s (%d %s)", d.Date.Format("Mon 2006-01-02"), d.LaneCount, plural(d.LaneCount, "lane", "lanes"))
	col := dayColumn(d, rows, byID, opts, opts.colWidth())
	body := lipgloss.JoinHorizontal(lipgloss.Top, timeColumn(rows, opts), col)

	_, err := fmt.Fprintf(w, "%s\n%s\n", headerStyle(opts).Render(header), body)
	return err
}

// Week draws seven day columns next to a shared time column.
func Week(w io.Writer, wk layout.Week, events []event.Event, opts Options) error {
	byID := indexEvents(events)
	width := opts.colWidth()

	cols := []string{timeColumn(rowStarts(wk.Days[0], opts.grid()), opts)}
	for _, d := range wk.Days {
		title := fit(d.Date.Format("Mon 01/02"), width)
		col := dayColumn(d, rowStarts(d, opts.grid()), byID, opts, width)
		cols = append(cols, headerStyle(opts).Render(title)+"\n"+col)
	}
	// The time column needs a blank header row to line up.
	cols[0] = strings.Repeat(" ", timeColWidth) + "\n" + cols[0]

	_, err := fmt.Fprintf(w, "Week of %s\n%s\n",
		wk.StartDate.Format(time.DateOnly),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	return err
}

// rowStarts returns the start of every grid cell the day window covers.
func rowStarts(d layout.DayLayout, g timegrid.Grid) []time.Time {
	opensAt, closesAt := d.Window.Bounds(d.Date)
	first := g.Floor(opensAt)
	n := g.Cells(first, g.Ceil(closesAt))

	rows := make([]time.Time, n)
	for i := range rows {
		rows[i] = first.Add(time.Duration(i) * g.Cell())
	}
	return rows
}

func timeColumn(rows []time.Time, opts Options) string {
	style := lipgloss.NewStyle()
	if opts.Palette != nil {
		style = style.Foreground(opts.Palette.Accent)
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = style.Render(fit(r.Format("15:04"), timeColWidth))
	}
	return strings.Join(lines, "\n")
}

func dayColumn(d layout.DayLayout, rows []time.Time, byID map[string]event.Event, opts Options, width int) string {
	widths := laneWidths(width, d.LaneCount)
	lines := make([]string, len(rows))

	for i, rowStart := range rows {
		var b strings.Builder
		for lane, lw := range widths {
			entry, ok := entryAt(d, lane, rowStart)
			if !ok {
				b.WriteString(strings.Repeat(" ", lw))
				continue
			}

			text := ""
			if !rowStart.After(entry.VisibleStart) {
				text = barTitle(byID[entry.EventID], entry, opts.Viewer)
			}
			b.WriteString(barStyle(byID[entry.EventID], lane, opts).Render(fit(text, lw)))
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// laneWidths splits width across lanes; the last lane takes the remainder.
func laneWidths(width, lanes int) []int {
	lanes = max(1, lanes)
	each := max(1, width/lanes)
	widths := make([]int, lanes)
	for i := range widths {
		widths[i] = each
	}
	widths[lanes-1] = max(1, width-each*(lanes-1))
	return widths
}

func entryAt(d layout.DayLayout, lane int, at time.Time) (layout.Entry, bool) {
	for _, e := range d.Entries {
		if e.Lane == lane && !at.Before(e.VisibleStart) && at.Before(e.VisibleEnd) {
			return e, true
		}
	}
	return layout.Entry{}, false
}

func barTitle(e event.Event, entry layout.Entry, viewer string) string {
	title := e.Title
	if e.IsPrivate() && (viewer == "" || !e.HasAttendee(viewer)) {
		title = privateTitle
	}
	if entry.ClippedStart {
		title = ellipsis + title
	}
	return title
}

func barStyle(e event.Event, lane int, opts Options) lipgloss.Style {
	style := lipgloss.NewStyle()
	if opts.Palette == nil {
		return style
	}
	return style.
		Background(opts.Palette.EventBg(e.Label, e.IsPrivate(), lane%2 == 1)).
		Foreground(opts.Palette.EventFg(e.Label))
}

func headerStyle(opts Options) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(opts.Palette != nil)
	if opts.Palette != nil {
		style = style.Foreground(opts.Palette.Accent)
	}
	return style
}

// fit truncates s to width cells and pads it with spaces to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, ellipsis)
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func indexEvents(events []event.Event) map[string]event.Event {
	m := make(map[string]event.Event, len(events))
	for _, e := range events {
		m[e.ID] = e
	}
	return m
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Agenda lists events one per line, grouped by day.
func Agenda(w io.Writer, events []event.Event, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	sorted := event.CloneAll(events)
	event.SortByStart(sorted)

	var day time.Time
	for _, e := range sorted {
		start := e.Start.In(loc)
		if day.IsZero() || !dateutil.SameDay(day, start) {
			day = start
			if _, err := fmt.Fprintf(w, "%s\n", start.Format("Monday 2006-01-02")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %s-%s  %s  %s\n",
			start.Format("15:04"), e.End.In(loc).Format("15:04"), e.ID, e.Title); err != nil {
			return err
		}
	}
	return nil
}
