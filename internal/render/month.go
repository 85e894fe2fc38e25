package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/layout"
)

const (
	defaultMonthCellWidth = 14
	monthItemsPerCell     = 3
)

// Month draws a month grid, one block of lines per week with up to three
// titles per day.
func Month(w io.Writer, g layout.MonthGrid, events []event.Event, opts Options) error {
	width := opts.ColWidth
	if width <= 0 {
		width = defaultMonthCellWidth
	}
	byID := indexEvents(events)

	var b strings.Builder
	b.WriteString(headerStyle(opts).Render(fmt.Sprintf("%s %d", g.Month, g.Year)))
	b.WriteString("\n")

	var names []string
	for i := range 7 {
		wd := time.Weekday((int(g.WeekStart) + i) % 7)
		names = append(names, headerStyle(opts).Render(fit(wd.String()[:3], width)))
	}
	b.WriteString(strings.Join(names, " "))
	b.WriteString("\n")

	for _, week := range g.Weeks {
		cells := make([]string, 0, 7)
		for _, c := range week {
			cells = append(cells, monthCell(c, byID, opts, width))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(cells)...))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func monthCell(c layout.MonthCell, byID map[string]event.Event, opts Options, width int) string {
	dayStyle := lipgloss.NewStyle()
	if opts.Palette != nil {
		if c.InMonth {
			dayStyle = dayStyle.Foreground(opts.Palette.Fg)
		} else {
			dayStyle = dayStyle.Foreground(opts.Palette.FgMuted)
		}
	}

	lines := []string{dayStyle.Render(fit(fmt.Sprintf("%2d", c.Date.Day()), width))}
	for i, id := range c.EventIDs {
		if i == monthItemsPerCell {
			more := fmt.Sprintf("+%d more", len(c.EventIDs)-monthItemsPerCell)
			lines = append(lines, dayStyle.Render(fit(more, width)))
			break
		}
		e := byID[id]
		title := e.Title
		if e.IsPrivate() && (opts.Viewer == "" || !e.HasAttendee(opts.Viewer)) {
			title = privateTitle
		}
		lines = append(lines, barStyle(e, 0, opts).Render(fit(title, width)))
	}
	for len(lines) < monthItemsPerCell+2 {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func joinWithGap(cells []string) []string {
	if len(cells) == 0 {
		return cells
	}
	height := strings.Count(cells[0], "\n") + 1
	gap := strings.TrimSuffix(strings.Repeat(" \n", height), "\n")

	out := make([]string, 0, 2*len(cells)-1)
	for i, c := range cells {
		if i > 0 {
			out = append(out, gap)
		}
		out = append(out, c)
	}
	return out
}
