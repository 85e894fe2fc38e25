package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/calgrid/internal/conflict"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/store"
	"github.com/javiermolinar/calgrid/internal/summary"
)

func (s *Session) printResult(res store.Result) {
	undo, redo := s.store.HistoryDepth()
	switch res.Outcome {
	case store.OutcomeCreated, store.OutcomeUpdated:
		fmt.Fprintf(s.out, "%s %s %s\n", formatSuccess("✓"), res.Outcome, s.eventLine(*res.Event))
	case store.OutcomeDeleted:
		fmt.Fprintf(s.out, "%s deleted %s\n", formatSuccess("✓"), res.EventID)
	case store.OutcomeNoChange:
		fmt.Fprintln(s.out, formatWarn("no event "+res.EventID+", nothing deleted"))
	case store.OutcomeUndone, store.OutcomeRedone:
		fmt.Fprintf(s.out, "%s %s %s\n", formatSuccess("✓"), res.Outcome,
			formatMuted(fmt.Sprintf("(undo %d, redo %d, %d events)", undo, redo, res.Count)))
	case store.OutcomeNothingToUndo:
		fmt.Fprintln(s.out, formatWarn("nothing to undo"))
	case store.OutcomeNothingToRedo:
		fmt.Fprintln(s.out, formatWarn("nothing to redo"))
	}
}

// printError reports a failed command. Validation errors list their
// conflicts and the draft as submitted.
func (s *Session) printError(err error) {
	ve, ok := store.AsValidation(err)
	if !ok {
		fmt.Fprintf(s.out, "%s %v\n", formatError("✗"), err)
		return
	}

	fmt.Fprintf(s.out, "%s %s\n", formatError("✗"), ve.Error())
	for _, c := range ve.Conflicts {
		fmt.Fprintf(s.out, "    %s\n", s.conflictLine(c))
	}
	if d, err := json.Marshal(ve.Draft); err == nil {
		fmt.Fprintf(s.out, "  %s %s\n", formatMuted("draft:"), d)
	}
}

func (s *Session) conflictLine(c conflict.Conflict) string {
	loc := s.store.Location()
	return fmt.Sprintf("%s %q %s-%s %s",
		c.EventID,
		c.EventTitle,
		c.OverlapStart.In(loc).Format("15:04"),
		c.OverlapEnd.In(loc).Format("15:04"),
		formatWarn("("+strings.Join(c.CommonAttendees, ", ")+")"),
	)
}

func (s *Session) eventLine(e event.Event) string {
	loc := s.store.Location()
	start := e.Start.In(loc)
	end := e.End.In(loc)
	span := fmt.Sprintf("%s %s-%s", start.Format("Mon 2006-01-02"), start.Format("15:04"), end.Format("15:04"))
	if start.YearDay() != end.YearDay() || start.Year() != end.Year() {
		span = fmt.Sprintf("%s -> %s", start.Format("Mon 2006-01-02 15:04"), end.Format("Mon 2006-01-02 15:04"))
	}
	return fmt.Sprintf("%s %q %s", e.ID, e.Title, formatMuted(span))
}

func (s *Session) printEvent(e event.Event) {
	loc := s.store.Location()
	row := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(s.out, "  %-11s %s\n", k, v)
	}

	fmt.Fprintln(s.out, formatHeader(e.Title))
	row("id", e.ID)
	row("start", e.Start.In(loc).Format(time.RFC3339))
	row("end", e.End.In(loc).Format(time.RFC3339))
	row("duration", e.Duration().String())
	row("attendees", strings.Join(e.Attendees, ", "))
	row("priority", string(e.Priority))
	row("label", string(e.Label))
	row("visibility", string(e.Visibility))
	row("location", e.Location)
	row("notes", e.Notes)
	row("owner", e.Owner)
	if e.AllowDoubleBooking {
		row("double-book", "allowed")
	}
}

func (s *Session) printSummary(ws *summary.WeekSummary) {
	st := ws.Stats
	fmt.Fprintln(s.out, formatHeader(fmt.Sprintf("Week %s - %s", ws.Start.Format(time.DateOnly), ws.End.Format(time.DateOnly))))
	fmt.Fprintf(s.out, "  %-14s %d\n", "events", st.Events)
	fmt.Fprintf(s.out, "  %-14s %s (%d%% of window)\n", "busy", minutes(st.BusyMinutes), st.BusyPercent())
	if st.DoubleBooked > 0 {
		fmt.Fprintf(s.out, "  %-14s %s\n", "double-booked", formatWarn(fmt.Sprint(st.DoubleBooked)))
	}
	if st.MaxLanes > 1 {
		fmt.Fprintf(s.out, "  %-14s %d\n", "max lanes", st.MaxLanes)
	}
	if day, busy := st.BusiestDay(); day >= 0 {
		fmt.Fprintf(s.out, "  %-14s %s (%s)\n", "busiest", st.DayStats[day].Date.Format("Mon 01/02"), minutes(busy))
	}
	for _, l := range st.Labels() {
		fmt.Fprintf(s.out, "  %-14s %s\n", string(l), minutes(st.LabelMinutes[l]))
	}
}

func minutes(m int) string {
	return (time.Duration(m) * time.Minute).String()
}
