package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/ics"
)

// loadDrafts reads drafts from a JSON file, or from an iCalendar file when
// the name ends in .ics.
func loadDrafts(path string) ([]event.Draft, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening drafts: %w", err)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".ics") {
		return ics.Import(f)
	}
	return event.ReadDrafts(f)
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}

// draftFlags are the event fields shared by create, update and check.
type draftFlags struct {
	title       string
	start       string
	end         string
	attendees   []string
	priority    string
	label       string
	visibility  string
	location    string
	notes       string
	allowDouble bool
	json        string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.title, "title", "t", "", "Event title")
	fs.StringVarP(&f.start, "start", "s", "", `Start, e.g. 2025-03-10T09:00 or "tomorrow 09:00"`)
	fs.StringVarP(&f.end, "end", "e", "", "End, same formats as --start")
	fs.StringSliceVarP(&f.attendees, "attendee", "a", nil, "Attendee (repeatable or comma-separated)")
	fs.StringVar(&f.priority, "priority", "", "Highest, High, Medium or Low")
	fs.StringVar(&f.label, "label", "", "Free, Tentative, Busy, OutOfOffice, Meeting, Training, Travel or Off")
	fs.StringVar(&f.visibility, "visibility", "", "public or private")
	fs.StringVar(&f.location, "location", "", "Location")
	fs.StringVar(&f.notes, "notes", "", "Notes")
	fs.BoolVar(&f.allowDouble, "allow-double-booking", false, "Skip the conflict check")
	fs.StringVar(&f.json, "json", "", "Draft as a JSON object; flags override its fields")
}

// draft builds a draft from the flags that were set on cmd. Unset flags
// stay unset so an update keeps the event's current values.
func (f *draftFlags) draft(cmd *cobra.Command, now time.Time) (event.Draft, error) {
	changed := cmd.Flags().Changed

	d := event.Draft{
		Title:      f.title,
		Start:      resolveTimestamp(f.start, now),
		End:        resolveTimestamp(f.end, now),
		Priority:   f.priority,
		Label:      f.label,
		Visibility: f.visibility,
	}
	if changed("attendee") {
		d.Attendees = append([]string{}, f.attendees...)
	}
	if changed("location") {
		v := f.location
		d.Location = &v
	}
	if changed("notes") {
		v := f.notes
		d.Notes = &v
	}
	if changed("allow-double-booking") {
		v := f.allowDouble
		d.AllowDoubleBooking = &v
	}

	if f.json == "" {
		return d, nil
	}
	drafts, err := event.ReadDrafts(strings.NewReader(f.json))
	if err != nil {
		return event.Draft{}, err
	}
	if len(drafts) != 1 {
		return event.Draft{}, fmt.Errorf("--json must hold exactly one draft, got %d", len(drafts))
	}
	drafts[0].Start = resolveTimestamp(drafts[0].Start, now)
	drafts[0].End = resolveTimestamp(drafts[0].End, now)
	return d.Overlay(drafts[0]), nil
}

// resolveTimestamp expands "<date> HH:MM", where date is anything
// dateutil.ParseRelativeDate accepts, into RFC 3339 in now's zone. Other
// values are returned unchanged for the store to parse.
func resolveTimestamp(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	date, clock, ok := strings.Cut(s, " ")
	if !ok {
		return s
	}
	day, err := dateutil.ParseRelativeDate(date, now)
	if err != nil {
		return s
	}
	minutes, err := dateutil.ParseClock(strings.TrimSpace(clock))
	if err != nil {
		return s
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, now.Location())
	return t.Format(time.RFC3339)
}
