package ics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/calgrid/internal/event"
)

func sample() []event.Event {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []event.Event{
		{
			ID:         "ev-1",
			Title:      "Standup",
			Start:      start,
			End:        start.Add(15 * time.Minute),
			Attendees:  []string{"alice@example.com", "me@example.com"},
			Priority:   event.PriorityHigh,
			Label:      event.LabelMeeting,
			Visibility: event.VisibilityPublic,
			Location:   "Room 1",
			Notes:      "daily sync",
			Owner:      "me@example.com",
		},
		{
			ID:         "ev-2",
			Title:      "Dentist",
			Start:      start.Add(4 * time.Hour),
			End:        start.Add(5 * time.Hour),
			Priority:   event.PriorityLow,
			Label:      event.LabelOutOfOffice,
			Visibility: event.VisibilityPrivate,
		},
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sample(), ""); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + DefaultProdID,
		"UID:ev-1",
		"SUMMARY:Standup",
		"DTSTART:20250310T090000Z",
		"DTEND:20250310T091500Z",
		"LOCATION:Room 1",
		"CLASS:PRIVATE",
		"CATEGORIES:OutOfOffice",
		"PRIORITY:3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 VEVENTs, got %d", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sample(), "-//test//EN"); err != nil {
		t.Fatalf("Export: %v", err)
	}

	drafts, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}

	d := drafts[0]
	if d.Title != "Standup" || d.Start != "2025-03-10T09:00:00Z" || d.End != "2025-03-10T09:15:00Z" {
		t.Errorf("unexpected draft: %+v", d)
	}
	if d.Priority != string(event.PriorityHigh) || d.Label != string(event.LabelMeeting) {
		t.Errorf("enums: %s/%s", d.Priority, d.Label)
	}
	if event.StringValue(d.Location) != "Room 1" || event.StringValue(d.Notes) != "daily sync" {
		t.Errorf("text fields: %+v", d)
	}
	if len(d.Attendees) != 2 || d.Attendees[0] != "alice@example.com" {
		t.Errorf("attendees: %v", d.Attendees)
	}
	if drafts[1].Visibility != string(event.VisibilityPrivate) || drafts[1].Priority != string(event.PriorityLow) {
		t.Errorf("second draft: %+v", drafts[1])
	}
}

func TestImport_Errors(t *testing.T) {
	empty := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:x\r\nEND:VCALENDAR\r\n"
	if _, err := Import(strings.NewReader(empty)); !errors.Is(err, ErrNoEvents) {
		t.Errorf("expected ErrNoEvents, got %v", err)
	}
}

func TestImport_BareEventGetsDefaults(t *testing.T) {
	in := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:x\r\n" +
		"BEGIN:VEVENT\r\nUID:1\r\nSUMMARY:Lunch\r\n" +
		"DTSTART:20250310T120000Z\r\nDTEND:20250310T130000Z\r\n" +
		"END:VEVENT\r\nEND:VCALENDAR\r\n"
	drafts, err := Import(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	d := drafts[0]
	if d.Attendees == nil {
		t.Error("Attendees: got nil, want empty")
	}
	if d.Priority != string(event.DefaultPriority) || d.Label != string(event.DefaultLabel) || d.Visibility != string(event.DefaultVisibility) {
		t.Errorf("enums: got %q %q %q", d.Priority, d.Label, d.Visibility)
	}
}

func TestPriorityOf(t *testing.T) {
	tests := []struct {
		in   int
		want event.Priority
	}{
		{0, event.DefaultPriority},
		{1, event.PriorityHighest},
		{3, event.PriorityHigh},
		{5, event.PriorityMedium},
		{9, event.PriorityLow},
	}
	for _, tt := range tests {
		if got := priorityOf(tt.in); got != tt.want {
			t.Errorf("priorityOf(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
