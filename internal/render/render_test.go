package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleEvents() []event.Event {
	return []event.Event{
		{ID: "e1", Title: "Standup", Start: at("2025-03-10 09:00"), End: at("2025-03-10 10:00"), Label: event.LabelMeeting},
		{ID: "e2", Title: "Design review with a very long title", Start: at("2025-03-10 09:30"), End: at("2025-03-10 10:30"), Label: event.LabelBusy},
		{ID: "e3", Title: "Secret", Start: at("2025-03-10 10:30"), End: at("2025-03-10 11:00"), Visibility: event.VisibilityPrivate, Attendees: []string{"me"}},
	}
}

func TestJSON(t *testing.T) {
	g := timegrid.MustNew(15)
	days := layout.BuildRange(sampleEvents(), at("2025-03-10 00:00"), at("2025-03-11 00:00"), layout.FullDay(), g)

	var buf bytes.Buffer
	if err := JSON(&buf, days); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var got map[string]map[string]struct {
		Lane         int       `json:"lane"`
		LaneCount    int       `json:"laneCount"`
		VisibleStart time.Time `json:"visibleStart"`
		VisibleEnd   time.Time `json:"visibleEnd"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	day := got["2025-03-10"]
	if len(day) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(day))
	}
	if day["e2"].Lane != 1 || day["e2"].LaneCount != 2 {
		t.Errorf("e2: %+v", day["e2"])
	}
	if !day["e1"].VisibleEnd.Equal(at("2025-03-10 10:00")) {
		t.Errorf("e1 end: %v", day["e1"].VisibleEnd)
	}
	if len(got["2025-03-11"]) != 0 {
		t.Errorf("expected empty next day, got %v", got["2025-03-11"])
	}
}

func TestDay(t *testing.T) {
	g := timegrid.MustNew(30)
	w := layout.DayWindow{Open: 9 * 60, Close: 12 * 60}
	d := layout.BuildDay(sampleEvents(), at("2025-03-10 00:00"), w, g)

	var buf bytes.Buffer
	if err := Day(&buf, d, sampleEvents(), Options{Grid: g, ColWidth: 20}); err != nil {
		t.Fatalf("Day: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Header plus six half-hour rows.
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Mon 2025-03-10") || !strings.Contains(lines[0], "2 lanes") {
		t.Errorf("header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "09:00") || !strings.Contains(lines[1], "Standup") {
		t.Errorf("09:00 row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Design re…") {
		t.Errorf("09:30 row: %q", lines[2])
	}
	if strings.Contains(out, "very long title") {
		t.Error("expected long title to be truncated")
	}
	if strings.Contains(out, "Secret") || !strings.Contains(out, privateTitle) {
		t.Error("private title must be hidden from non-attendees")
	}
	for i, l := range lines[1:] {
		if got := ansi.StringWidth(l); got != timeColWidth+20 {
			t.Errorf("row %d width %d, want %d", i, got, timeColWidth+20)
		}
	}
}

func TestDay_ViewerSeesPrivate(t *testing.T) {
	g := timegrid.MustNew(30)
	d := layout.BuildDay(sampleEvents(), at("2025-03-10 00:00"), layout.FullDay(), g)

	var buf bytes.Buffer
	if err := Day(&buf, d, sampleEvents(), Options{Grid: g, Viewer: "me"}); err != nil {
		t.Fatalf("Day: %v", err)
	}
	if !strings.Contains(buf.String(), "Secret") {
		t.Error("attendee should see the private title")
	}
}

func TestWeek(t *testing.T) {
	g := timegrid.MustNew(60)
	w := layout.DayWindow{Open: 9 * 60, Close: 11 * 60}
	wk := layout.BuildWeek(sampleEvents(), at("2025-03-12 00:00"), time.Monday, w, g)

	var buf bytes.Buffer
	if err := Week(&buf, wk, sampleEvents(), Options{Grid: g, ColWidth: 10}); err != nil {
		t.Fatalf("Week: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Title, day headers, two hourly rows.
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "2025-03-10") {
		t.Errorf("title: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Mon 03/10") || !strings.Contains(lines[1], "Sun 03/16") {
		t.Errorf("day headers: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Stan…") {
		t.Errorf("09:00 row: %q", lines[2])
	}
}

func TestMonth(t *testing.T) {
	events := sampleEvents()
	for i := range 3 {
		events = append(events, event.Event{
			ID:    "x" + string(rune('a'+i)),
			Title: "extra",
			Start: at("2025-03-10 13:00"),
			End:   at("2025-03-10 14:00"),
		})
	}
	g := layout.BuildMonth(2025, time.March, time.Monday, events, time.UTC)

	var buf bytes.Buffer
	if err := Month(&buf, g, events, Options{}); err != nil {
		t.Fatalf("Month: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "March 2025") {
		t.Errorf("title: %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "Mon") || !strings.Contains(out, "Sun") {
		t.Error("missing weekday header")
	}
	if !strings.Contains(out, "+3 more") {
		t.Errorf("expected overflow marker:\n%s", out)
	}
	if !strings.Contains(out, "Standup") {
		t.Error("expected event title in month cell")
	}
}

func TestAgenda(t *testing.T) {
	var buf bytes.Buffer
	if err := Agenda(&buf, sampleEvents(), time.UTC); err != nil {
		t.Fatalf("Agenda: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "Monday 2025-03-10") != 1 {
		t.Errorf("expected one day heading:\n%s", out)
	}
	if !strings.Contains(out, "09:00-10:00  e1  Standup") {
		t.Errorf("unexpected agenda:\n%s", out)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"", 2, "  "},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := fit(tt.in, tt.width); got != tt.want {
			t.Errorf("fit(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestLaneWidths(t *testing.T) {
	got := laneWidths(10, 3)
	if len(got) != 3 || got[0] != 3 || got[1] != 3 || got[2] != 4 {
		t.Errorf("laneWidths(10, 3) = %v", got)
	}
}
