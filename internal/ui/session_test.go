package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/calgrid/internal/db"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/store"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

var testNow = time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)

// newTestSession builds a session over an empty store with sequential ids
// and an in-memory journal.
func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	DisableColor()

	n := 0
	st, err := store.New(store.Options{
		Grid:     timegrid.MustNew(15),
		Location: time.UTC,
		Owner:    "user_a",
		NewID: func() string {
			n++
			return fmt.Sprintf("ev-%d", n)
		},
	})
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}

	j, err := db.New(db.MemoryPath)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}

	w, err := layout.ParseDayWindow("08:00", "20:00")
	if err != nil {
		t.Fatalf("ParseDayWindow() error = %v", err)
	}
	v := viewer{
		grid:      timegrid.MustNew(15),
		window:    w,
		loc:       time.UTC,
		weekStart: time.Sunday,
		owner:     "user_a",
		width:     120,
	}

	var out bytes.Buffer
	s := startSession(st, j, v, &out)
	s.now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = s.Close() })
	return s, &out
}

func runScript(t *testing.T, s *Session, script string) {
	t.Helper()
	if err := s.Run(context.Background(), strings.NewReader(script), false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestSessionScript(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `
# seed two events for user_b
create -t "Design review" -s 2025-03-10T09:00 -e 2025-03-10T10:00 -a user_b
create -t Standup -s 2025-03-10T09:30 -e 2025-03-10T09:45 -a user_b
create -t Standup -s 2025-03-10T09:30 -e 2025-03-10T09:45 -a user_b --allow-double-booking
undo
redo
delete ev-9
history
quit
create -t "after quit" -s 2025-03-10T12:00 -e 2025-03-10T13:00
`)

	got := out.String()
	for _, want := range []string{
		`✓ created ev-1 "Design review"`,
		`✗ ConflictDetected`,
		`ev-1 "Design review" 09:30-09:45`,
		`✓ created ev-2 "Standup"`,
		`✓ undone`,
		`✓ redone`,
		`no event ev-9, nothing deleted`,
		`undo 2, redo 0, 2 events`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "after quit") {
		t.Errorf("command after quit ran:\n%s", got)
	}
	if s.store.Len() != 2 {
		t.Errorf("store has %d events, want 2", s.store.Len())
	}

	entries, err := s.journal.List(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	// Rejected and no-op commands are not journaled.
	want := []string{"create", "create", "undo", "redo"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("journal kinds = %v, want %v", kinds, want)
	}
	if !strings.Contains(entries[0].Payload, `"title":"Design review"`) {
		t.Errorf("create payload = %s", entries[0].Payload)
	}
}

func TestSessionValidationErrorShowsDraft(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `create -t Long -s 2025-03-10T08:00 -e 2025-03-11T08:15`)

	got := out.String()
	if !strings.Contains(got, "DurationExceeded") {
		t.Errorf("output missing kind:\n%s", got)
	}
	if !strings.Contains(got, `"start":"2025-03-10T08:00"`) {
		t.Errorf("output missing submitted draft:\n%s", got)
	}
}

func TestSessionUpdateAndMove(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `
create -t Review -s 2025-03-10T09:00 -e 2025-03-10T10:00 --location "Room 1"
update ev-1 --title "Review v2"
move ev-1 2025-03-10T11:07 2025-03-10T11:52
update ev-404 --title nope
`)

	e, ok := s.store.Get("ev-1")
	if !ok {
		t.Fatal("ev-1 missing")
	}
	if e.Title != "Review v2" || e.Location != "Room 1" {
		t.Errorf("event = %q at %q, want \"Review v2\" at \"Room 1\"", e.Title, e.Location)
	}
	wantStart := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if !e.Start.Equal(wantStart) || !e.End.Equal(wantEnd) {
		t.Errorf("moved to %v-%v, want %v-%v", e.Start, e.End, wantStart, wantEnd)
	}
	if !strings.Contains(out.String(), "NotFound") {
		t.Errorf("output missing NotFound:\n%s", out.String())
	}
}

func TestSessionMoveUnparsableTimestamp(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `
create -t Review -s 2025-03-10T09:00 -e 2025-03-10T10:00
move ev-1 noonish 2025-03-10T13:00
`)

	got := out.String()
	if !strings.Contains(got, "UnparsableTimestamp") {
		t.Errorf("output missing kind:\n%s", got)
	}
	if !strings.Contains(got, `"start":"noonish"`) {
		t.Errorf("output missing submitted draft:\n%s", got)
	}
	e, _ := s.store.Get("ev-1")
	if e.Start.Hour() != 9 {
		t.Errorf("rejected move changed the event: %v", e.Start)
	}
}

func TestSessionCreateFillsFormDefaults(t *testing.T) {
	s, _ := newTestSession(t)

	runScript(t, s, `create --json '{"title":"Sync","start":"2025-03-10T09:00","end":"2025-03-10T09:30"}' --label Meeting`)

	e, ok := s.store.Get("ev-1")
	if !ok {
		t.Fatal("ev-1 missing")
	}
	if e.Priority != event.DefaultPriority || e.Label != event.LabelMeeting || e.Visibility != event.DefaultVisibility {
		t.Errorf("enums = %s/%s/%s", e.Priority, e.Label, e.Visibility)
	}
}

func TestSessionImportRejectsIncompleteDraft(t *testing.T) {
	s, out := newTestSession(t)

	drafts := filepath.Join(t.TempDir(), "drafts.json")
	data := `[{"title": "Bare", "start": "2025-03-10T09:00:00Z", "end": "2025-03-10T10:00:00Z"}]`
	if err := os.WriteFile(drafts, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	runScript(t, s, fmt.Sprintf("import %q\n", drafts))

	if !strings.Contains(out.String(), "MissingField") {
		t.Errorf("output:\n%s", out.String())
	}
	if s.store.Len() != 0 {
		t.Errorf("incomplete draft committed: len = %d", s.store.Len())
	}
}

func TestSessionJournalAll(t *testing.T) {
	s, out := newTestSession(t)

	if err := s.journal.Record(context.Background(), &db.Entry{SessionID: "earlier", Kind: "delete", Outcome: "deleted"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	runScript(t, s, `
create -t A -s 2025-03-10T09:00 -e 2025-03-10T09:30
create -t B -s 2025-03-10T10:00 -e 2025-03-10T10:30
journal --all
`)

	got := out.String()
	for _, want := range []string{"  earlier  1 command\n", "* " + s.ID + "  2 commands"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestSessionRelativeTimestamps(t *testing.T) {
	s, _ := newTestSession(t)

	runScript(t, s, `create -t Standup -s "tomorrow 09:30" -e "tomorrow 09:45"`)

	e, ok := s.store.Get("ev-1")
	if !ok {
		t.Fatal("ev-1 missing")
	}
	want := time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)
	if !e.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", e.Start, want)
	}
}

func TestSessionLayoutJSON(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `
create -t A -s 2025-03-10T09:00 -e 2025-03-10T10:00 --allow-double-booking
create -t B -s 2025-03-10T09:30 -e 2025-03-10T10:30 --allow-double-booking
`)
	out.Reset()
	runScript(t, s, `layout 2025-03-10 --json`)

	got := out.String()
	for _, want := range []string{`"2025-03-10"`, `"ev-1"`, `"ev-2"`, `"laneCount": 2`} {
		if !strings.Contains(got, want) {
			t.Errorf("layout JSON missing %s\n%s", want, got)
		}
	}
}

func TestSessionCheck(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `
create -t A -s 2025-03-10T09:00 -e 2025-03-10T10:00
check -s 2025-03-10T09:30 -e 2025-03-10T10:00
check -s 2025-03-10T10:00 -e 2025-03-10T11:00
check --exclude ev-1 -s 2025-03-10T09:30 -e 2025-03-10T10:30
`)

	got := out.String()
	if !strings.Contains(got, "1 conflict") {
		t.Errorf("output missing conflict count:\n%s", got)
	}
	if strings.Count(got, "no conflicts") != 2 {
		t.Errorf("want two clean checks:\n%s", got)
	}
	if s.store.Len() != 1 {
		t.Errorf("check committed events: len = %d", s.store.Len())
	}
}

func TestSessionImportExport(t *testing.T) {
	s, out := newTestSession(t)
	dir := t.TempDir()

	drafts := filepath.Join(dir, "drafts.json")
	data := `[
		{"title": "One", "start": "2025-03-10T09:00:00Z", "end": "2025-03-10T10:00:00Z", "attendees": [], "priority": "Medium", "label": "Busy", "visibility": "public"},
		{"title": "Clash", "start": "2025-03-10T09:15:00Z", "end": "2025-03-10T09:45:00Z", "attendees": [], "priority": "Medium", "label": "Busy", "visibility": "public"}
	]`
	if err := os.WriteFile(drafts, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	ics := filepath.Join(dir, "out.ics")
	runScript(t, s, fmt.Sprintf("import %q\nexport --out %q\n", drafts, ics))

	if !strings.Contains(out.String(), "imported 1, rejected 1") {
		t.Errorf("output:\n%s", out.String())
	}
	exported, err := os.ReadFile(ics)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(exported), "SUMMARY:One") {
		t.Errorf("export missing event:\n%s", exported)
	}
}

func TestSessionUnknownCommandContinues(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, "frobnicate\nshow ev-1\ncreate -t \"unterminated\nhistory\n")

	got := out.String()
	if !strings.Contains(got, `unknown command "frobnicate"`) {
		t.Errorf("output missing unknown command:\n%s", got)
	}
	if !strings.Contains(got, "event not found") {
		t.Errorf("output missing not found:\n%s", got)
	}
	if !strings.Contains(got, ErrUnbalancedQuote.Error()) {
		t.Errorf("output missing quote error:\n%s", got)
	}
	if !strings.Contains(got, "undo 0, redo 0, 0 events") {
		t.Errorf("session stopped early:\n%s", got)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "undo", want: []string{"undo"}},
		{line: "  list   --from  today ", want: []string{"list", "--from", "today"}},
		{line: `create -t "Design review"`, want: []string{"create", "-t", "Design review"}},
		{line: `create -t 'it''s'`, want: []string{"create", "-t", "its"}},
		{line: `create -t "say \"hi\""`, want: []string{"create", "-t", `say "hi"`}},
		{line: `a\ b c`, want: []string{"a b", "c"}},
		{line: `x ""`, want: []string{"x", ""}},
		{line: `'single \ kept'`, want: []string{`single \ kept`}},
		{line: `"open`, wantErr: true},
		{line: `trailing\`, wantErr: true},
		{line: `create -t a;b`, wantErr: true},
		{line: `create -t 'a;b'`, want: []string{"create", "-t", "a;b"}},
		{line: `export --out "$HOME/x.ics"`, want: []string{"export", "--out", "$HOME/x.ics"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "tomorrow 09:30", want: "2025-03-11T09:30:00Z"},
		{in: "2025-03-12 14:00", want: "2025-03-12T14:00:00Z"},
		{in: "2025-03-12T14:00", want: "2025-03-12T14:00"},
		{in: "someday 14:00", want: "someday 14:00"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := resolveTimestamp(tt.in, testNow); got != tt.want {
				t.Errorf("resolveTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSessionSummary(t *testing.T) {
	s, out := newTestSession(t)

	runScript(t, s, `
create -t A -s 2025-03-10T09:00 -e 2025-03-10T10:00 --label Meeting
create -t B -s 2025-03-11T09:00 -e 2025-03-11T09:30
summary 2025-03-10
`)

	got := out.String()
	for _, want := range []string{"Week 2025-03-09 - 2025-03-15", "1h30m0s", "Meeting", "Mon 03/10"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
