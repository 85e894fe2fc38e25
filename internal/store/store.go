// Package store holds the live event collection and applies validated
// commands to it, recording undo history for every mutation.
package store

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javiermolinar/calgrid/internal/conflict"
	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/history"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

// Options configures a Store.
type Options struct {
	Grid       timegrid.Grid  // zero value selects 15-minute cells
	Location   *time.Location // zone for timestamps without an offset, default time.Local
	Owner      string         // implicit attendee of every created event
	HistoryMax int            // per-stack bound, default history.DefaultMax
	Logger     *logrus.Entry  // default discards
	NewID      func() string  // default random UUIDs
	Seed       []event.Draft  // created at construction, not undoable
}

// Store is the canonical event collection of one session.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	events  []event.Event
	history *history.History

	grid  timegrid.Grid
	loc   *time.Location
	owner string
	newID func() string
	log   *logrus.Entry
}

// New creates a store and applies opts.Seed. A seed draft that fails
// validation aborts construction.
func New(opts Options) (*Store, error) {
	s := &Store{
		events:  []event.Event{},
		history: history.New(opts.HistoryMax),
		grid:    opts.Grid,
		loc:     opts.Location,
		owner:   strings.TrimSpace(opts.Owner),
		newID:   opts.NewID,
		log:     opts.Logger,
	}
	if s.grid.CellMinutes() == 0 {
		s.grid = timegrid.MustNew(timegrid.DefaultCellMinutes)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = logrus.NewEntry(l)
	}
	s.log = s.log.WithField("component", "store")

	for i, d := range opts.Seed {
		if _, err := s.Apply(Create(d)); err != nil {
			return nil, fmt.Errorf("seed draft %d: %w", i, err)
		}
	}
	s.history.Reset()
	if len(opts.Seed) > 0 {
		s.log.WithField("events", len(s.events)).Debug("seeded")
	}
	return s, nil
}

// Apply runs one command. Rejected commands return a *ValidationError and
// leave the collection and history untouched.
func (s *Store) Apply(cmd Command) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res Result
		err error
	)
	switch cmd.Kind {
	case CommandCreate:
		res, err = s.create(cmd.Draft)
	case CommandUpdate, CommandMove:
		res, err = s.update(cmd.ID, cmd.Draft)
	case CommandDelete:
		res = s.delete(cmd.ID)
	case CommandUndo:
		res = s.undo()
	case CommandRedo:
		res = s.redo()
	default:
		return Result{}, fmt.Errorf("unknown command %q", cmd.Kind)
	}

	fields := logrus.Fields{"command": cmd.Kind}
	if cmd.ID != "" {
		fields["id"] = cmd.ID
	}
	if err != nil {
		if ve, ok := AsValidation(err); ok {
			fields["kind"] = ve.Kind
		}
		s.log.WithFields(fields).WithError(err).Debug("command rejected")
		return Result{}, err
	}
	res.Count = len(s.events)
	fields["outcome"] = res.Outcome
	s.log.WithFields(fields).Debug("command applied")
	return res, nil
}

func (s *Store) create(d event.Draft) (Result, error) {
	e, verr := s.validate(d, "", true)
	if verr != nil {
		return Result{}, verr
	}
	e.ID = s.newID()
	e.Owner = s.owner

	s.history.Record(s.events)
	s.events = append(s.events, e)

	committed := e.Clone()
	return Result{Outcome: OutcomeCreated, EventID: e.ID, Event: &committed}, nil
}

func (s *Store) update(id string, d event.Draft) (Result, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		ve := invalid(KindNotFound, "id", d, "no event with id %q", id)
		return Result{}, ve
	}
	current := s.events[idx]

	e, verr := s.validate(d.Overlay(event.DraftOf(current)), id, false)
	if verr != nil {
		verr.Draft = d.Clone()
		return Result{}, verr
	}
	e.ID = current.ID
	e.Owner = current.Owner

	s.history.Record(s.events)
	next := event.CloneAll(s.events)
	next[idx] = e
	s.events = next

	committed := e.Clone()
	return Result{Outcome: OutcomeUpdated, EventID: id, Event: &committed}, nil
}

func (s *Store) delete(id string) Result {
	idx := s.indexOf(id)
	if idx < 0 {
		return Result{Outcome: OutcomeNoChange, EventID: id}
	}

	s.history.Record(s.events)
	s.events = slices.Delete(event.CloneAll(s.events), idx, idx+1)
	return Result{Outcome: OutcomeDeleted, EventID: id}
}

func (s *Store) undo() Result {
	prev, ok := s.history.Undo(s.events)
	if !ok {
		return Result{Outcome: OutcomeNothingToUndo}
	}
	s.events = prev.Events()
	return Result{Outcome: OutcomeUndone}
}

func (s *Store) redo() Result {
	next, ok := s.history.Redo(s.events)
	if !ok {
		return Result{Outcome: OutcomeNothingToRedo}
	}
	s.events = next.Events()
	return Result{Outcome: OutcomeRedone}
}

// validate turns a draft into an event, checking in order: required fields,
// enum values, timestamps, ordering, duration, then conflicts after snapping
// to the grid. excludeID is skipped in the conflict scan.
func (s *Store) validate(d event.Draft, excludeID string, isNew bool) (event.Event, *ValidationError) {
	e, verr := s.build(d, isNew)
	if verr != nil {
		return event.Event{}, verr
	}

	if !d.DoubleBookingAllowed() {
		if found := conflict.Check(e.Start, e.End, e.Attendees, s.events, excludeID); len(found) > 0 {
			ve := invalid(KindConflictDetected, "", d, "%d conflicting event(s)", len(found))
			ve.Conflicts = found
			return event.Event{}, ve
		}
	}
	return e, nil
}

// build runs every check except the conflict scan. Every field of a
// create draft is required; updates arrive already overlaid on the
// stored event.
func (s *Store) build(d event.Draft, isNew bool) (event.Event, *ValidationError) {
	title := strings.TrimSpace(d.Title)
	switch {
	case title == "":
		return event.Event{}, invalid(KindMissingField, "title", d, "title is required")
	case strings.TrimSpace(d.Start) == "":
		return event.Event{}, invalid(KindMissingField, "start", d, "start is required")
	case strings.TrimSpace(d.End) == "":
		return event.Event{}, invalid(KindMissingField, "end", d, "end is required")
	case d.Attendees == nil:
		return event.Event{}, invalid(KindMissingField, "attendees", d, "attendees is required, use [] for none")
	case strings.TrimSpace(d.Priority) == "":
		return event.Event{}, invalid(KindMissingField, "priority", d, "priority is required")
	case strings.TrimSpace(d.Label) == "":
		return event.Event{}, invalid(KindMissingField, "label", d, "label is required")
	case strings.TrimSpace(d.Visibility) == "":
		return event.Event{}, invalid(KindMissingField, "visibility", d, "visibility is required")
	}

	e := event.Event{
		Title:              title,
		Location:           strings.TrimSpace(event.StringValue(d.Location)),
		Notes:              event.StringValue(d.Notes),
		AllowDoubleBooking: d.DoubleBookingAllowed(),
	}

	var err error
	if e.Priority, err = event.ParsePriority(d.Priority); err != nil {
		return event.Event{}, wrapInvalid(KindInvalidValue, "priority", d, err)
	}
	if e.Label, err = event.ParseLabel(d.Label); err != nil {
		return event.Event{}, wrapInvalid(KindInvalidValue, "label", d, err)
	}
	if e.Visibility, err = event.ParseVisibility(d.Visibility); err != nil {
		return event.Event{}, wrapInvalid(KindInvalidValue, "visibility", d, err)
	}

	start, err := dateutil.ParseTimestamp(d.Start, s.loc)
	if err != nil {
		return event.Event{}, wrapInvalid(KindUnparsableTimestamp, "start", d, err)
	}
	end, err := dateutil.ParseTimestamp(d.End, s.loc)
	if err != nil {
		return event.Event{}, wrapInvalid(KindUnparsableTimestamp, "end", d, err)
	}
	if !end.After(start) {
		return event.Event{}, invalid(KindEndBeforeStart, "end", d,
			"end %s is not after start %s", dateutil.FormatTimestamp(end), dateutil.FormatTimestamp(start))
	}
	if end.Sub(start) > event.MaxDuration {
		return event.Event{}, invalid(KindDurationExceeded, "end", d,
			"lasts %s, limit is %s", end.Sub(start), event.MaxDuration)
	}

	e.Start = s.grid.Quantize(start, timegrid.Down)
	e.End = s.grid.Quantize(end, timegrid.Up)
	if !e.End.After(e.Start) {
		return event.Event{}, invalid(KindEndBeforeStart, "end", d,
			"%s to %s is empty once snapped to %d-minute cells",
			dateutil.FormatTimestamp(start), dateutil.FormatTimestamp(end), s.grid.CellMinutes())
	}
	if e.End.Sub(e.Start) > event.MaxDuration {
		return event.Event{}, invalid(KindDurationExceeded, "end", d,
			"lasts %s once snapped to %d-minute cells, limit is %s",
			e.End.Sub(e.Start), s.grid.CellMinutes(), event.MaxDuration)
	}

	e.Attendees = event.NormalizeAttendees(d.Attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	if isNew && s.owner != "" && !slices.Contains(e.Attendees, s.owner) {
		e.Attendees = append(e.Attendees, s.owner)
	}
	return e, nil
}

func wrapInvalid(kind Kind, field string, d event.Draft, err error) *ValidationError {
	ve := invalid(kind, field, d, "%v", err)
	ve.Err = err
	return ve
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.events, func(e event.Event) bool { return e.ID == id })
}

// Events returns a copy of the collection sorted by start.
func (s *Store) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := event.CloneAll(s.events)
	event.SortByStart(out)
	return out
}

// Get returns a copy of event id.
func (s *Store) Get(id string) (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return event.Event{}, false
	}
	return s.events[idx].Clone(), true
}

// Between returns the events that overlap [from, to), sorted by start.
func (s *Store) Between(from, to time.Time) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []event.Event
	for _, e := range s.events {
		if event.Overlaps(e.Start, e.End, from, to) {
			out = append(out, e.Clone())
		}
	}
	event.SortByStart(out)
	return out
}

// Check previews the conflicts d would cause without committing anything.
// With a known excludeID, d is treated as an edit of that event; otherwise
// as a new event. allowDoubleBooking is ignored so the preview always
// lists every overlap.
func (s *Store) Check(d event.Draft, excludeID string) ([]conflict.Conflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isNew := true
	if idx := s.indexOf(excludeID); idx >= 0 {
		d = d.Overlay(event.DraftOf(s.events[idx]))
		isNew = false
	}
	e, verr := s.build(d, isNew)
	if verr != nil {
		return nil, verr
	}
	return conflict.Check(e.Start, e.End, e.Attendees, s.events, excludeID), nil
}

// CanUndo returns true if an Undo command would change the collection.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo returns true if a Redo command would change the collection.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryDepth returns the sizes of the undo and redo stacks.
func (s *Store) HistoryDepth() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.UndoLen(), s.history.RedoLen()
}

// Len returns the number of events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Grid returns the grid events are snapped to.
func (s *Store) Grid() timegrid.Grid {
	return s.grid
}

// Location returns the zone used for timestamps without an offset.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Owner returns the session owner.
func (s *Store) Owner() string {
	return s.owner
}
