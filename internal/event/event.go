// Package event defines the core calendar domain types for calgrid.
package event

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// MaxDuration caps how long a single event may last.
const MaxDuration = 24 * time.Hour

// Enum errors.
var (
	ErrUnknownPriority   = errors.New("priority must be one of Highest, High, Medium, Low")
	ErrUnknownLabel      = errors.New("label must be one of Free, Tentative, Busy, OutOfOffice, Meeting, Training, Travel, Off")
	ErrUnknownVisibility = errors.New("visibility must be 'public' or 'private'")
)

// Priority ranks how important an event is.
type Priority string

const (
	PriorityHighest Priority = "Highest"
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
)

var priorities = []Priority{PriorityHighest, PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	for _, p := range priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, got %q", ErrUnknownPriority, s)
}

// Label describes how an event occupies its time.
type Label string

const (
	LabelFree        Label = "Free"
	LabelTentative   Label = "Tentative"
	LabelBusy        Label = "Busy"
	LabelOutOfOffice Label = "OutOfOffice"
	LabelMeeting     Label = "Meeting"
	LabelTraining    Label = "Training"
	LabelTravel      Label = "Travel"
	LabelOff         Label = "Off"
)

var labels = []Label{
	LabelFree, LabelTentative, LabelBusy, LabelOutOfOffice,
	LabelMeeting, LabelTraining, LabelTravel, LabelOff,
}

// ParseLabel parses a label name case-insensitively.
func ParseLabel(s string) (Label, error) {
	for _, l := range labels {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w, got %q", ErrUnknownLabel, s)
}

// Visibility controls who can see event details.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility parses a visibility value case-insensitively.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(s) {
	case "public":
		return VisibilityPublic, nil
	case "private":
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrUnknownVisibility, s)
	}
}

// Values a draft producer fills in before the user picks otherwise.
const (
	DefaultPriority   = PriorityMedium
	DefaultLabel      = LabelBusy
	DefaultVisibility = VisibilityPublic
)

// Event is a committed calendar entry.
type Event struct {
	ID                 string
	Title              string
	Start              time.Time
	End                time.Time
	Attendees          []string // set semantics, no duplicates
	Priority           Priority
	Label              Label
	Visibility         Visibility
	Location           string
	Notes              string
	AllowDoubleBooking bool
	Owner              string
}

// Duration returns how long the event lasts.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Interval returns the event's time span.
func (e Event) Interval() Interval {
	return Interval{ID: e.ID, Start: e.Start, End: e.End}
}

// HasAttendee returns true if user is in the attendee set.
func (e Event) HasAttendee(user string) bool {
	return slices.Contains(e.Attendees, user)
}

// IsPrivate returns true if the event is private.
func (e Event) IsPrivate() bool {
	return e.Visibility == VisibilityPrivate
}

// Clone returns a deep copy that shares no memory with e.
func (e Event) Clone() Event {
	e.Attendees = slices.Clone(e.Attendees)
	return e
}

// CloneAll deep-copies a collection of events.
func CloneAll(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

// SortByStart orders events by start time, breaking ties by end then ID.
func SortByStart(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if c := a.End.Compare(b.End); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// NormalizeAttendees trims names, drops empties, and removes duplicates
// while keeping first-seen order.
func NormalizeAttendees(attendees []string) []string {
	if attendees == nil {
		return nil
	}
	out := make([]string, 0, len(attendees))
	for _, a := range attendees {
		a = strings.TrimSpace(a)
		if a == "" || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Intersect returns the members of a that are also in b, in a's order.
func Intersect(a, b []string) []string {
	var common []string
	for _, x := range a {
		if slices.Contains(b, x) && !slices.Contains(common, x) {
			common = append(common, x)
		}
	}
	return common
}
