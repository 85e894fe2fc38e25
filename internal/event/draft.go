package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"
)

// Draft is a candidate event as produced by a form, a drag gesture, or any
// other draft producer. Fields are kept raw so a rejected draft can be handed
// back to the user unchanged.
//
// A nil Attendees, Location, Notes, or AllowDoubleBooking means "not set";
// Overlay fills those from another draft.
type Draft struct {
	ID                 string   `json:"id,omitempty"`
	Title              string   `json:"title"`
	Start              string   `json:"start"`
	End                string   `json:"end"`
	Attendees          []string `json:"attendees"`
	Priority           string   `json:"priority,omitempty"`
	Label              string   `json:"label,omitempty"`
	Visibility         string   `json:"visibility,omitempty"`
	Location           *string  `json:"location,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
	AllowDoubleBooking *bool    `json:"allowDoubleBooking,omitempty"`
}

// NewDraft returns a draft with the given title and times and every other
// required field at its form default: no attendees, Medium priority, a Busy
// label and public visibility.
func NewDraft(title, start, end string) Draft {
	return Draft{
		Title:      title,
		Start:      start,
		End:        end,
		Attendees:  []string{},
		Priority:   string(DefaultPriority),
		Label:      string(DefaultLabel),
		Visibility: string(DefaultVisibility),
	}
}

// DraftOf renders a committed event back into draft form.
func DraftOf(e Event) Draft {
	location := e.Location
	notes := e.Notes
	allow := e.AllowDoubleBooking
	attendees := slices.Clone(e.Attendees)
	if attendees == nil {
		attendees = []string{}
	}
	return Draft{
		ID:                 e.ID,
		Title:              e.Title,
		Start:              e.Start.Format(time.RFC3339),
		End:                e.End.Format(time.RFC3339),
		Attendees:          attendees,
		Priority:           string(e.Priority),
		Label:              string(e.Label),
		Visibility:         string(e.Visibility),
		Location:           &location,
		Notes:              &notes,
		AllowDoubleBooking: &allow,
	}
}

// Overlay returns d with every unset field taken from base.
// d itself is not modified.
func (d Draft) Overlay(base Draft) Draft {
	out := d.Clone()
	if out.ID == "" {
		out.ID = base.ID
	}
	if out.Title == "" {
		out.Title = base.Title
	}
	if out.Start == "" {
		out.Start = base.Start
	}
	if out.End == "" {
		out.End = base.End
	}
	if out.Attendees == nil {
		out.Attendees = slices.Clone(base.Attendees)
	}
	if out.Priority == "" {
		out.Priority = base.Priority
	}
	if out.Label == "" {
		out.Label = base.Label
	}
	if out.Visibility == "" {
		out.Visibility = base.Visibility
	}
	if out.Location == nil && base.Location != nil {
		v := *base.Location
		out.Location = &v
	}
	if out.Notes == nil && base.Notes != nil {
		v := *base.Notes
		out.Notes = &v
	}
	if out.AllowDoubleBooking == nil && base.AllowDoubleBooking != nil {
		v := *base.AllowDoubleBooking
		out.AllowDoubleBooking = &v
	}
	return out
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	d.Attendees = slices.Clone(d.Attendees)
	if d.Location != nil {
		v := *d.Location
		d.Location = &v
	}
	if d.Notes != nil {
		v := *d.Notes
		d.Notes = &v
	}
	if d.AllowDoubleBooking != nil {
		v := *d.AllowDoubleBooking
		d.AllowDoubleBooking = &v
	}
	return d
}

// DoubleBookingAllowed returns the draft's allowDoubleBooking flag, false if unset.
func (d Draft) DoubleBookingAllowed() bool {
	return d.AllowDoubleBooking != nil && *d.AllowDoubleBooking
}

// StringValue dereferences an optional text field.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ReadDrafts decodes a JSON document holding either one draft or an array of drafts.
func ReadDrafts(r io.Reader) ([]Draft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading drafts: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var drafts []Draft
		if err := json.Unmarshal(data, &drafts); err != nil {
			return nil, fmt.Errorf("parsing drafts: %w", err)
		}
		return drafts, nil
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing draft: %w", err)
	}
	return []Draft{d}, nil
}
