package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/calgrid/internal/event"
)

// ErrNoEvents is returned when a calendar holds no VEVENT.
var ErrNoEvents = errors.New("calendar has no events")

// Import reads a VCALENDAR and turns every VEVENT into a draft. Drafts go
// through the store's normal validation, so nothing here is trusted.
// VEVENTs without a start or end are skipped.
func Import(r io.Reader) ([]event.Draft, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var drafts []event.Draft
	for _, ve := range cal.Events() {
		d, ok := draftOf(ve)
		if !ok {
			continue
		}
		drafts = append(drafts, d)
	}
	if len(drafts) == 0 {
		return nil, ErrNoEvents
	}
	return drafts, nil
}

func draftOf(ve *ical.VEvent) (event.Draft, bool) {
	start, err := ve.GetStartAt()
	if err != nil {
		return event.Draft{}, false
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return event.Draft{}, false
	}

	d := event.NewDraft(
		propertyValue(ve, ical.ComponentPropertySummary),
		start.Format(time.RFC3339),
		end.Format(time.RFC3339),
	)
	for _, a := range ve.Attendees() {
		if email := a.Email(); email != "" {
			d.Attendees = append(d.Attendees, email)
		}
	}
	if v := propertyValue(ve, ical.ComponentPropertyLocation); v != "" {
		d.Location = &v
	}
	if v := propertyValue(ve, ical.ComponentPropertyDescription); v != "" {
		d.Notes = &v
	}
	if strings.EqualFold(propertyValue(ve, ical.ComponentPropertyClass), string(ical.ClassificationPrivate)) {
		d.Visibility = string(event.VisibilityPrivate)
	}
	if label, err := event.ParseLabel(propertyValue(ve, ical.ComponentPropertyCategories)); err == nil {
		d.Label = string(label)
	}
	if n, err := strconv.Atoi(propertyValue(ve, ical.ComponentPropertyPriority)); err == nil {
		d.Priority = string(priorityOf(n))
	}
	return d, true
}

// priorityOf maps an iCalendar PRIORITY onto the nearest priority level.
// 0 means undefined and maps to the default.
func priorityOf(n int) event.Priority {
	switch {
	case n <= 0:
		return event.DefaultPriority
	case n <= 2:
		return event.PriorityHighest
	case n <= 4:
		return event.PriorityHigh
	case n <= 6:
		return event.PriorityMedium
	}
	return event.PriorityLow
}

func propertyValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}
