// Package ics converts events to and from iCalendar documents.
package ics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/calgrid/internal/event"
)

// DefaultProdID identifies calgrid as the producer of exported calendars.
const DefaultProdID = "-//calgrid//calgrid//EN"

// iCalendar PRIORITY values, 1 being the highest.
var priorityValues = map[event.Priority]int{
	event.PriorityHighest: 1,
	event.PriorityHigh:    3,
	event.PriorityMedium:  5,
	event.PriorityLow:     9,
}

// Export writes events as a VCALENDAR with one VEVENT each.
func Export(w io.Writer, events []event.Event, prodID string) error {
	if prodID == "" {
		prodID = DefaultProdID
	}

	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetMethod(ical.MethodPublish)

	stamp := time.Now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Notes != "" {
			ve.SetDescription(e.Notes)
		}
		if e.Owner != "" {
			ve.SetOrganizer(e.Owner)
		}
		for _, a := range e.Attendees {
			ve.AddAttendee(a)
		}
		if e.IsPrivate() {
			ve.SetClass(ical.ClassificationPrivate)
		} else {
			ve.SetClass(ical.ClassificationPublic)
		}
		if p, ok := priorityValues[e.Priority]; ok {
			ve.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(p))
		}
		if e.Label != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, string(e.Label))
		}
		if e.Label == event.LabelFree {
			ve.SetProperty(ical.ComponentPropertyTransp, "TRANSPARENT")
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
