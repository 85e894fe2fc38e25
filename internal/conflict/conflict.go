// Package conflict detects attendee double-bookings between events.
package conflict

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/calgrid/internal/event"
)

// Conflict is an existing event that overlaps a candidate and shares attendees with it.
type Conflict struct {
	Event           event.Event `json:"-"`
	EventID         string      `json:"event_id"`
	EventTitle      string      `json:"event_title"`
	CommonAttendees []string    `json:"common_attendees"`
	OverlapStart    time.Time   `json:"overlap_start"`
	OverlapEnd      time.Time   `json:"overlap_end"`
}

// String returns a one-line description of the conflict.
func (c Conflict) String() string {
	return fmt.Sprintf("%q (%s-%s) shares %s",
		c.EventTitle,
		c.Event.Start.Format("2006-01-02 15:04"),
		c.Event.End.Format("15:04"),
		strings.Join(c.CommonAttendees, ", "),
	)
}

// Check returns every event in existing that overlaps [start, end) and has at
// least one attendee in common with attendees. The event whose ID equals
// excludeID is skipped, which lets an update ignore its own previous version.
// Touching intervals never conflict. An empty result is not an error.
func Check(start, end time.Time, attendees []string, existing []event.Event, excludeID string) []Conflict {
	var conflicts []Conflict
	for _, e := range existing {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if !event.Overlaps(start, end, e.Start, e.End) {
			continue
		}
		common := event.Intersect(attendees, e.Attendees)
		if len(common) == 0 {
			continue
		}
		overlapStart, overlapEnd, _ := event.OverlapSpan(start, end, e.Start, e.End)
		conflicts = append(conflicts, Conflict{
			Event:           e.Clone(),
			EventID:         e.ID,
			EventTitle:      e.Title,
			CommonAttendees: common,
			OverlapStart:    overlapStart,
			OverlapEnd:      overlapEnd,
		})
	}
	return conflicts
}

// Any returns true if Check would report at least one conflict.
func Any(start, end time.Time, attendees []string, existing []event.Event, excludeID string) bool {
	return len(Check(start, end, attendees, existing, excludeID)) > 0
}

// IDs returns the IDs of the conflicting events in order.
func IDs(conflicts []Conflict) []string {
	ids := make([]string, len(conflicts))
	for i, c := range conflicts {
		ids[i] = c.EventID
	}
	return ids
}
