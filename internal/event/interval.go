package event

import "time"

// Interval is a half-open time span [Start, End) tagged with the owning event ID.
type Interval struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Empty returns true if the interval covers no time.
func (iv Interval) Empty() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps returns true if the two half-open intervals share any instant.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv.Start, iv.End, other.Start, other.End)
}

// Overlaps reports whether [start1, end1) and [start2, end2) intersect.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// OverlapSpan returns the shared part of two intervals and whether one exists.
func OverlapSpan(start1, end1, start2, end2 time.Time) (start, end time.Time, ok bool) {
	start = start1
	if start2.After(start) {
		start = start2
	}
	end = end1
	if end2.Before(end) {
		end = end2
	}
	return start, end, end.After(start)
}
