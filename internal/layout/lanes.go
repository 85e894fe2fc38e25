package layout

import (
	"slices"
	"time"

	"github.com/javiermolinar/calgrid/internal/event"
)

// Placement is an interval together with the lane it was packed into.
type Placement struct {
	Item event.Interval
	Lane int
}

// AssignLanes packs intervals into the fewest lanes such that no two
// intervals in one lane overlap.
//
// Items are visited in start order (stable, so equal starts keep their input
// order) and each goes into the lowest-numbered lane that is free by its
// start, opening a new lane when none is. This greedy first-fit uses exactly
// as many lanes as the largest number of intervals covering a single instant.
//
// Placements are returned in input order. laneCount is at least 1 so callers
// can divide by it even for an empty day.
func AssignLanes(items []event.Interval) (placements []Placement, laneCount int) {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return items[a].Start.Compare(items[b].Start)
	})

	placements = make([]Placement, len(items))
	var laneEnds []time.Time
	for _, idx := range order {
		item := items[idx]
		lane := -1
		for i, end := range laneEnds {
			if !end.After(item.Start) {
				lane = i
				break
			}
		}
		if lane == -1 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, item.End)
		} else {
			laneEnds[lane] = item.End
		}
		placements[idx] = Placement{Item: item, Lane: lane}
	}

	return placements, max(1, len(laneEnds))
}

// MaxConcurrent returns the largest number of intervals that cover any single
// instant. Intervals are half-open, so one ending exactly when another starts
// does not count as concurrent.
func MaxConcurrent(items []event.Interval) int {
	type edge struct {
		at    time.Time
		delta int
	}
	edges := make([]edge, 0, 2*len(items))
	for _, it := range items {
		if it.Empty() {
			continue
		}
		edges = append(edges, edge{it.Start, 1}, edge{it.End, -1})
	}
	// Ends sort before starts at the same instant.
	slices.SortFunc(edges, func(a, b edge) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return a.delta - b.delta
	})

	current, peak := 0, 0
	for _, e := range edges {
		current += e.delta
		peak = max(peak, current)
	}
	return peak
}
