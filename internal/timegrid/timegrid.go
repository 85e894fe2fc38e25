// Package timegrid aligns instants to a fixed-size minute grid.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

// DefaultCellMinutes is the grid cell size used when none is configured.
const DefaultCellMinutes = 15

// ErrInvalidCellSize is returned for cell sizes that do not tile an hour.
var ErrInvalidCellSize = errors.New("cell size must be between 1 and 60 minutes and divide 60")

// Direction selects which neighbouring grid boundary Quantize moves to.
type Direction int

const (
	// Down moves to the boundary at or before the instant.
	Down Direction = iota
	// Up moves to the boundary at or after the instant.
	Up
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Grid is a stateless minute grid. The zero value is not usable; use New.
type Grid struct {
	cell int // minutes
}

// New creates a Grid with the given cell size in minutes.
func New(cellMinutes int) (Grid, error) {
	if cellMinutes < 1 || cellMinutes > 60 || 60%cellMinutes != 0 {
		return Grid{}, fmt.Errorf("%w: got %d", ErrInvalidCellSize, cellMinutes)
	}
	return Grid{cell: cellMinutes}, nil
}

// MustNew is like New but panics on an invalid cell size.
// Intended for constants and tests.
func MustNew(cellMinutes int) Grid {
	g, err := New(cellMinutes)
	if err != nil {
		panic(err)
	}
	return g
}

// CellMinutes returns the cell size in minutes.
func (g Grid) CellMinutes() int {
	return g.cell
}

// Cell returns the cell size as a duration.
func (g Grid) Cell() time.Duration {
	return time.Duration(g.cell) * time.Minute
}

// Quantize moves t onto the grid in the given direction.
// Minutes are counted in t's own location. Quantizing an aligned instant
// returns it unchanged in either direction.
func (g Grid) Quantize(t time.Time, dir Direction) time.Time {
	if dir == Up {
		return g.Ceil(t)
	}
	return g.Floor(t)
}

// Floor returns the last grid boundary at or before t.
func (g Grid) Floor(t time.Time) time.Time {
	remainder := t.Minute() % g.cell
	return t.Truncate(time.Minute).Add(-time.Duration(remainder) * time.Minute)
}

// Ceil moves t up to the next grid boundary by whole minutes. Seconds are
// dropped first, so 10:15:30 on a 15-minute grid gives 10:15:00.
func (g Grid) Ceil(t time.Time) time.Time {
	remainder := t.Minute() % g.cell
	return t.Truncate(time.Minute).Add(time.Duration((g.cell-remainder)%g.cell) * time.Minute)
}

// Aligned reports whether t sits exactly on a grid boundary.
func (g Grid) Aligned(t time.Time) bool {
	return t.Minute()%g.cell == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// AlignedClock reports whether minutes since midnight fall on the grid.
func (g Grid) AlignedClock(minutes int) bool {
	return minutes%g.cell == 0
}

// Cells returns how many grid cells fit between two aligned instants.
func (g Grid) Cells(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / g.Cell())
}
