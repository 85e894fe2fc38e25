// Package history keeps bounded undo/redo stacks of event collection snapshots.
package history

import "github.com/javiermolinar/calgrid/internal/event"

// DefaultMax is the number of snapshots kept on each stack.
const DefaultMax = 50

// Snapshot is an immutable copy of the full event collection.
type Snapshot []event.Event

// Take copies events into a new snapshot that shares no memory with them.
func Take(events []event.Event) Snapshot {
	s := Snapshot(event.CloneAll(events))
	if s == nil {
		s = Snapshot{}
	}
	return s
}

// Events returns a fresh copy of the snapshot's events.
func (s Snapshot) Events() []event.Event {
	out := event.CloneAll(s)
	if out == nil {
		out = []event.Event{}
	}
	return out
}

// Len returns the number of events in the snapshot.
func (s Snapshot) Len() int {
	return len(s)
}

// History holds the undo stack (oldest first) and the redo stack (most recent
// undo last). Each stack holds at most max entries; pushing onto a full stack
// drops its oldest entry.
type History struct {
	undo []Snapshot
	redo []Snapshot
	max  int
}

// New creates an empty history bounded to max entries per stack.
// A non-positive max selects DefaultMax.
func New(max int) *History {
	if max <= 0 {
		max = DefaultMax
	}
	return &History{max: max}
}

// Max returns the per-stack bound.
func (h *History) Max() int {
	return h.max
}

// Record saves the state that is about to be replaced by a fresh mutation.
// It clears the redo stack: a new edit discards any previously undone future.
func (h *History) Record(current []event.Event) {
	h.undo = push(h.undo, Take(current), h.max)
	h.redo = nil
}

// Undo returns the most recent recorded state and moves current onto the
// redo stack. ok is false, and nothing changes, when there is nothing to undo.
func (h *History) Undo(current []event.Event) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = push(h.redo, Take(current), h.max)
	return prev, true
}

// Redo returns the most recently undone state and moves current back onto the
// undo stack without clearing redo. ok is false when there is nothing to redo.
func (h *History) Redo(current []event.Event) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = push(h.undo, Take(current), h.max)
	return next, true
}

// CanUndo returns true if Undo would succeed.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo returns true if Redo would succeed.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoLen returns the number of snapshots on the undo stack.
func (h *History) UndoLen() int {
	return len(h.undo)
}

// RedoLen returns the number of snapshots on the redo stack.
func (h *History) RedoLen() int {
	return len(h.redo)
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// push appends s and evicts from the front until the stack fits max.
func push(stack []Snapshot, s Snapshot, max int) []Snapshot {
	stack = append(stack, s)
	if over := len(stack) - max; over > 0 {
		// Copy so the evicted snapshots become unreachable.
		stack = append([]Snapshot(nil), stack[over:]...)
	}
	return stack
}
