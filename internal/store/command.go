package store

import "github.com/javiermolinar/calgrid/internal/event"

// CommandKind names a store command.
type CommandKind string

const (
	CommandCreate CommandKind = "create"
	CommandUpdate CommandKind = "update"
	CommandMove   CommandKind = "move"
	CommandDelete CommandKind = "delete"
	CommandUndo   CommandKind = "undo"
	CommandRedo   CommandKind = "redo"
)

// Command is a single request against the store. Build one with Create,
// Update, Move, Delete, Undo or Redo.
type Command struct {
	Kind  CommandKind
	ID    string
	Draft event.Draft
}

// Create adds a new event built from d.
func Create(d event.Draft) Command {
	return Command{Kind: CommandCreate, Draft: d}
}

// Update edits event id. Fields left unset in d keep their current value.
func Update(id string, d event.Draft) Command {
	return Command{Kind: CommandUpdate, ID: id, Draft: d}
}

// Move reschedules event id, as a drag or resize gesture does. start and
// end are raw timestamps; they go through the same validation as Update,
// so an unparsable one is rejected with the draft attached.
func Move(id, start, end string) Command {
	return Command{
		Kind:  CommandMove,
		ID:    id,
		Draft: event.Draft{Start: start, End: end},
	}
}

// Delete removes event id.
func Delete(id string) Command {
	return Command{Kind: CommandDelete, ID: id}
}

// Undo restores the state before the last mutation.
func Undo() Command {
	return Command{Kind: CommandUndo}
}

// Redo reapplies the last undone mutation.
func Redo() Command {
	return Command{Kind: CommandRedo}
}

// Outcome tells what a successful command did.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeUpdated       Outcome = "updated"
	OutcomeDeleted       Outcome = "deleted"
	OutcomeNoChange      Outcome = "no-change"
	OutcomeUndone        Outcome = "undone"
	OutcomeRedone        Outcome = "redone"
	OutcomeNothingToUndo Outcome = "nothing-to-undo"
	OutcomeNothingToRedo Outcome = "nothing-to-redo"
)

// Result describes a command that was accepted.
type Result struct {
	Outcome Outcome
	EventID string       // affected event, empty for undo/redo
	Event   *event.Event // committed event for create/update/move
	Count   int          // collection size after the command
}

// Changed reports whether the collection changed.
func (r Result) Changed() bool {
	switch r.Outcome {
	case OutcomeCreated, OutcomeUpdated, OutcomeDeleted, OutcomeUndone, OutcomeRedone:
		return true
	}
	return false
}
