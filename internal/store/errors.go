package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/calgrid/internal/conflict"
	"github.com/javiermolinar/calgrid/internal/event"
)

// Kind classifies why a command was rejected.
type Kind string

const (
	KindMissingField        Kind = "MissingField"
	KindInvalidValue        Kind = "InvalidValue"
	KindUnparsableTimestamp Kind = "UnparsableTimestamp"
	KindEndBeforeStart      Kind = "EndBeforeStart"
	KindDurationExceeded    Kind = "DurationExceeded"
	KindConflictDetected    Kind = "ConflictDetected"
	KindNotFound            Kind = "NotFound"
)

// Sentinels matched by errors.Is against a *ValidationError.
var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidValue        = errors.New("invalid value")
	ErrUnparsableTimestamp = errors.New("unparsable timestamp")
	ErrEndBeforeStart      = errors.New("end must be after start")
	ErrDurationExceeded    = errors.New("event lasts longer than 24h")
	ErrConflictDetected    = errors.New("conflicts with existing events")
	ErrNotFound            = errors.New("event not found")
)

var sentinels = map[Kind]error{
	KindMissingField:        ErrMissingField,
	KindInvalidValue:        ErrInvalidValue,
	KindUnparsableTimestamp: ErrUnparsableTimestamp,
	KindEndBeforeStart:      ErrEndBeforeStart,
	KindDurationExceeded:    ErrDurationExceeded,
	KindConflictDetected:    ErrConflictDetected,
	KindNotFound:            ErrNotFound,
}

// ValidationError is returned for every rejected command. Draft holds the
// input exactly as submitted so it can be shown again for correction.
type ValidationError struct {
	Kind      Kind
	Field     string // offending draft field, empty when not field-specific
	Message   string
	Conflicts []conflict.Conflict // set for KindConflictDetected
	Draft     event.Draft
	Err       error // underlying parse error, if any
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap exposes the kind's sentinel and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	errs := []error{sentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ConflictIDs returns the ids of the conflicting events.
func (e *ValidationError) ConflictIDs() []string {
	return conflict.IDs(e.Conflicts)
}

func invalid(kind Kind, field string, d event.Draft, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Draft:   d.Clone(),
	}
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
