package tracker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReadOnlyView is returned for edits attempted while the session is in view mode.
	ErrReadOnlyView = errors.New("attendance view is read-only")
	// ErrStatusOnFutureDate rejects status edits for days that have not happened yet.
	ErrStatusOnFutureDate = errors.New("status cannot be recorded for a future date")
	// ErrFieldNotEditable is returned when an edit targets a field other than status or shift.
	ErrFieldNotEditable = errors.New("field is not editable")
	// ErrUnknownField is returned by ParseField for names outside the filterable set.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned for values outside a field's vocabulary.
	ErrInvalidValue = errors.New("value not allowed for field")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// ConflictError reports shift assignments that double-book a slot, whether
// found locally before sending or reported back by the server.
type ConflictError struct {
	IDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scheduling conflict: %d records share the same date, department, role and shift (%s)",
		len(e.IDs), strings.Join(e.IDs, ", "))
}

// TransportError wraps a failed submission. Pending edits are kept for retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "submit attendance: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
