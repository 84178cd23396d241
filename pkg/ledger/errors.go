// errors.go defines the ledger's error taxonomy.
//
// Validation errors are operator input problems: always recoverable,
// surfaced verbatim, never retried automatically, and always detected
// before any append is attempted. Transport errors wrap store failures so
// callers never see raw driver errors. A partial reset is its own kind
// because it leaves the log in an inconsistent state that needs a manual
// re-attempt.
package ledger

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a ledger operation is invoked before the
// operator handshake (Open) has completed.
var ErrNotReady = errors.New("ledger not open: operator handshake required")

// ValidationKind identifies which input rule a rejected operation broke.
type ValidationKind string

const (
	EmptyRoad             ValidationKind = "empty_road"
	NonPositiveVolume     ValidationKind = "non_positive_volume"
	InsufficientInventory ValidationKind = "insufficient_inventory"
	EmptyChemicalMix      ValidationKind = "empty_chemical_mix"
	IncompleteConditions  ValidationKind = "incomplete_conditions"
	TankFull              ValidationKind = "tank_full"
)

// ValidationError rejects an operation on operator input before anything is
// persisted.
type ValidationError struct {
	Kind ValidationKind
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation (%s): %s", e.Kind, e.Msg)
}

func validationf(kind ValidationKind, format string, args ...interface{}) error {
	return &ValidationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError of the given kind.
func IsValidation(err error, kind ValidationKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

// TransportOp identifies which store interaction failed.
type TransportOp string

const (
	OpRead   TransportOp = "read"
	OpWrite  TransportOp = "write"
	OpDelete TransportOp = "delete"
)

// TransportError wraps a store adapter failure. Callers surface these as a
// generic could-not-save/could-not-load message and let the operator
// re-trigger the action.
type TransportError struct {
	Op  TransportOp
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PartialResetError reports a reset that deleted some but not all records.
// The log is inconsistent until the reset is re-attempted.
type PartialResetError struct {
	Deleted   int
	Remaining int
	Err       error // first deletion failure
}

func (e *PartialResetError) Error() string {
	return fmt.Sprintf("partial reset: deleted %d record(s), %d remain: %v",
		e.Deleted, e.Remaining, e.Err)
}

func (e *PartialResetError) Unwrap() error { return e.Err }
