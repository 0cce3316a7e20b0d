package orchestrators

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConflict is returned when a change collides with existing state:
// a duplicate record, an illegal status transition, or a full stream.
var ErrConflict = errors.New("conflict")

// InvalidInputError wraps a validation failure caused by the caller's input.
type InvalidInputError struct {
	Err error
}

func (e *InvalidInputError) Error() string { return e.Err.Error() }

func (e *InvalidInputError) Unwrap() error { return e.Err }

// invalid marks err as the caller's fault. A nil err stays nil.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &InvalidInputError{Err: err}
}

// conflict marks err as a state conflict while keeping the domain error matchable.
func conflict(err error) error {
	return fmt.Errorf("%w: %w", ErrConflict, err)
}

// documentNumber builds a human-facing number such as PO-20260301-3F9A1C.
// PRE: id is a generated identifier
func documentNumber(prefix string, now time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return prefix + "-" + now.Format("20060102") + "-" + suffix
}
