package session

import (
	"errors"
	"fmt"

	"github.com/manvel7/Antd-small-test/internal/validate"
)

var (
	// ErrSessionOpen is returned when opening while a session is open.
	ErrSessionOpen = errors.New("session: already open")

	// ErrSessionClosed is returned when editing or submitting a closed session.
	ErrSessionClosed = errors.New("session: not open")

	// ErrActionInFlight is returned while a submit is running.
	ErrActionInFlight = errors.New("session: submit in progress")

	// ErrInvalidDraft matches every ValidationError.
	ErrInvalidDraft = errors.New("session: invalid draft")
)

// ValidationError is returned by Submit when the draft fails validation.
// No request is made.
type ValidationError struct {
	Result validate.Result
}

func (e *ValidationError) Error() string {
	errs := e.Result.Errors()
	if len(errs) == 0 {
		return ErrInvalidDraft.Error()
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidDraft, errs[0].Field, errs[0].Reason)
}

// Is makes errors.Is(err, ErrInvalidDraft) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDraft
}

// IsInvalidDraft returns the validation result if err is a ValidationError.
func IsInvalidDraft(err error) (validate.Result, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Result, true
	}
	return validate.Result{}, false
}
