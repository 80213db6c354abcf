package valueobject

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Callers classify with errors.Is;
// transports map each sentinel to a status code.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrAlreadyPaid  = errors.New("installment already paid")
	ErrConflictBusy = errors.New("concurrent modification in progress, retry")

	ErrInvalidStatusTransition = fmt.Errorf("%w: invalid loan status transition", ErrValidation)
)

// Invalid wraps ErrValidation with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
