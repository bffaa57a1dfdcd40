package domain

import "errors"

var (
	ErrAssetNotFound          = errors.New("asset not found")
	ErrHolderNotFound         = errors.New("holder not found")
	ErrTicketNotFound         = errors.New("maintenance ticket not found")
	ErrDuplicateSerial        = errors.New("serial number already registered")
	ErrInvalidTransition      = errors.New("invalid lifecycle transition")
	ErrConcurrentModification = errors.New("lifecycle state was modified concurrently")
	ErrInvalidDestination     = errors.New("transfer destination cannot be resolved")
	ErrTicketAlreadyOpen      = errors.New("asset already has an open maintenance ticket")
	ErrNoOpenTicket           = errors.New("asset has no open maintenance ticket")
	ErrCorruptedHistory       = errors.New("audit history is corrupted")
)

// ValidationError marks malformed caller input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsRetryable reports whether the caller may retry the command after
// re-reading state. Only version conflicts qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
