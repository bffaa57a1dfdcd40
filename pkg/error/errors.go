package error

import (
	"errors"
	"net/http"

	"github.com/ativus/ativus/domain"
)

// AppError carries the machine-readable code and HTTP status for an error
// crossing the API boundary.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequest(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewNotFound(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusNotFound}
}

func NewConflict(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusConflict}
}

func NewUnprocessable(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusUnprocessableEntity}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "STORAGE_FAILURE", Message: message, Status: http.StatusInternalServerError}
}

// MapError translates domain errors into API errors. Anything unmapped is
// reported as a storage failure without leaking internals.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return NewBadRequest("VALIDATION_ERROR", validationErr.Error())
	}

	switch {
	case errors.Is(err, domain.ErrAssetNotFound):
		return NewNotFound("ASSET_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrHolderNotFound):
		return NewNotFound("HOLDER_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrTicketNotFound):
		return NewNotFound("TICKET_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrDuplicateSerial):
		return NewConflict("DUPLICATE_SERIAL", err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		return NewConflict("CONCURRENT_MODIFICATION", err.Error())
	case errors.Is(err, domain.ErrTicketAlreadyOpen):
		return NewConflict("TICKET_ALREADY_OPEN", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return NewUnprocessable("INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrInvalidDestination):
		return NewUnprocessable("INVALID_DESTINATION", err.Error())
	case errors.Is(err, domain.ErrNoOpenTicket):
		return NewUnprocessable("NO_OPEN_TICKET", err.Error())
	case errors.Is(err, domain.ErrCorruptedHistory):
		return NewInternalServer(err.Error())
	default:
		return NewInternalServer("an unexpected error occurred")
	}
}
