package shared

import (
	"errors"
	"net/http"
)

// Sentinel errors for the engine's domain failure modes. Services wrap these
// into an AppError at the API boundary.
var (
	ErrDuplicateEvent      = errors.New("event already applied")
	ErrQuestNotCompleted   = errors.New("quest is not completed")
	ErrQuestAlreadyClaimed = errors.New("quest reward already claimed")
	ErrAlreadyAwarded      = errors.New("reward already awarded")
	ErrTransient           = errors.New("transient storage error")
)

type AppError struct {
	StatusCode int
	Message    string
	Err        error
	Data       interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Err: err}
}

func NewValidationError(err error, data interface{}) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: "Validation failed", Err: err, Data: data}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message, Err: err}
}

func NewConflictError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message, Err: err}
}

func NewUnavailableError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Message: message, Err: err}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
