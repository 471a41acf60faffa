package apperr

import (
	"errors"
	"net/http"
)

// Error is a business-rule rejection with a stable machine-readable code.
type Error struct {
	Code    string
	Status  int
	Message string
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches any *Error carrying the same code, so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Code returns the machine code for err, or "internal_error".
func Code(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return "internal_error"
}

var (
	ErrInvalidRequest = New("invalid_request", http.StatusBadRequest, "request is malformed")
	ErrForbidden      = New("forbidden", http.StatusForbidden, "not allowed to act on this resource")
	ErrSlotBusy       = New("slot_busy", http.StatusConflict, "slot is busy, retry shortly")
)
