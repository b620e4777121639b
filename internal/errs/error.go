package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid request")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store failure")
)

// Error carries a caller-facing message on top of one of the kind
// sentinels above, so callers match with errors.Is and users see the
// message alone.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func NotFound(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func Store(format string, args ...any) error {
	return &Error{kind: ErrStore, msg: fmt.Sprintf(format, args...)}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
