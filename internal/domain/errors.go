package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error is a failure the caller caused. Msg is safe to show to clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func BadRequest(msg string) error { return &Error{Kind: ErrBadRequest, Msg: msg} }

func BadRequestf(format string, args ...any) error {
	return &Error{Kind: ErrBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Msg: msg} }
