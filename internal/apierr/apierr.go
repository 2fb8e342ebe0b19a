package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type Kind string

const (
	Invalid      Kind = "invalid"
	NotFound     Kind = "not_found"
	Unauthorized Kind = "unauthorized"
	Forbidden    Kind = "forbidden"
	Conflict     Kind = "conflict"
	Unavailable  Kind = "unavailable"
	Internal     Kind = "internal"
)

// Error is what a failed API call reports to the dashboard: a message safe to
// show in a toast plus optional data such as field errors.
type Error struct {
	Kind    Kind
	Message string
	Data    interface{}
	Err     error // internal cause, logged but never rendered
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func InvalidErr(message string, data interface{}) *Error {
	return &Error{Kind: Invalid, Message: message, Data: data}
}

func NotFoundErr(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

func ForbiddenErr(message string) *Error {
	return &Error{Kind: Forbidden, Message: message}
}

func ConflictErr(message string, err error) *Error {
	return &Error{Kind: Conflict, Message: message, Err: err}
}

// Wrap turns an internal error into a 500 without exposing it. Record not
// found errors from gorm become NotFound.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: NotFound, Message: message + " not found", Err: err}
	}
	return &Error{Kind: Internal, Message: "Something went wrong", Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case Invalid:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the {message, data} pair rendered to the client.
func Body(err error) (string, interface{}) {
	if ae, ok := As(err); ok && ae.Message != "" {
		return ae.Message, ae.Data
	}
	return "Something went wrong", nil
}
