package usecase

import (
	"errors"
	"fmt"
)

// 境界層で 400 / 409 / 404 / 500 に対応づける
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewConflictError(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewNotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewInternalError(message string) error {
	return &Error{Kind: KindInternal, Message: message}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}
