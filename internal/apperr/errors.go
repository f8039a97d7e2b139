package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrDBConn          = errors.New("db connection failure")
	ErrMBConn          = errors.New("message broker connection failure")
	ErrMalformedInput  = errors.New("malformed webhook payload")
	ErrMissingSession  = errors.New("session id is missing")
	ErrUnknownIntent   = errors.New("unknown intent kind")
	ErrDuplicateIntent = errors.New("intent display name mapped twice")
)

// Kind classifies a failure for logging and reply selection.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindState       Kind = "state"
	KindPersistence Kind = "persistence"
	KindUnexpected  Kind = "unexpected"
)

// Error tags an underlying error with its Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost Kind attached to err, or KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
