// Package apperr defines the small closed set of error kinds shared by the
// repositories, services and HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can map it without inspecting
// message strings.
type Kind int

const (
	// Upstream is a failure of a dependency: store, hasher, signer, broker.
	Upstream Kind = iota
	// Validation means the caller supplied unusable input.
	Validation
	// NotFound means the addressed record does not exist.
	NotFound
	// Conflict means the write collides with an existing record.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "upstream"
	}
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// E wraps err with kind and op. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a validation error from a formatted message.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: Validation, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of the outermost *Error in err's chain. Sentinel
// ErrNotFound and ErrConflict are recognised without a wrapper; anything
// else is Upstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound
	case errors.Is(err, ErrConflict):
		return Conflict
	}
	return Upstream
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the message of the innermost cause, stripped of the
// operation prefixes added while the error travelled up the stack.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for {
		var e *Error
		if !errors.As(err, &e) || e.Err == nil {
			return err.Error()
		}
		err = e.Err
	}
}
