package decl

import (
	"errors"
	"fmt"

	"github.com/kates/vector/core"
)

var (
	ErrUndefinedVariable  = errors.New("undefined variable")
	ErrUnassignedVariable = errors.New("variable may be read before it is assigned")
	ErrNotBoolean         = errors.New("expected boolean")
	ErrInvalidTarget      = errors.New("invalid assignment target")
	ErrUnknownExpr        = errors.New("unknown expression kind")
)

// ErrorKind identifies which expression kind raised an Error, so the host
// pipeline can pick a policy per kind.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindVariable
	ErrKindAssignment
	ErrKindIf
	ErrKindNot
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindVariable:
		return "variable"
	case ErrKindAssignment:
		return "assignment"
	case ErrKindIf:
		return "if"
	case ErrKindNot:
		return "not"
	default:
		return "unknown"
	}
}

// ParseErrorKind is the inverse of ErrorKind.String.
func ParseErrorKind(s string) (ErrorKind, error) {
	for k := ErrKindUnknown; k <= ErrKindNot; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return ErrKindUnknown, fmt.Errorf("unknown error kind: %s", s)
}

// kindedError is implemented by every expression-local error type.
type kindedError interface {
	error
	ErrorKind() ErrorKind
}

// VariableError is raised when a variable is read before anything was bound to it.
type VariableError struct {
	Ident string
}

func (e *VariableError) Error() string        { return "undefined variable: " + e.Ident }
func (e *VariableError) Is(target error) bool { return target == ErrUndefinedVariable }
func (e *VariableError) ErrorKind() ErrorKind { return ErrKindVariable }

// PathError is raised when the object rejects a write.
type PathError struct {
	Target core.Path
	Err    error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("unable to assign to %s: %v", e.Target, e.Err)
}
func (e *PathError) Unwrap() error        { return e.Err }
func (e *PathError) ErrorKind() ErrorKind { return ErrKindAssignment }

// IfError is raised when an if-condition does not evaluate to a boolean.
type IfError struct {
	Got core.Kind
}

func (e *IfError) Error() string {
	return fmt.Sprintf("if condition must be boolean, got %s", e.Got)
}
func (e *IfError) Is(target error) bool { return target == ErrNotBoolean }
func (e *IfError) ErrorKind() ErrorKind { return ErrKindIf }

// NotError is raised when negating a non-boolean.
type NotError struct {
	Got core.Kind
}

func (e *NotError) Error() string {
	return fmt.Sprintf("cannot negate %s, expected boolean", e.Got)
}
func (e *NotError) Is(target error) bool { return target == ErrNotBoolean }
func (e *NotError) ErrorKind() ErrorKind { return ErrKindNot }

// UnassignedError is the compile error reported under StrictnessStrict for a
// variable that is not bound on every path reaching it.
type UnassignedError struct {
	Ident string
}

func (e *UnassignedError) Error() string {
	return fmt.Sprintf("variable %q may be read before it is assigned", e.Ident)
}
func (e *UnassignedError) Is(target error) bool { return target == ErrUnassignedVariable }

// Error is the single error type returned by Expr.Execute. It wraps the
// expression-local error, which stays reachable through errors.As.
type Error struct {
	Kind ErrorKind
	Expr string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// WrapError converts any error raised while executing expr into an *Error.
// A nil error stays nil and an *Error passes through untouched, so a child's
// failure reaches the root exactly as it was first reported.
func WrapError(expr Expr, err error) error {
	if err == nil {
		return nil
	}
	var exprErr *Error
	if errors.As(err, &exprErr) {
		return err
	}
	out := &Error{Kind: ErrKindUnknown, Err: err}
	if expr != nil {
		out.Expr = expr.String()
	}
	var kinded kindedError
	if errors.As(err, &kinded) {
		out.Kind = kinded.ErrorKind()
	}
	return out
}
