package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	ErrCircularInclude = errors.New("circular include")
	ErrMaxDepth        = errors.New("max include depth exceeded")
	ErrInvalidDocument = errors.New("invalid program document")
)

// Location points at a position in a program document.
type Location struct {
	File string
	Line int
	Col  int
}

func nodeLocation(file string, n *yaml.Node) Location {
	if n == nil {
		return Location{File: file}
	}
	return Location{File: file, Line: n.Line, Col: n.Column}
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// LoadError is a problem found while decoding a program, tied to where it was found.
type LoadError struct {
	Pos Location
	Msg string
	Err error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Pos, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrorCollector gathers load errors so a single pass can report all of them.
type ErrorCollector struct {
	Errors []error

	// Stop collecting after this many errors. 0 means no limit.
	MaxErrors int
}

func (c *ErrorCollector) HasErrors() bool {
	return len(c.Errors) > 0
}

// Full reports whether MaxErrors has been reached.
func (c *ErrorCollector) Full() bool {
	return c.MaxErrors > 0 && len(c.Errors) >= c.MaxErrors
}

func (c *ErrorCollector) PrintErrors(w io.Writer) {
	for _, err := range c.Errors {
		fmt.Fprintln(w, err)
	}
}

func (c *ErrorCollector) AddErrors(errs ...error) {
	for _, err := range errs {
		if c.Full() {
			return
		}
		c.Errors = append(c.Errors, err)
	}
}

// Errorf records an error at pos. It always returns false so decoders can
// `return c.Errorf(...)` from a success-reporting branch.
func (c *ErrorCollector) Errorf(pos Location, format string, args ...any) bool {
	c.AddErrors(&LoadError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
	return false
}

// Wrapf records err at pos with some context.
func (c *ErrorCollector) Wrapf(pos Location, err error, format string, args ...any) bool {
	c.AddErrors(&LoadError{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: err})
	return false
}
