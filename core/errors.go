package core

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrInvalidPath     = errors.New("invalid path")
	ErrPathConflict    = errors.New("path conflict")
)
