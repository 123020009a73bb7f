package catalog

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("room not found")
	ErrConflict   = errors.New("conflict")
)
