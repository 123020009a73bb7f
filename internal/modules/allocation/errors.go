package allocation

import (
	"errors"
	"fmt"

	"hostelms/internal/repository"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
)

// conflictFromUnique classifies a storage uniqueness violation into the
// business conflict it represents. Anything else passes through untouched.
func conflictFromUnique(err error, bed int) error {
	switch repository.UniqueViolation(err) {
	case repository.UniqueCurrentBed:
		return fmt.Errorf("%w: bed %d already occupied", ErrConflict, bed)
	case repository.UniqueCurrentResident:
		return fmt.Errorf("%w: resident already has a current allocation", ErrConflict)
	}
	return err
}
