package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrUnavailable           = errors.New("item unavailable")
	ErrItemNoLongerAvailable = errors.New("item no longer available")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrForbidden             = errors.New("forbidden")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrPersistence           = errors.New("persistence failure")
	ErrDuplicateRequest      = errors.New("duplicate request")
)

// ItemNoLongerAvailableError names the cart line that was evicted during
// checkout. It matches ErrItemNoLongerAvailable with errors.Is.
type ItemNoLongerAvailableError struct {
	ItemID int64
	Name   string
}

func (e *ItemNoLongerAvailableError) Error() string {
	return fmt.Sprintf("item %s is no longer available", e.Name)
}

func (e *ItemNoLongerAvailableError) Is(target error) bool {
	return target == ErrItemNoLongerAvailable
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
