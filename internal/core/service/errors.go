package service

import (
	"errors"
	"strings"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrForbidden        = errors.New("admin role required")
	ErrNotConfirming    = errors.New("no checkout awaiting confirmation")
	ErrCheckoutRejected = errors.New("checkout rejected")
	ErrEmptyCart        = errors.New("cart empty")
)

// ValidationError carries every violation found while validating a
// checkout. It matches ErrCheckoutRejected, and ErrEmptyCart when the cart
// was empty.
type ValidationError struct {
	Violations []domain.Violation
}

func (e *ValidationError) Error() string {
	return ErrCheckoutRejected.Error() + ": " + strings.Join(e.Messages(), ". ")
}

// Messages returns one user-facing line per violation.
func (e *ValidationError) Messages() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Message()
	}
	return out
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrCheckoutRejected:
		return true
	case ErrEmptyCart:
		return len(e.Violations) == 1 && e.Violations[0].Reason == domain.ReasonCartEmpty
	}
	return false
}
