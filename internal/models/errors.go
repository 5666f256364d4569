package models

import (
	"errors"
	"strings"
)

// Recoverable user-facing conditions. None of these are fatal to the
// process; the presentation layer decides how to surface them.
var (
	ErrOutOfStock         = errors.New("requested quantity cannot be satisfied")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidCoupon      = errors.New("invalid coupon code")
	ErrInvalidPayment     = errors.New("payment validation failed")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
)

// ValidationError reports every violated rule of a form submission,
// not just the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewValidationError returns nil when no rules were violated
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// AsValidationError unwraps err into a *ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
