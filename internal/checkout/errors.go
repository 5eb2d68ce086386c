package checkout

import "errors"

// ErrValidation matches every error raised before any network call because
// the checkout input is incomplete.
var ErrValidation = errors.New("checkout validation failed")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrEmptyCart        error = &validationError{"cart is empty, nothing to checkout"}
	ErrNoPaymentMethod  error = &validationError{"no known payment method selected"}
	ErrInsufficientCash error = &validationError{"cash received is less than the grand total"}

	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrIllegalTransition  = errors.New("illegal transition of checkout status")
	ErrOrderNotPersisted  = errors.New("order was not saved")
)
