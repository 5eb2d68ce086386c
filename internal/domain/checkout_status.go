package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle            CheckoutStatus = "IDLE"
	CheckoutStatusMethodSelection CheckoutStatus = "METHOD_SELECTION"
	CheckoutStatusSubmitting      CheckoutStatus = "SUBMITTING"
	CheckoutStatusReceiptPending  CheckoutStatus = "RECEIPT_PENDING"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:            {CheckoutStatusMethodSelection},
	CheckoutStatusMethodSelection: {CheckoutStatusMethodSelection, CheckoutStatusSubmitting, CheckoutStatusIdle},
	CheckoutStatusSubmitting:      {CheckoutStatusReceiptPending, CheckoutStatusMethodSelection},
	CheckoutStatusReceiptPending:  {CheckoutStatusIdle},
}

// CanTransitionTo reports whether the checkout flow may move from one status
// to the next.
func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, s := range checkoutTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsBusy is true while a submission is in flight and confirm must be refused.
func (s CheckoutStatus) IsBusy() bool {
	return s == CheckoutStatusSubmitting || s == CheckoutStatusReceiptPending
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
