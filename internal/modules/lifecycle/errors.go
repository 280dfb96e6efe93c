package lifecycle

import "errors"

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrNotCancellable and ErrBookingDatePassed are distinct on purpose:
	// the customer must see which guard rejected the cancellation.
	ErrNotCancellable         = errors.New("booking is no longer cancellable")
	ErrBookingDatePassed      = errors.New("booking date is already in the past")
	ErrConcurrentUpdate       = errors.New("booking was modified concurrently")
	ErrInvoicingNotConfigured = errors.New("invoicing is not configured")
	ErrStornoFailed           = errors.New("storno of the original invoice failed")
	ErrNoDocumentForStatus    = errors.New("no invoice applies to the current status")
)
