package booking

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrDateInPast    = errors.New("booking date must be in the future")
	ErrSlotNotFound  = errors.New("time slot not found")
	ErrSlotTaken     = errors.New("time slot is already booked for that date")
	ErrStudioClosed  = errors.New("studio is closed on that day")
	ErrInvalidCoupon = errors.New("coupon code is invalid or expired")
	ErrNotFound      = errors.New("booking not found")
	ErrForbidden     = errors.New("booking belongs to another user")
)
