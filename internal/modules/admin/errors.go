package admin

import "errors"

var (
	ErrInvalidStatus   = errors.New("unknown booking status")
	ErrInvalidPolicy   = errors.New("invalid cancellation policy")
	ErrInvalidTemplate = errors.New("unknown email template")
	ErrNotFound        = errors.New("booking not found")
	ErrValidation      = errors.New("validation error")
)
