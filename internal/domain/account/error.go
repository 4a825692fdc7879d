package account

import "errors"

var (
	ErrNotFound     = errors.New("account not found")
	ErrInvalidAuth  = errors.New("invalid credentials")
	ErrInvalidInput = errors.New("invalid input")
	ErrTotpDisabled = errors.New("second factor not enabled")
)
