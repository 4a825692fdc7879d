package health

import "errors"

var (
	// ErrNoCredentials means there was nothing to analyze. It is a
	// distinct outcome, not a computation fault.
	ErrNoCredentials = errors.New("no credentials to analyze")
	ErrNoReport      = errors.New("no report exists")
)
