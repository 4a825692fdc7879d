// Package mail delivers health reports to account owners. The
// transport is an external collaborator; everything here is retryable
// by the caller.
package mail

import (
	"context"
	"errors"
)

// ErrSendFailed wraps any delivery failure. The generated report
// stays valid; the scheduler retries on a later tick.
var ErrSendFailed = errors.New("mail delivery failed")

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
