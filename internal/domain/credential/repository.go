package credential

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, cred *Credential) (int, error)
	ListByAccount(ctx context.Context, accountID int) ([]Credential, error)
	// TouchUsage sets last_used in a single atomic statement, scoped to
	// the owning account. Returns ErrNotFound when the row is missing
	// or owned by someone else.
	TouchUsage(ctx context.Context, accountID, id int, at time.Time) error
	SetAutoFill(ctx context.Context, accountID, id int, enabled bool) error
	SetURLPattern(ctx context.Context, accountID, id int, pattern string) error
	SetStrengthScore(ctx context.Context, id, score int) error
}
