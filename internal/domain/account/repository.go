package account

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, acc *Account) (int, error)
	FindByID(ctx context.Context, id int) (Account, error)
	FindByUsername(ctx context.Context, username string) (Account, error)
	ListWithEmail(ctx context.Context) ([]Account, error)
	SetEmail(ctx context.Context, id int, email string) error
	SetReportFrequency(ctx context.Context, id int, freq ReportFrequency) error
	SetTotp(ctx context.Context, id int, secret string, enabled bool) error
	SetLastLogin(ctx context.Context, id int, at time.Time) error

	// ReplaceBackupCodes swaps the full backup-code set for the account.
	ReplaceBackupCodes(ctx context.Context, id int, codes []BackupCode) error
	// ConsumeBackupCode marks the code consumed if it exists unconsumed.
	// The check and the flag update happen in one atomic statement; it
	// returns false when nothing was consumed.
	ConsumeBackupCode(ctx context.Context, id int, code string) (bool, error)
}
