package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"credvault/internal/domain/account"
)

type AccountRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewAccountRepository(pool *pgxpool.Pool, log *slog.Logger) *AccountRepository {
	return &AccountRepository{
		pool: pool,
		log:  log.With("component", "account_repository"),
	}
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) (int, error) {
	const query = `
		INSERT INTO accounts (username, password_hash, salt, report_frequency)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		acc.Username, acc.PasswordHash, acc.Salt, acc.ReportFrequency,
	).Scan(&acc.ID, &acc.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: username already taken", account.ErrInvalidInput)
		}
		r.log.Error("failed to create account", "username", acc.Username, "error", err)
		return 0, fmt.Errorf("create account: %w", err)
	}

	return acc.ID, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int) (account.Account, error) {
	const query = `
		SELECT id, username, password_hash, salt, totp_secret, totp_enabled,
		       email, report_frequency, last_login, created_at
		FROM accounts
		WHERE id = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (account.Account, error) {
	const query = `
		SELECT id, username, password_hash, salt, totp_secret, totp_enabled,
		       email, report_frequency, last_login, created_at
		FROM accounts
		WHERE username = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *AccountRepository) ListWithEmail(ctx context.Context) ([]account.Account, error) {
	const query = `
		SELECT id, username, password_hash, salt, totp_secret, totp_enabled,
		       email, report_frequency, last_login, created_at
		FROM accounts
		WHERE email <> ''
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list accounts", "error", err)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) SetEmail(ctx context.Context, id int, email string) error {
	return r.exec(ctx, id,
		`UPDATE accounts SET email = $1 WHERE id = $2`, email, id)
}

func (r *AccountRepository) SetReportFrequency(ctx context.Context, id int, freq account.ReportFrequency) error {
	return r.exec(ctx, id,
		`UPDATE accounts SET report_frequency = $1 WHERE id = $2`, freq, id)
}

func (r *AccountRepository) SetTotp(ctx context.Context, id int, secret string, enabled bool) error {
	return r.exec(ctx, id,
		`UPDATE accounts SET totp_secret = $1, totp_enabled = $2 WHERE id = $3`,
		secret, enabled, id)
}

func (r *AccountRepository) SetLastLogin(ctx context.Context, id int, at time.Time) error {
	return r.exec(ctx, id,
		`UPDATE accounts SET last_login = $1 WHERE id = $2`, at, id)
}

func (r *AccountRepository) ReplaceBackupCodes(ctx context.Context, id int, codes []account.BackupCode) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM backup_codes WHERE account_id = $1`, id); err != nil {
		return fmt.Errorf("clear backup codes: %w", err)
	}

	for _, c := range codes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO backup_codes (account_id, code, consumed) VALUES ($1, $2, $3)`,
			id, c.Code, c.Consumed); err != nil {
			return fmt.Errorf("insert backup code: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ConsumeBackupCode flips the consumed flag in one statement so two
// concurrent logins cannot both spend the same code.
func (r *AccountRepository) ConsumeBackupCode(ctx context.Context, id int, code string) (bool, error) {
	const query = `
		UPDATE backup_codes
		SET consumed = TRUE
		WHERE account_id = $1 AND code = $2 AND NOT consumed`

	result, err := r.pool.Exec(ctx, query, id, code)
	if err != nil {
		r.log.Error("failed to consume backup code", "account_id", id, "error", err)
		return false, fmt.Errorf("consume backup code: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *AccountRepository) exec(ctx context.Context, id int, query string, args ...any) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to update account", "account_id", id, "error", err)
		return fmt.Errorf("update account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (account.Account, error) {
	var acc account.Account
	var lastLogin *time.Time

	err := row.Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash, &acc.Salt,
		&acc.TotpSecret, &acc.TotpEnabled, &acc.Email,
		&acc.ReportFrequency, &lastLogin, &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, fmt.Errorf("scan account: %w", err)
	}

	acc.LastLogin = lastLogin
	return acc, nil
}
