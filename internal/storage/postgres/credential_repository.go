package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"credvault/internal/domain/credential"
)

type CredentialRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewCredentialRepository(pool *pgxpool.Pool, log *slog.Logger) *CredentialRepository {
	return &CredentialRepository{
		pool: pool,
		log:  log.With("component", "credential_repository"),
	}
}

func (r *CredentialRepository) Create(ctx context.Context, cred *credential.Credential) (int, error) {
	const query = `
		INSERT INTO credentials
			(account_id, origin, account_name, encrypted_password,
			 url_pattern, autofill_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		cred.AccountID, cred.Origin, cred.AccountName,
		cred.EncryptedPassword, cred.URLPattern, cred.AutoFillEnabled,
	).Scan(&cred.ID, &cred.CreatedAt)

	if err != nil {
		r.log.Error("failed to create credential",
			"account_id", cred.AccountID, "error", err)
		return 0, fmt.Errorf("create credential: %w", err)
	}

	return cred.ID, nil
}

func (r *CredentialRepository) ListByAccount(ctx context.Context, accountID int) ([]credential.Credential, error) {
	const query = `
		SELECT id, account_id, origin, account_name, encrypted_password,
		       url_pattern, autofill_enabled, last_used, strength_score, created_at
		FROM credentials
		WHERE account_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		r.log.Error("failed to list credentials", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []credential.Credential
	for rows.Next() {
		var c credential.Credential
		err := rows.Scan(
			&c.ID, &c.AccountID, &c.Origin, &c.AccountName,
			&c.EncryptedPassword, &c.URLPattern, &c.AutoFillEnabled,
			&c.LastUsed, &c.StrengthScore, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (r *CredentialRepository) TouchUsage(ctx context.Context, accountID, id int, at time.Time) error {
	return r.exec(ctx, id,
		`UPDATE credentials SET last_used = $1 WHERE id = $2 AND account_id = $3`,
		at, id, accountID)
}

func (r *CredentialRepository) SetAutoFill(ctx context.Context, accountID, id int, enabled bool) error {
	return r.exec(ctx, id,
		`UPDATE credentials SET autofill_enabled = $1 WHERE id = $2 AND account_id = $3`,
		enabled, id, accountID)
}

func (r *CredentialRepository) SetURLPattern(ctx context.Context, accountID, id int, pattern string) error {
	return r.exec(ctx, id,
		`UPDATE credentials SET url_pattern = $1 WHERE id = $2 AND account_id = $3`,
		pattern, id, accountID)
}

func (r *CredentialRepository) SetStrengthScore(ctx context.Context, id, score int) error {
	return r.exec(ctx, id,
		`UPDATE credentials SET strength_score = $1 WHERE id = $2`, score, id)
}

func (r *CredentialRepository) exec(ctx context.Context, id int, query string, args ...any) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to update credential", "credential_id", id, "error", err)
		return fmt.Errorf("update credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return credential.ErrNotFound
	}
	return nil
}
