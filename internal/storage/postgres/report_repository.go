package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"credvault/internal/domain/health"
)

type ReportRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewReportRepository(pool *pgxpool.Pool, log *slog.Logger) *ReportRepository {
	return &ReportRepository{
		pool: pool,
		log:  log.With("component", "report_repository"),
	}
}

func (r *ReportRepository) Create(ctx context.Context, rep *health.Report) (int, error) {
	const query = `
		INSERT INTO health_reports
			(account_id, generated_at, overall_score, weak_count,
			 reused_count, old_count, detail, email_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		rep.AccountID, rep.GeneratedAt, rep.OverallScore, rep.WeakCount,
		rep.ReusedCount, rep.OldCount, rep.Detail, rep.EmailSent,
	).Scan(&rep.ID)

	if err != nil {
		r.log.Error("failed to create report", "account_id", rep.AccountID, "error", err)
		return 0, fmt.Errorf("create report: %w", err)
	}

	return rep.ID, nil
}

func (r *ReportRepository) Latest(ctx context.Context, accountID int) (health.Report, error) {
	const query = `
		SELECT id, account_id, generated_at, overall_score, weak_count,
		       reused_count, old_count, detail, email_sent
		FROM health_reports
		WHERE account_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	var rep health.Report
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&rep.ID, &rep.AccountID, &rep.GeneratedAt, &rep.OverallScore,
		&rep.WeakCount, &rep.ReusedCount, &rep.OldCount,
		&rep.Detail, &rep.EmailSent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return health.Report{}, health.ErrNoReport
		}
		r.log.Error("failed to load latest report", "account_id", accountID, "error", err)
		return health.Report{}, fmt.Errorf("latest report: %w", err)
	}

	return rep, nil
}

func (r *ReportRepository) MarkEmailSent(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE health_reports SET email_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to mark report sent", "report_id", id, "error", err)
		return fmt.Errorf("mark report sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return health.ErrNoReport
	}
	return nil
}
