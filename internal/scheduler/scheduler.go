// Package scheduler drives periodic health report generation and
// delivery. A single background ticker fans out to one goroutine per
// account; no account's failure can cancel the run or block the
// foreground path.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"credvault/internal/domain/account"
	"credvault/internal/domain/health"
	"credvault/internal/mail"

	"golang.org/x/exp/slog"
)

type AccountSource interface {
	ListWithEmail(ctx context.Context) ([]account.Account, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, accountID int) (health.Result, error)
}

type Reports interface {
	Latest(ctx context.Context, accountID int) (health.Report, error)
	MarkEmailSent(ctx context.Context, id int) error
}

type Scheduler struct {
	accounts AccountSource
	reports  Reports
	analyzer Analyzer
	mailer   mail.Mailer
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func New(accounts AccountSource, reports Reports, analyzer Analyzer, mailer mail.Mailer, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		accounts: accounts,
		reports:  reports,
		analyzer: analyzer,
		mailer:   mailer,
		interval: interval,
		log:      log.With("component", "report_scheduler"),
		now:      time.Now,
	}
}

// Run executes an immediate pass, then one per interval. It blocks
// until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("report scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce processes every account with a configured email address in
// parallel and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	accounts, err := s.accounts.ListWithEmail(ctx)
	if err != nil {
		s.log.Error("failed to list accounts", "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, acc := range accounts {
		wg.Add(1)
		go func(acc account.Account) {
			defer wg.Done()
			if err := s.processAccount(ctx, acc); err != nil {
				s.log.Error("report run failed", "account_id", acc.ID, "error", err)
			}
		}(acc)
	}
	wg.Wait()
}

// processAccount decides per account: retry an unsent report, generate
// a new one when due, or do nothing.
func (s *Scheduler) processAccount(ctx context.Context, acc account.Account) error {
	last, err := s.reports.Latest(ctx, acc.ID)
	switch {
	case errors.Is(err, health.ErrNoReport):
		return s.generateAndSend(ctx, acc)
	case err != nil:
		return err
	case !last.EmailSent:
		// A previous delivery failed; the report is still valid, so
		// retry it before considering a new one.
		return s.send(ctx, acc, last)
	case IsDue(acc.ReportFrequency, last.GeneratedAt, s.now()):
		return s.generateAndSend(ctx, acc)
	}

	return nil
}

func (s *Scheduler) generateAndSend(ctx context.Context, acc account.Account) error {
	res, err := s.analyzer.Analyze(ctx, acc.ID)
	if errors.Is(err, health.ErrNoCredentials) {
		s.log.Info("nothing to analyze", "account_id", acc.ID)
		return nil
	}
	if err != nil {
		return err
	}

	return s.send(ctx, acc, res.Report)
}

func (s *Scheduler) send(ctx context.Context, acc account.Account, rep health.Report) error {
	subject, body, err := mail.RenderReport(rep)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, acc.Email, subject, body); err != nil {
		// The report stays persisted with email_sent=false and is
		// retried on a later tick.
		return err
	}

	return s.reports.MarkEmailSent(ctx, rep.ID)
}

// IsDue reports whether a new report should be generated given the
// account's frequency and the previous report time. Monthly and
// quarterly intervals follow the calendar, not fixed day counts.
func IsDue(freq account.ReportFrequency, lastGeneratedAt, now time.Time) bool {
	var next time.Time
	switch freq {
	case account.FrequencyWeekly:
		next = lastGeneratedAt.AddDate(0, 0, 7)
	case account.FrequencyMonthly:
		next = lastGeneratedAt.AddDate(0, 1, 0)
	case account.FrequencyQuarterly:
		next = lastGeneratedAt.AddDate(0, 3, 0)
	default:
		return false
	}

	return now.After(next)
}
