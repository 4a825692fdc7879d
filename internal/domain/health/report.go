package health

import (
	"context"
	"time"
)

// Report is the persisted outcome of one account-wide analysis. It is
// immutable once created except for EmailSent, which flips when the
// mailer delivers it.
type Report struct {
	ID           int
	AccountID    int
	GeneratedAt  time.Time
	OverallScore int
	WeakCount    int
	ReusedCount  int
	OldCount     int
	Detail       string
	EmailSent    bool
}

// Histogram buckets the credential set by strength score.
type Histogram struct {
	VeryStrong int // 90-100
	Strong     int // 70-89
	Medium     int // 50-69
	Weak       int // 25-49
	VeryWeak   int // 0-24
}

// Result carries the persisted report plus the raw aggregates the
// presentation layer needs and the database does not keep.
type Result struct {
	Report          Report
	Total           int
	AverageStrength int
	Histogram       Histogram
}

type Repository interface {
	Create(ctx context.Context, rep *Report) (int, error)
	// Latest returns the most recent report for the account, or
	// ErrNoReport when none exists.
	Latest(ctx context.Context, accountID int) (Report, error)
	MarkEmailSent(ctx context.Context, id int) error
}
