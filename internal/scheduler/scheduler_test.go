package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"credvault/internal/domain/account"
	"credvault/internal/domain/health"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockAccountSource struct {
	mock.Mock
}

func (m *MockAccountSource) ListWithEmail(ctx context.Context) ([]account.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).([]account.Account), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, accountID int) (health.Result, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(health.Result), args.Error(1)
}

type MockReports struct {
	mock.Mock
}

func (m *MockReports) Latest(ctx context.Context, accountID int) (health.Report, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(health.Report), args.Error(1)
}

func (m *MockReports) MarkEmailSent(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	return m.Called(ctx, to, subject, htmlBody).Error(0)
}

func TestIsDue(t *testing.T) {
	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		freq account.ReportFrequency
		last time.Time
		now  time.Time
		want bool
	}{
		{
			name: "weekly due after 8 days",
			freq: account.FrequencyWeekly,
			last: base,
			now:  base.AddDate(0, 0, 8),
			want: true,
		},
		{
			name: "weekly not due after 6 days",
			freq: account.FrequencyWeekly,
			last: base,
			now:  base.AddDate(0, 0, 6),
			want: false,
		},
		{
			name: "monthly follows the calendar",
			freq: account.FrequencyMonthly,
			last: base,
			now:  time.Date(2026, 2, 15, 12, 0, 1, 0, time.UTC),
			want: true,
		},
		{
			name: "monthly not due on day 30 of a 31-day gap",
			freq: account.FrequencyMonthly,
			last: base,
			now:  time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "quarterly due after three months",
			freq: account.FrequencyQuarterly,
			last: base,
			now:  time.Date(2026, 4, 15, 12, 0, 1, 0, time.UTC),
			want: true,
		},
		{
			name: "unknown frequency never due",
			freq: account.ReportFrequency("DAILY"),
			last: base,
			now:  base.AddDate(1, 0, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(tt.freq, tt.last, tt.now))
		})
	}
}

func newTestScheduler(accounts *MockAccountSource, reports *MockReports, analyzer *MockAnalyzer, mailer *MockMailer) *Scheduler {
	return New(accounts, reports, analyzer, mailer, time.Hour, slog.Default())
}

func testAccount() account.Account {
	return account.Account{
		ID:              1,
		Email:           "alice@example.com",
		ReportFrequency: account.FrequencyWeekly,
	}
}

func TestScheduler_GeneratesWhenNoPriorReport(t *testing.T) {
	accounts := new(MockAccountSource)
	reports := new(MockReports)
	analyzer := new(MockAnalyzer)
	mailer := new(MockMailer)
	s := newTestScheduler(accounts, reports, analyzer, mailer)

	accounts.On("ListWithEmail", mock.Anything).Return([]account.Account{testAccount()}, nil)
	reports.On("Latest", mock.Anything, 1).Return(health.Report{}, health.ErrNoReport)
	analyzer.On("Analyze", mock.Anything, 1).Return(health.Result{
		Report: health.Report{ID: 9, AccountID: 1, OverallScore: 80, EmailSent: false},
	}, nil)
	mailer.On("Send", mock.Anything, "alice@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	reports.On("MarkEmailSent", mock.Anything, 9).Return(nil)

	s.RunOnce(context.Background())

	analyzer.AssertExpectations(t)
	mailer.AssertExpectations(t)
	reports.AssertExpectations(t)
}

func TestScheduler_SkipsWhenNotDue(t *testing.T) {
	accounts := new(MockAccountSource)
	reports := new(MockReports)
	analyzer := new(MockAnalyzer)
	mailer := new(MockMailer)
	s := newTestScheduler(accounts, reports, analyzer, mailer)

	accounts.On("ListWithEmail", mock.Anything).Return([]account.Account{testAccount()}, nil)
	reports.On("Latest", mock.Anything, 1).Return(health.Report{
		ID:          5,
		GeneratedAt: time.Now().AddDate(0, 0, -1),
		EmailSent:   true,
	}, nil)

	s.RunOnce(context.Background())

	analyzer.AssertNotCalled(t, "Analyze")
	mailer.AssertNotCalled(t, "Send")
}

func TestScheduler_RetriesUnsentReport(t *testing.T) {
	accounts := new(MockAccountSource)
	reports := new(MockReports)
	analyzer := new(MockAnalyzer)
	mailer := new(MockMailer)
	s := newTestScheduler(accounts, reports, analyzer, mailer)

	accounts.On("ListWithEmail", mock.Anything).Return([]account.Account{testAccount()}, nil)
	reports.On("Latest", mock.Anything, 1).Return(health.Report{
		ID:          5,
		GeneratedAt: time.Now().AddDate(0, 0, -1),
		EmailSent:   false,
	}, nil)
	mailer.On("Send", mock.Anything, "alice@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	reports.On("MarkEmailSent", mock.Anything, 5).Return(nil)

	s.RunOnce(context.Background())

	// The stale unsent report is re-delivered, not regenerated.
	analyzer.AssertNotCalled(t, "Analyze")
	mailer.AssertExpectations(t)
	reports.AssertExpectations(t)
}

func TestScheduler_MailFailureLeavesReportUnsent(t *testing.T) {
	accounts := new(MockAccountSource)
	reports := new(MockReports)
	analyzer := new(MockAnalyzer)
	mailer := new(MockMailer)
	s := newTestScheduler(accounts, reports, analyzer, mailer)

	accounts.On("ListWithEmail", mock.Anything).Return([]account.Account{testAccount()}, nil)
	reports.On("Latest", mock.Anything, 1).Return(health.Report{}, health.ErrNoReport)
	analyzer.On("Analyze", mock.Anything, 1).Return(health.Result{
		Report: health.Report{ID: 9, AccountID: 1},
	}, nil)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	s.RunOnce(context.Background())

	reports.AssertNotCalled(t, "MarkEmailSent")
}

func TestScheduler_NoCredentialsIsNotAnError(t *testing.T) {
	accounts := new(MockAccountSource)
	reports := new(MockReports)
	analyzer := new(MockAnalyzer)
	mailer := new(MockMailer)
	s := newTestScheduler(accounts, reports, analyzer, mailer)

	accounts.On("ListWithEmail", mock.Anything).Return([]account.Account{testAccount()}, nil)
	reports.On("Latest", mock.Anything, 1).Return(health.Report{}, health.ErrNoReport)
	analyzer.On("Analyze", mock.Anything, 1).Return(health.Result{}, health.ErrNoCredentials)

	s.RunOnce(context.Background())

	mailer.AssertNotCalled(t, "Send")
}

func TestScheduler_OneFailureDoesNotStopOthers(t *testing.T) {
	accounts := new(MockAccountSource)
	reports := new(MockReports)
	analyzer := new(MockAnalyzer)
	mailer := new(MockMailer)
	s := newTestScheduler(accounts, reports, analyzer, mailer)

	first := testAccount()
	second := account.Account{ID: 2, Email: "bob@example.com", ReportFrequency: account.FrequencyWeekly}

	accounts.On("ListWithEmail", mock.Anything).Return([]account.Account{first, second}, nil)
	reports.On("Latest", mock.Anything, 1).Return(health.Report{}, errors.New("storage down"))
	reports.On("Latest", mock.Anything, 2).Return(health.Report{}, health.ErrNoReport)
	analyzer.On("Analyze", mock.Anything, 2).Return(health.Result{
		Report: health.Report{ID: 10, AccountID: 2},
	}, nil)
	mailer.On("Send", mock.Anything, "bob@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	reports.On("MarkEmailSent", mock.Anything, 10).Return(nil)

	s.RunOnce(context.Background())

	mailer.AssertExpectations(t)
	reports.AssertExpectations(t)
}
