package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"credvault/internal/domain/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, acc *Account) (int, error) {
	args := m.Called(ctx, acc)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Account), args.Error(1)
}

func (m *MockRepository) FindByUsername(ctx context.Context, username string) (Account, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(Account), args.Error(1)
}

func (m *MockRepository) ListWithEmail(ctx context.Context) ([]Account, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Account), args.Error(1)
}

func (m *MockRepository) SetEmail(ctx context.Context, id int, email string) error {
	return m.Called(ctx, id, email).Error(0)
}

func (m *MockRepository) SetReportFrequency(ctx context.Context, id int, freq ReportFrequency) error {
	return m.Called(ctx, id, freq).Error(0)
}

func (m *MockRepository) SetTotp(ctx context.Context, id int, secret string, enabled bool) error {
	return m.Called(ctx, id, secret, enabled).Error(0)
}

func (m *MockRepository) SetLastLogin(ctx context.Context, id int, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRepository) ReplaceBackupCodes(ctx context.Context, id int, codes []BackupCode) error {
	return m.Called(ctx, id, codes).Error(0)
}

func (m *MockRepository) ConsumeBackupCode(ctx context.Context, id int, code string) (bool, error) {
	args := m.Called(ctx, id, code)
	return args.Bool(0), args.Error(1)
}

func storedAccount(t *testing.T, password string, totpEnabled bool, secret string) Account {
	t.Helper()

	salt, err := GenerateSalt()
	require.NoError(t, err)
	digest, err := HashPassword(password, salt)
	require.NoError(t, err)

	return Account{
		ID:           1,
		Username:     "alice",
		PasswordHash: digest,
		Salt:         salt,
		TotpSecret:   secret,
		TotpEnabled:  totpEnabled,
	}
}

func TestService_Register(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(acc *Account) bool {
		return acc.Username == "alice" &&
			acc.Salt != "" &&
			acc.PasswordHash != "" &&
			acc.ReportFrequency == FrequencyMonthly
	})).Return(1, nil)

	id, err := svc.Register(context.Background(), "alice", "long-enough-pw")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	repo.AssertExpectations(t)
}

func TestService_Register_Invalid(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "short username", username: "al", password: "long-enough-pw"},
		{name: "short password", username: "alice", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	acc := storedAccount(t, "correct horse", false, "")

	repo.On("FindByUsername", mock.Anything, "alice").Return(acc, nil)
	repo.On("SetLastLogin", mock.Anything, 1, mock.AnythingOfType("time.Time")).Return(nil)

	got, err := svc.Authenticate(context.Background(), "alice", "correct horse", "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
	assert.NotNil(t, got.LastLogin)
	repo.AssertExpectations(t)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	acc := storedAccount(t, "correct horse", false, "")

	repo.On("FindByUsername", mock.Anything, "alice").Return(acc, nil)

	_, err := svc.Authenticate(context.Background(), "alice", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidAuth)
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("FindByUsername", mock.Anything, "nobody").Return(Account{}, ErrNotFound)

	_, err := svc.Authenticate(context.Background(), "nobody", "whatever", "")
	assert.ErrorIs(t, err, ErrInvalidAuth)
}

func TestService_Authenticate_Totp(t *testing.T) {
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	acc := storedAccount(t, "correct horse", true, secret)

	repo.On("FindByUsername", mock.Anything, "alice").Return(acc, nil)
	repo.On("SetLastLogin", mock.Anything, 1, mock.AnythingOfType("time.Time")).Return(nil)

	code, err := totp.Code(secret, time.Now())
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "alice", "correct horse", code)
	assert.NoError(t, err)
}

func TestService_Authenticate_TotpMissingCode(t *testing.T) {
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	acc := storedAccount(t, "correct horse", true, secret)

	repo.On("FindByUsername", mock.Anything, "alice").Return(acc, nil)

	_, err = svc.Authenticate(context.Background(), "alice", "correct horse", "")
	assert.ErrorIs(t, err, ErrInvalidAuth)
}

func TestService_Authenticate_BackupCode(t *testing.T) {
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	acc := storedAccount(t, "correct horse", true, secret)

	repo.On("FindByUsername", mock.Anything, "alice").Return(acc, nil)
	repo.On("ConsumeBackupCode", mock.Anything, 1, "123456789").Return(true, nil)
	repo.On("SetLastLogin", mock.Anything, 1, mock.AnythingOfType("time.Time")).Return(nil)

	_, err = svc.Authenticate(context.Background(), "alice", "correct horse", "123456789")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Authenticate_BackupCodeAlreadyConsumed(t *testing.T) {
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	acc := storedAccount(t, "correct horse", true, secret)

	repo.On("FindByUsername", mock.Anything, "alice").Return(acc, nil)
	repo.On("ConsumeBackupCode", mock.Anything, 1, "123456789").Return(false, nil)

	_, err = svc.Authenticate(context.Background(), "alice", "correct horse", "123456789")
	assert.ErrorIs(t, err, ErrInvalidAuth)
}

func TestService_EnableTotp(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("FindByID", mock.Anything, 1).Return(Account{ID: 1, Username: "alice"}, nil)
	repo.On("SetTotp", mock.Anything, 1, mock.MatchedBy(func(secret string) bool {
		return secret != ""
	}), true).Return(nil)
	repo.On("ReplaceBackupCodes", mock.Anything, 1, mock.MatchedBy(func(codes []BackupCode) bool {
		return len(codes) == 10
	})).Return(nil)

	setup, err := svc.EnableTotp(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Len(t, setup.BackupCodes, 10)
	assert.Contains(t, setup.ProvisioningURL, "otpauth://totp/")
	repo.AssertExpectations(t)
}

func TestService_EnableTotp_BackupCodeStoreFails(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("FindByID", mock.Anything, 1).Return(Account{ID: 1, Username: "alice"}, nil)
	repo.On("ReplaceBackupCodes", mock.Anything, 1, mock.Anything).Return(errors.New("boom"))

	_, err := svc.EnableTotp(context.Background(), 1)
	require.Error(t, err)

	// The flag must stay off when the codes were never stored.
	repo.AssertNotCalled(t, "SetTotp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetEmail_Invalid(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	err := svc.SetEmail(context.Background(), 1, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_SetReportFrequency(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("SetReportFrequency", mock.Anything, 1, FrequencyWeekly).Return(nil)
	require.NoError(t, svc.SetReportFrequency(context.Background(), 1, FrequencyWeekly))

	err := svc.SetReportFrequency(context.Background(), 1, ReportFrequency("DAILY"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	var storageErr = errors.New("boom")
	repo.On("SetReportFrequency", mock.Anything, 2, FrequencyMonthly).Return(storageErr)
	err = svc.SetReportFrequency(context.Background(), 2, FrequencyMonthly)
	assert.ErrorIs(t, err, storageErr)
}
