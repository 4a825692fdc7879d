package account

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"credvault/internal/domain/totp"

	"golang.org/x/exp/slog"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
	backupCodeSet  = 10
)

// totpIssuer labels provisioning URLs in authenticator setup.
const totpIssuer = "CredVault"

type Servicer interface {
	Register(ctx context.Context, username, password string) (int, error)
	Authenticate(ctx context.Context, username, password, secondFactor string) (Account, error)
	EnableTotp(ctx context.Context, id int) (TotpSetup, error)
	DisableTotp(ctx context.Context, id int) error
	SetEmail(ctx context.Context, id int, email string) error
	SetReportFrequency(ctx context.Context, id int, freq ReportFrequency) error
}

// TotpSetup carries everything the owner needs to finish second-factor
// enrollment. Backup codes are returned exactly once.
type TotpSetup struct {
	Secret          string
	ProvisioningURL string
	BackupCodes     []string
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "account_service"),
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (int, error) {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return 0, fmt.Errorf("%w: username must be %d-%d characters", ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return 0, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return 0, err
	}
	digest, err := HashPassword(password, salt)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, &Account{
		Username:        username,
		PasswordHash:    digest,
		Salt:            salt,
		ReportFrequency: FrequencyMonthly,
	})
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account registered", "account_id", id)
	return id, nil
}

// Authenticate verifies the login secret and, when the second factor
// is enabled, a TOTP code or backup code. Every failure reports
// ErrInvalidAuth so the caller cannot tell which check rejected.
func (s *Service) Authenticate(ctx context.Context, username, password, secondFactor string) (Account, error) {
	acc, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return Account{}, ErrInvalidAuth
	}

	if !VerifyPassword(password, acc.Salt, acc.PasswordHash) {
		return Account{}, ErrInvalidAuth
	}

	if acc.TotpEnabled {
		if !s.checkSecondFactor(ctx, acc, secondFactor) {
			return Account{}, ErrInvalidAuth
		}
	}

	now := time.Now()
	if err := s.repo.SetLastLogin(ctx, acc.ID, now); err != nil {
		s.log.Error("failed to record login time", "account_id", acc.ID, "error", err)
	}
	acc.LastLogin = &now

	return acc, nil
}

func (s *Service) checkSecondFactor(ctx context.Context, acc Account, code string) bool {
	if code == "" {
		return false
	}

	if totp.Validate(acc.TotpSecret, code, time.Now()) {
		return true
	}

	consumed, err := s.repo.ConsumeBackupCode(ctx, acc.ID, code)
	if err != nil {
		s.log.Error("backup code check failed", "account_id", acc.ID, "error", err)
		return false
	}
	if consumed {
		s.log.Info("backup code consumed", "account_id", acc.ID)
	}
	return consumed
}

func (s *Service) EnableTotp(ctx context.Context, id int) (TotpSetup, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return TotpSetup{}, err
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return TotpSetup{}, err
	}

	codes, err := totp.GenerateBackupCodes(backupCodeSet)
	if err != nil {
		return TotpSetup{}, err
	}

	// Codes go in first: if storing them fails the account is left
	// without the second factor, never locked behind one with no
	// recovery codes.
	backup := make([]BackupCode, len(codes))
	for i, c := range codes {
		backup[i] = BackupCode{Code: c}
	}
	if err := s.repo.ReplaceBackupCodes(ctx, id, backup); err != nil {
		return TotpSetup{}, fmt.Errorf("store backup codes: %w", err)
	}

	if err := s.repo.SetTotp(ctx, id, secret, true); err != nil {
		return TotpSetup{}, fmt.Errorf("enable totp: %w", err)
	}

	s.log.Info("second factor enabled", "account_id", id)

	return TotpSetup{
		Secret:          secret,
		ProvisioningURL: totp.ProvisioningURL(totpIssuer, acc.Username, secret),
		BackupCodes:     codes,
	}, nil
}

func (s *Service) DisableTotp(ctx context.Context, id int) error {
	if err := s.repo.SetTotp(ctx, id, "", false); err != nil {
		return fmt.Errorf("disable totp: %w", err)
	}
	if err := s.repo.ReplaceBackupCodes(ctx, id, nil); err != nil {
		return fmt.Errorf("clear backup codes: %w", err)
	}

	s.log.Info("second factor disabled", "account_id", id)
	return nil
}

func (s *Service) SetEmail(ctx context.Context, id int, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.repo.SetEmail(ctx, id, email)
}

func (s *Service) SetReportFrequency(ctx context.Context, id int, freq ReportFrequency) error {
	if !freq.Valid() {
		return fmt.Errorf("%w: unknown report frequency %q", ErrInvalidInput, freq)
	}
	return s.repo.SetReportFrequency(ctx, id, freq)
}
