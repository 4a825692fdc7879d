package credential

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// Cipher is the slice of the credential cipher this service needs:
// encrypt on the write path, decrypt when serving the extension.
type Cipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(blob string) ([]byte, error)
}

type Servicer interface {
	Store(ctx context.Context, cred *Credential, password string) (int, error)
	FindForOrigin(ctx context.Context, accountID int, origin string) ([]PlainCredential, error)
	UpdateUsage(ctx context.Context, accountID, id int) error
	SetAutoFill(ctx context.Context, accountID, id int, enabled bool) error
	SetURLPattern(ctx context.Context, accountID, id int, pattern string) error
}

type Service struct {
	repo   Repository
	cipher Cipher
	log    *slog.Logger
}

func NewService(repo Repository, cipher Cipher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
		log:    log.With("component", "credential_service"),
	}
}

// Store encrypts the password and persists the credential. The
// plaintext is gone once this returns.
func (s *Service) Store(ctx context.Context, cred *Credential, password string) (int, error) {
	if cred.Origin == "" || cred.AccountName == "" {
		return 0, fmt.Errorf("%w: origin and account name are required", ErrInvalidInput)
	}

	blob, err := s.cipher.Encrypt([]byte(password))
	if err != nil {
		return 0, fmt.Errorf("encrypt credential: %w", err)
	}
	cred.EncryptedPassword = blob

	id, err := s.repo.Create(ctx, cred)
	if err != nil {
		return 0, fmt.Errorf("create credential: %w", err)
	}

	s.log.Info("credential stored", "credential_id", id, "account_id", cred.AccountID)
	return id, nil
}

// FindForOrigin matches, orders and decrypts the account's
// credentials for one requested origin. A credential that fails to
// decrypt is skipped so one bad record cannot break the response.
func (s *Service) FindForOrigin(ctx context.Context, accountID int, origin string) ([]PlainCredential, error) {
	creds, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	matched := FindCandidates(origin, creds)

	out := make([]PlainCredential, 0, len(matched))
	for _, c := range matched {
		plaintext, err := s.cipher.Decrypt(c.EncryptedPassword)
		if err != nil {
			s.log.Warn("skipping undecryptable credential",
				"credential_id", c.ID, "account_id", accountID)
			continue
		}
		out = append(out, PlainCredential{
			ID:          c.ID,
			AccountName: c.AccountName,
			Password:    string(plaintext),
		})
	}

	return out, nil
}

func (s *Service) UpdateUsage(ctx context.Context, accountID, id int) error {
	return s.repo.TouchUsage(ctx, accountID, id, time.Now())
}

func (s *Service) SetAutoFill(ctx context.Context, accountID, id int, enabled bool) error {
	return s.repo.SetAutoFill(ctx, accountID, id, enabled)
}

func (s *Service) SetURLPattern(ctx context.Context, accountID, id int, pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("%w: pattern must not be empty", ErrInvalidInput)
	}
	return s.repo.SetURLPattern(ctx, accountID, id, pattern)
}
