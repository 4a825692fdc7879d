// Package session issues and validates the tokens the browser
// extension presents to the loopback gateway. Tokens are HMAC-signed,
// carry an expiry and are scoped to the extension audience, so a
// leaked or guessed string cannot pass validation.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// AudienceExtension is the only audience the gateway accepts.
const AudienceExtension = "extension"

type Servicer interface {
	Issue(accountID int) (string, error)
	Validate(token string) (int, error)
}

type claims struct {
	ID        string `json:"jti"`
	Audience  string `json:"aud"`
	AccountID int    `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

type Service struct {
	secret []byte
	ttl    time.Duration
	log    *slog.Logger
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		log:    log.With("component", "session_service"),
		now:    time.Now,
	}
}

// Issue mints a token for the account, valid for the configured TTL.
func (s *Service) Issue(accountID int) (string, error) {
	c := claims{
		ID:        uuid.NewString(),
		Audience:  AudienceExtension,
		AccountID: accountID,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + s.sign(encoded), nil
}

// Validate checks signature, audience and expiry and returns the
// account the token was issued to. Every failure is ErrInvalidToken;
// the signature check is constant time.
func (s *Service) Validate(token string) (int, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return 0, ErrInvalidToken
	}

	if !hmac.Equal([]byte(s.sign(encoded)), []byte(sig)) {
		return 0, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, ErrInvalidToken
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return 0, ErrInvalidToken
	}

	if c.Audience != AudienceExtension {
		return 0, ErrInvalidToken
	}
	if s.now().Unix() >= c.ExpiresAt {
		return 0, ErrInvalidToken
	}

	return c.AccountID, nil
}

func (s *Service) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
