// Package totp implements the time-based one-time codes used as the
// account's second factor, plus the single-use backup codes.
//
// Secrets are stored and exchanged base64-encoded, not the Base32 of
// RFC 6238 convention. This matches the rest of the credential store's
// encodings but means the secrets are not importable into standard
// authenticator apps without transcoding; the provisioning URL below
// carries the base64 form.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net/url"
	"time"
)

const (
	// timeStep is the RFC 6238 interval.
	timeStep = 30 * time.Second
	// codeDigits is the length of a generated code.
	codeDigits = 6
	// secretLen is 160 bits, the RFC 4226 recommendation for SHA-1.
	secretLen = 20
	// backupCodeDigits is the length of a recovery code.
	backupCodeDigits = 9
)

// GenerateSecret returns a fresh 160-bit shared secret, base64-encoded.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretLen)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secret), nil
}

// Code computes the 6-digit code for the time step containing t.
func Code(secret string, t time.Time) (string, error) {
	return codeAt(secret, t.Unix()/int64(timeStep.Seconds()))
}

// Validate accepts a code that matches the current step or the step
// directly before or after, tolerating up to one step of clock skew.
// Comparison is constant time per candidate.
func Validate(secret, code string, now time.Time) bool {
	counter := now.Unix() / int64(timeStep.Seconds())

	for offset := int64(-1); offset <= 1; offset++ {
		candidate, err := codeAt(secret, counter+offset)
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(code)) == 1 {
			return true
		}
	}

	return false
}

// GenerateBackupCodes returns n independent random 9-digit codes.
func GenerateBackupCodes(n int) ([]string, error) {
	codes := make([]string, n)
	for i := range codes {
		v, err := randomUint32()
		if err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		codes[i] = fmt.Sprintf("%09d", v%1_000_000_000)
	}
	return codes, nil
}

// ProvisioningURL renders the otpauth:// URL consumed by QR setup.
func ProvisioningURL(issuer, username, secret string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(issuer),
		url.PathEscape(username),
		url.QueryEscape(secret),
		url.QueryEscape(issuer),
	)
}

// codeAt runs HMAC-SHA1 dynamic truncation (RFC 4226) for one counter.
func codeAt(secret string, counter int64) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("decode totp secret: %w", err)
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	return fmt.Sprintf("%0*d", codeDigits, truncated%1_000_000), nil
}

func randomUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
