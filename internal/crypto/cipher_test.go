package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyKeyMaterial(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "simple password", plaintext: "hunter2"},
		{name: "empty plaintext", plaintext: ""},
		{name: "unicode", plaintext: "пароль-密码-🔑"},
		{name: "long note body", plaintext: string(make([]byte, 4096))},
	}

	c, err := New("test-key-material")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.Encrypt([]byte(tt.plaintext))
			require.NoError(t, err)

			got, err := c.Decrypt(blob)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, string(got))
		})
	}
}

func TestCipher_NonceFreshness(t *testing.T) {
	c, err := New("test-key-material")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		blob, err := c.Encrypt([]byte("same plaintext"))
		require.NoError(t, err)
		assert.False(t, seen[blob], "two encryptions produced identical output")
		seen[blob] = true
	}
}

func TestCipher_WrongKey(t *testing.T) {
	c1, err := New("key-one")
	require.NoError(t, err)
	c2, err := New("key-two")
	require.NoError(t, err)

	blob, err := c1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = c2.Decrypt(blob)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestCipher_Decrypt_Malformed(t *testing.T) {
	c, err := New("test-key-material")
	require.NoError(t, err)

	tests := []struct {
		name string
		blob string
	}{
		{name: "not base64", blob: "%%%not-base64%%%"},
		{name: "too short for nonce", blob: "AAAA"},
		{name: "empty", blob: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.blob)
			assert.ErrorIs(t, err, ErrDecryptFailed)
		})
	}
}

func TestCipher_Decrypt_Tampered(t *testing.T) {
	c, err := New("test-key-material")
	require.NoError(t, err)

	blob, err := c.Encrypt([]byte("secret"))
	require.NoError(t, err)

	// Flip one character of the base64 payload.
	tampered := []byte(blob)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}

	_, err = c.Decrypt(string(tampered))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
