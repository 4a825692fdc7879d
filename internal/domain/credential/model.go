package credential

import "time"

// Credential is one stored login for a web origin. EncryptedPassword
// is only ever written by the cipher's Encrypt and read back through
// its Decrypt; plaintext never appears on this struct.
type Credential struct {
	ID                int
	AccountID         int
	Origin            string
	AccountName       string
	EncryptedPassword string
	URLPattern        string // empty means exact-origin matching only
	AutoFillEnabled   bool
	LastUsed          *time.Time
	StrengthScore     *int // nil until the analyzer has scored it
	CreatedAt         time.Time
}

// PlainCredential is the decrypted shape served to the extension. It
// exists only while a gateway response is being built.
type PlainCredential struct {
	ID          int    `json:"id"`
	AccountName string `json:"account_name"`
	Password    string `json:"password"`
}
