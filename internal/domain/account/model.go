package account

import "time"

// ReportFrequency controls how often the health scheduler produces a
// report for the account.
type ReportFrequency string

const (
	FrequencyWeekly    ReportFrequency = "WEEKLY"
	FrequencyMonthly   ReportFrequency = "MONTHLY"
	FrequencyQuarterly ReportFrequency = "QUARTERLY"
)

// Valid reports whether f is one of the known frequencies.
func (f ReportFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}
	return false
}

type Account struct {
	ID              int
	Username        string
	PasswordHash    string // argon2id digest, base64
	Salt            string // base64
	TotpSecret      string // base64, empty when second factor is off
	TotpEnabled     bool
	Email           string
	ReportFrequency ReportFrequency
	LastLogin       *time.Time
	CreatedAt       time.Time
}

// BackupCode is a single-use second-factor recovery code.
type BackupCode struct {
	Code     string
	Consumed bool
}
