package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"credvault/internal/domain/credential"

	"golang.org/x/exp/slog"
)

// oldAfter is the age past which an unused credential counts as old.
const oldAfter = 90 * 24 * time.Hour

// weakBelow is the strength score under which a credential is weak.
const weakBelow = 70

// Decryptor is the read-only slice of the credential cipher the
// analyzer needs to compare plaintexts.
type Decryptor interface {
	Decrypt(blob string) ([]byte, error)
}

// Analyzer scores an account's whole credential set. The scan reads a
// point-in-time snapshot (one List query) and may run alongside
// gateway reads.
type Analyzer struct {
	creds   credential.Repository
	reports Repository
	cipher  Decryptor
	log     *slog.Logger
	now     func() time.Time
}

func NewAnalyzer(creds credential.Repository, reports Repository, cipher Decryptor, log *slog.Logger) *Analyzer {
	return &Analyzer{
		creds:   creds,
		reports: reports,
		cipher:  cipher,
		log:     log.With("component", "health_analyzer"),
		now:     time.Now,
	}
}

// Analyze decrypts every credential for the account, computes the
// weak/reused/old counts and the overall score, persists the report
// and returns it together with the aggregates the renderer needs.
// An account with nothing to analyze gets ErrNoCredentials, never a
// degenerate report.
func (a *Analyzer) Analyze(ctx context.Context, accountID int) (Result, error) {
	creds, err := a.creds.ListByAccount(ctx, accountID)
	if err != nil {
		return Result{}, fmt.Errorf("list credentials: %w", err)
	}
	if len(creds) == 0 {
		return Result{}, ErrNoCredentials
	}

	type entry struct {
		cred      credential.Credential
		plaintext string
		score     int
	}

	entries := make([]entry, 0, len(creds))
	counts := make(map[string]int)

	for _, c := range creds {
		plaintext, err := a.cipher.Decrypt(c.EncryptedPassword)
		if err != nil {
			// One bad record must not sink the whole analysis; it is
			// dropped here and surfaced in the log.
			a.log.Warn("skipping undecryptable credential",
				"credential_id", c.ID, "account_id", accountID)
			continue
		}

		e := entry{cred: c, plaintext: string(plaintext)}
		if c.StrengthScore != nil {
			e.score = *c.StrengthScore
		} else {
			e.score = Score(e.plaintext)
			if err := a.creds.SetStrengthScore(ctx, c.ID, e.score); err != nil {
				a.log.Error("failed to backfill strength score",
					"credential_id", c.ID, "error", err)
			}
		}

		counts[e.plaintext]++
		entries = append(entries, e)
	}

	total := len(entries)
	if total == 0 {
		return Result{}, ErrNoCredentials
	}

	var (
		weak, reused, old, totalStrength int
		hist                             Histogram
	)
	now := a.now()

	for _, e := range entries {
		if e.score < weakBelow {
			weak++
		}
		if counts[e.plaintext] >= 2 {
			reused++
		}
		if e.cred.LastUsed == nil || now.Sub(*e.cred.LastUsed) > oldAfter {
			old++
		}
		totalStrength += e.score
		hist.add(e.score)
	}

	strengthAvg := totalStrength / total
	reuseScore := 100 - reused*100/total
	weakScore := 100 - weak*100/total
	ageScore := 100 - old*100/total
	overall := (strengthAvg + reuseScore + weakScore + ageScore) / 4

	rep := Report{
		AccountID:    accountID,
		GeneratedAt:  now,
		OverallScore: overall,
		WeakCount:    weak,
		ReusedCount:  reused,
		OldCount:     old,
		Detail:       renderDetail(now, overall, total, weak, reused, old, hist),
	}

	id, err := a.reports.Create(ctx, &rep)
	if err != nil {
		return Result{}, fmt.Errorf("persist report: %w", err)
	}
	rep.ID = id

	a.log.Info("health report generated",
		"account_id", accountID, "overall_score", overall,
		"weak", weak, "reused", reused, "old", old)

	return Result{
		Report:          rep,
		Total:           total,
		AverageStrength: strengthAvg,
		Histogram:       hist,
	}, nil
}

// renderDetail builds the plain-text report body stored alongside the
// counts.
func renderDetail(at time.Time, overall, total, weak, reused, old int, hist Histogram) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Password Health Report for %s\n\n", at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Overall Security Score: %d%%\n\n", overall)
	fmt.Fprintf(&b, "Total passwords: %d\n", total)
	fmt.Fprintf(&b, "Weak passwords: %d\n", weak)
	fmt.Fprintf(&b, "Reused passwords: %d\n", reused)
	fmt.Fprintf(&b, "Passwords not used in 90+ days: %d\n\n", old)

	b.WriteString("Password Strength Breakdown:\n")
	fmt.Fprintf(&b, "- Very Strong: %d\n", hist.VeryStrong)
	fmt.Fprintf(&b, "- Strong: %d\n", hist.Strong)
	fmt.Fprintf(&b, "- Medium: %d\n", hist.Medium)
	fmt.Fprintf(&b, "- Weak: %d\n", hist.Weak)
	fmt.Fprintf(&b, "- Very Weak: %d\n\n", hist.VeryWeak)

	b.WriteString("Recommendations:\n")
	if weak > 0 {
		fmt.Fprintf(&b, "- Update %d weak passwords to improve security\n", weak)
	}
	if reused > 0 {
		fmt.Fprintf(&b, "- %d accounts share a password. Create unique passwords for each account.\n", reused)
	}
	if old > 0 {
		fmt.Fprintf(&b, "- %d passwords have not been used in over 90 days. Consider rotating them.\n", old)
	}
	if weak == 0 && reused == 0 && old == 0 {
		b.WriteString("- No issues found. Keep it up.\n")
	}

	return b.String()
}
