package health

import (
	"strings"
	"unicode"
)

// Score rates a plaintext password 0-100: up to 40 points for length
// (3 per character), 10 each for lowercase, uppercase, digit and
// symbol presence, and up to 20 for avoiding trivial structure. Pure
// and deterministic.
func Score(password string) int {
	if password == "" {
		return 0
	}

	score := min(len(password)*3, 40)

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if present {
			score += 10
		}
	}

	if !strings.Contains(password, "123") && !strings.Contains(password, "abc") {
		score += 5
	}
	if hasLower && hasUpper {
		score += 5
	}
	hasLetter := hasLower || hasUpper
	if hasLetter && hasDigit {
		score += 5
	}
	if (hasLetter || hasDigit) && hasSymbol {
		score += 5
	}

	return score
}

// add assigns a score to its histogram bucket.
func (h *Histogram) add(score int) {
	switch {
	case score >= 90:
		h.VeryStrong++
	case score >= 70:
		h.Strong++
	case score >= 50:
		h.Medium++
	case score >= 25:
		h.Weak++
	default:
		h.VeryWeak++
	}
}
