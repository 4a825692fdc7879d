package credential

import (
	"sort"
	"strings"
	"time"
)

// Matches decides whether a credential applies to the requested
// origin. Without a pattern it is exact equality against the stored
// origin; with a pattern, % is a multi-character wildcard over the
// whole origin string (SQL LIKE semantics).
func Matches(requestedOrigin, storedOrigin, pattern string) bool {
	if pattern == "" {
		return requestedOrigin == storedOrigin
	}
	return likeMatch(requestedOrigin, pattern)
}

// FindCandidates returns the auto-fill-enabled credentials matching
// the requested origin, ordered deterministically: exact-origin
// matches before pattern matches, then most recently used first, then
// ascending id.
func FindCandidates(requestedOrigin string, creds []Credential) []Credential {
	var out []Credential
	for _, c := range creds {
		if !c.AutoFillEnabled {
			continue
		}
		if Matches(requestedOrigin, c.Origin, c.URLPattern) {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		aExact := a.Origin == requestedOrigin
		bExact := b.Origin == requestedOrigin
		if aExact != bExact {
			return aExact
		}

		au, bu := usedAt(a), usedAt(b)
		if !au.Equal(bu) {
			return au.After(bu)
		}

		return a.ID < b.ID
	})

	return out
}

// usedAt treats a never-used credential as the zero time so it sorts
// after everything that has been used.
func usedAt(c Credential) time.Time {
	if c.LastUsed == nil {
		return time.Time{}
	}
	return *c.LastUsed
}

// likeMatch implements LIKE with % only: split the pattern on %, the
// first chunk anchors the start, the last anchors the end, and the
// rest must appear in order between them.
func likeMatch(s, pattern string) bool {
	chunks := strings.Split(pattern, "%")
	if len(chunks) == 1 {
		return s == pattern
	}

	if first := chunks[0]; first != "" {
		if !strings.HasPrefix(s, first) {
			return false
		}
		s = s[len(first):]
	}

	last := chunks[len(chunks)-1]

	for _, chunk := range chunks[1 : len(chunks)-1] {
		if chunk == "" {
			continue
		}
		idx := strings.Index(s, chunk)
		if idx < 0 {
			return false
		}
		s = s[idx+len(chunk):]
	}

	return strings.HasSuffix(s, last)
}
