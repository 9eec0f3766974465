package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	foldCaser       = cases.Fold()
)

// Fold returns s case-folded and NFKC-normalized for case-insensitive matching.
// "ÁSHA" and "ásha" fold to the same string.
func Fold(s string) string {
	return norm.NFKC.String(foldCaser.String(strings.TrimSpace(s)))
}

// ContainsFold reports whether needle is a case-insensitive substring of haystack.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	needle = Fold(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), needle)
}

// Slugify converts a string to a URL-safe slug.
// "Tech Sprint 2025" -> "tech-sprint-2025".
// "Café Night/Demo" -> "cafe-night-demo".
func Slugify(s string) string {
	// Decompose accented characters, then drop everything non-ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
