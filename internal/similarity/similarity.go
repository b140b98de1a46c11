// Package similarity provides string-distance confidence scoring for
// matching search results against library metadata.
package similarity

import (
	"strings"
	"unicode"
)

// Score calculates how closely two strings match using Levenshtein distance.
// Returns a value between 0 and 1, where 1 means identical. Comparison is
// case-insensitive. Two empty strings are considered identical.
func Score(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}

	runesA := []rune(a)
	runesB := []rune(b)

	maxLen := max(len(runesA), len(runesB))
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein(runesA, runesB)

	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshtein calculates the edit distance between two rune slices using
// unit-cost insertion, deletion and substitution.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two-row matrix is enough
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// ScoreNormalized scores two strings after running both through Normalize.
// Preferred when comparing against catalog results, whose titles carry
// release suffixes and punctuation the query rarely has.
func ScoreNormalized(a, b string) float64 {
	return Score(Normalize(a), Normalize(b))
}

// Normalize prepares a string for comparison beyond plain lowercasing:
// removes punctuation, collapses whitespace, and strips common release
// suffixes that cause mismatches between catalogs.
func Normalize(s string) string {
	s = strings.ToLower(s)

	s = strings.TrimSuffix(s, " (remastered)")
	s = strings.TrimSuffix(s, " (remaster)")
	s = strings.TrimSuffix(s, " - remastered")
	s = strings.TrimSuffix(s, " [remastered]")
	s = strings.TrimSuffix(s, " (deluxe edition)")
	s = strings.TrimSuffix(s, " (deluxe)")

	var result strings.Builder
	lastWasSpace := true // start true to trim leading spaces

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			lastWasSpace = false
		} else if unicode.IsSpace(r) || r == '-' || r == '_' {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		}
		// Skip other punctuation
	}

	return strings.TrimSpace(result.String())
}
