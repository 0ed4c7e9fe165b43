package matcher

import (
	"strings"
	"unicode"
)

// NormalizeDescription canonicalizes a free-text transaction description for
// comparison: lowercase, strip every rune that is not a letter, digit or
// whitespace, collapse whitespace runs to a single space, and trim.
func NormalizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// EditDistance computes the classic Levenshtein distance between two strings
// with unit insert, delete and substitute costs, using the two-row dynamic
// programming formulation. Comparison is rune-based so multi-byte characters
// count as single edits.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// descriptionSimilarity returns the description sub-score in [0, 1] for two
// already-normalized descriptions.
//
// An empty description carries no information, so it earns no credit even
// against another empty description; otherwise two empty-description records
// could score near 100 from non-informative fields alone.
func descriptionSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	if a == b {
		return 1.0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	distance := EditDistance(a, b)
	if distance >= maxLen {
		return 0.0
	}

	return float64(maxLen-distance) / float64(maxLen)
}
