package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

const (
	// ScoreExact is the relevance of a field equal to the query
	ScoreExact = 100
	// ScorePrefix is the relevance of a field starting with the query
	ScorePrefix = 90
	// ScoreSubstring is the relevance of a field containing the query
	ScoreSubstring = 70

	wordContainsScore   = 30  // text word contains query word
	wordContainedScore  = 20  // query word contains text word
	similarWordWeight   = 25  // multiplier for similar words
	similarityThreshold = 0.6 // words must be strictly more similar than this
	maxScore            = 100.0
)

// Similarity returns the normalized Levenshtein similarity of a and b in [0,1].
// Two empty strings are identical, one empty string is entirely different.
// Comparison is case-sensitive and counts runes, not bytes.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}

	maxLen := max(la, lb)
	dist := edlib.LevenshteinDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// Score rates how well text matches query, from 0 to 100.
// Matching is case-insensitive; exact, prefix and substring matches short-circuit,
// anything else falls back to word-level fuzzy matching.
func Score(query, text string) int {
	q := strings.TrimSpace(strings.ToLower(query))
	t := strings.ToLower(text)
	if q == "" || t == "" {
		return 0
	}

	switch {
	case t == q:
		return ScoreExact
	case strings.HasPrefix(t, q):
		return ScorePrefix
	case strings.Contains(t, q):
		return ScoreSubstring
	}

	return fuzzyScore(strings.Fields(q), strings.Fields(t))
}

// fuzzyScore accumulates word-pair scores over every query/text word pair, capped at 100
func fuzzyScore(queryWords, textWords []string) int {
	var total float64
	for _, qw := range queryWords {
		for _, tw := range textWords {
			switch {
			case strings.Contains(tw, qw):
				total += wordContainsScore
			case strings.Contains(qw, tw):
				total += wordContainedScore
			default:
				if sim := Similarity(qw, tw); sim > similarityThreshold {
					total += sim * similarWordWeight
				}
			}
		}
	}
	return int(math.Round(math.Min(total, maxScore)))
}
