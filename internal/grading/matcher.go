package grading

import (
	"errors"
	"sort"
	"strings"
	"unicode"
)

// ErrBadKeywordConfig is returned when a keyword-scored question carries no
// usable keywords. Callers degrade the answer to manual fallback instead of
// failing the submission.
var ErrBadKeywordConfig = errors.New("keyword list is empty or blank")

// MatchResult is the output of a single matcher run. Found is ordered by
// first occurrence in the text, Missing keeps the configured keyword order.
type MatchResult struct {
	Found    []string `json:"found"`
	Missing  []string `json:"missing"`
	Fraction float64  `json:"fraction"`
}

// Match scans free text for the configured keywords. Matching is
// case-insensitive over whitespace-normalized text; a keyword counts as
// found when it occurs starting at a token boundary, so "recursion" matches
// "Recursions" but not "precursion". Pure and deterministic: no side
// effects, empty or whitespace-only text yields an empty Found set.
func Match(rawText string, keywords []string) (MatchResult, error) {
	normKeywords := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		nk := normalize(k)
		if nk == "" || seen[nk] {
			continue
		}
		seen[nk] = true
		normKeywords = append(normKeywords, nk)
	}
	if len(normKeywords) == 0 {
		return MatchResult{}, ErrBadKeywordConfig
	}

	res := MatchResult{Found: []string{}, Missing: []string{}}
	text := normalize(rawText)
	if text == "" {
		res.Missing = append(res.Missing, normKeywords...)
		return res, nil
	}

	type hit struct {
		keyword string
		pos     int
	}
	var hits []hit
	for _, k := range normKeywords {
		if pos := indexAtBoundary(text, k); pos >= 0 {
			hits = append(hits, hit{keyword: k, pos: pos})
		} else {
			res.Missing = append(res.Missing, k)
		}
	}
	// First occurrence in the text wins ordering ties.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	for _, h := range hits {
		res.Found = append(res.Found, h.keyword)
	}

	res.Fraction = float64(len(res.Found)) / float64(len(normKeywords))
	return res, nil
}

// normalize lowercases and collapses runs of whitespace to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// indexAtBoundary returns the first index where sub occurs in s preceded by
// a non-alphanumeric rune (or the start of the string), -1 if absent.
func indexAtBoundary(s, sub string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			return -1
		}
		abs := offset + i
		if abs == 0 || !isWordRune(rune(s[abs-1])) {
			return abs
		}
		offset = abs + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
