// Package similarity scores pairs of source files for plagiarism review.
package similarity

import (
	"regexp"
	"strings"
)

const (
	MethodJaccard     = "Jaccard"
	MethodLevenshtein = "Levenshtein"

	ngramSize = 3
)

var (
	blockComment = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	lineComment  = regexp.MustCompile(`(?m)//.*$`)
	whitespace   = regexp.MustCompile(`\s+`)
	punctuation  = regexp.MustCompile(`[{}();,]`)
)

type Result struct {
	Jaccard     float64 `json:"jaccard"`
	Levenshtein float64 `json:"levenshtein"`
	Overall     float64 `json:"overall"`
	Method      string  `json:"method"`
}

// Normalize strips comments, collapses whitespace, drops punctuation and lowercases.
func Normalize(code string) string {
	s := blockComment.ReplaceAllString(code, "")
	s = lineComment.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = punctuation.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ToLower(s))
}

func ngrams(s string, n int) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// Jaccard compares rune 3-grams of the normalized inputs.
func Jaccard(a, b string) float64 {
	ga, gb := ngrams(Normalize(a), ngramSize), ngrams(Normalize(b), ngramSize)

	inter := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			inter++
		}
	}
	union := len(ga) + len(gb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Levenshtein returns 1 - editDistance/maxLen over the raw inputs.
func Levenshtein(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(maxLen)
}

func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func Compare(a, b string) Result {
	r := Result{Jaccard: Jaccard(a, b), Levenshtein: Levenshtein(a, b)}
	if r.Jaccard >= r.Levenshtein {
		r.Overall, r.Method = r.Jaccard, MethodJaccard
	} else {
		r.Overall, r.Method = r.Levenshtein, MethodLevenshtein
	}
	return r
}
