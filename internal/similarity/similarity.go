// Package similarity scores textual overlap between question strings. It is
// used both to filter near-duplicate cached questions out of a batch and to
// reject freshly generated questions that restate something already in the
// pool.
package similarity

import (
	"strings"
	"unicode"
)

// Threshold is the duplicate cutoff used throughout the system: scores at or
// above it mean "treat as duplicate".
const Threshold = 0.7

// Blend weights for Score. Token-set Jaccard carries most of the signal;
// character bigrams tolerate particle/ending changes in Korean text where
// whole-word matching is too strict. Fixed so the same inputs always produce
// the same score.
const (
	tokenWeight  = 0.6
	bigramWeight = 0.4
)

// Score returns a symmetric similarity in [0, 1]; 1.0 iff the normalized
// texts are effectively identical, 0.0 if either side has no tokens.
func Score(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	j := jaccard(ta, tb)

	// A text shorter than two runes after normalization has no bigrams, so
	// the token term carries the whole score; otherwise identical single-rune
	// texts would never reach 1.0.
	ba, bb := bigramCounts(a), bigramCounts(b)
	if len(ba) == 0 || len(bb) == 0 {
		return j
	}
	return tokenWeight*j + bigramWeight*dice(ba, bb)
}

// Jaccard is the token-set Jaccard similarity alone: intersection over union
// of the case-folded, punctuation-stripped word sets.
func Jaccard(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	return jaccard(ta, tb)
}

// SelectNonDuplicates greedily picks candidates in order, skipping any whose
// score against an already-selected text reaches threshold. It returns the
// indexes of the selected candidates, at most limit of them (limit <= 0 means
// no cap). The input is never modified.
func SelectNonDuplicates(candidates []string, threshold float64, limit int) []int {
	var selected []int
	var selectedTexts []string
	for i, c := range candidates {
		if limit > 0 && len(selected) >= limit {
			break
		}
		dup := false
		for _, s := range selectedTexts {
			if Score(c, s) >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		selected = append(selected, i)
		selectedTexts = append(selectedTexts, c)
	}
	return selected
}

// BestMatch returns the index and score of the pool entry most similar to
// text, or (-1, 0) for an empty pool.
func BestMatch(text string, pool []string) (int, float64) {
	best := -1
	bestScore := 0.0
	for i, p := range pool {
		if s := Score(text, p); best == -1 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, bestScore
}

func tokenSet(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) {
		word = strings.ToLower(word)
		if word != "" {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// dice is the Sørensen–Dice coefficient over character bigram counts of the
// normalized rune stream (case-folded, punctuation and spaces dropped). Both
// sides must be non-empty.
func dice(ba, bb map[string]int) float64 {
	totalA, totalB, overlap := 0, 0, 0
	for k, n := range ba {
		totalA += n
		if m, ok := bb[k]; ok {
			if m < n {
				overlap += m
			} else {
				overlap += n
			}
		}
	}
	for _, n := range bb {
		totalB += n
	}
	return 2.0 * float64(overlap) / float64(totalA+totalB)
}

func bigramCounts(s string) map[string]int {
	var runes []rune
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		runes = append(runes, r)
	}
	counts := make(map[string]int)
	for i := 0; i+1 < len(runes); i++ {
		counts[string(runes[i:i+2])]++
	}
	return counts
}
