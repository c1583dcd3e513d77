package metricscalculator

import (
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// CalculateWER calculates the Word Error Rate:
// (substitutions + insertions + deletions) / number of words in reference.
// Each distinct word is encoded to a unique rune so the word-level edit
// distance can reuse the rune-based Levenshtein implementation. The
// reference must tokenize to at least one word; samples with an empty
// reference or hypothesis are skipped upstream, not scored here.
func CalculateWER(reference string, hypothesis string) (float64, error) {
	refWords := strings.Fields(reference)
	if len(refWords) == 0 {
		return 0, fmt.Errorf("reference has no words, WER is undefined")
	}
	hypWords := strings.Fields(hypothesis)

	vocab := make(map[string]rune, len(refWords)+len(hypWords))
	distance := levenshtein.DistanceForStrings(
		encodeWords(refWords, vocab),
		encodeWords(hypWords, vocab),
		levenshtein.DefaultOptionsWithSub,
	)
	return float64(distance) / float64(len(refWords)), nil
}

// CalculateCER calculates the Character Error Rate: the same edit-distance
// computation at rune granularity, normalized by the reference length.
func CalculateCER(reference string, hypothesis string) (float64, error) {
	refRunes := []rune(reference)
	if len(refRunes) == 0 {
		return 0, fmt.Errorf("reference has no characters, CER is undefined")
	}

	distance := levenshtein.DistanceForStrings(refRunes, []rune(hypothesis), levenshtein.DefaultOptionsWithSub)
	return float64(distance) / float64(len(refRunes)), nil
}

// Clamp caps a per-sample error rate at ceiling so that a single
// degenerate sample (for example a hypothesis many times longer than its
// reference) cannot dominate an aggregate in either direction.
func Clamp(rate float64, ceiling float64) float64 {
	if rate > ceiling {
		return ceiling
	}
	return rate
}

// encodeWords maps each word onto a rune, assigning a fresh rune to every
// word not yet in vocab. Two words encode to the same rune iff they are
// equal, which is all DistanceForStrings needs.
func encodeWords(words []string, vocab map[string]rune) []rune {
	encoded := make([]rune, len(words))
	for i, w := range words {
		r, ok := vocab[w]
		if !ok {
			r = rune(len(vocab))
			vocab[w] = r
		}
		encoded[i] = r
	}
	return encoded
}
