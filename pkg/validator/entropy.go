// Package validator holds the pure checks used to accept or reject a
// candidate match: Shannon entropy, secret context keywords and line noise.
package validator

import (
	"math"
	"unicode/utf8"
)

// Entropy returns the Shannon entropy of s in bits per character.
// The empty string has entropy 0.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}

	counts := make(map[rune]int)
	for _, r := range s {
		counts[r]++
	}

	length := float64(utf8.RuneCountInString(s))
	var entropy float64
	for _, count := range counts {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}
