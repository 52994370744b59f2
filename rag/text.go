// Package rag holds the retrieval-augmented generation core: text
// normalisation and chunking, embedding and cosine retrieval, prompt
// templates, and tolerant parsing of model output.
package rag

import (
	"strings"
	"unicode/utf8"
)

// Normalize collapses every run of whitespace (newlines included) into a
// single space and trims both ends. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Preview returns the first n runes of s followed by "..." when s was cut.
func Preview(s string, n int) string {
	clipped := Truncate(s, n)
	if len(clipped) < len(s) {
		return clipped + "..."
	}
	return clipped
}
