package rag

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when a chunk window would not advance.
var ErrInvalidWindow = errors.New("invalid chunk window")

// Chunk normalises text and splits it into windows of up to maxChars runes.
// Window i starts at i*(maxChars-overlap); the last window is the first one
// that reaches the end of the text, so consecutive chunks share exactly
// overlap runes and dropping that prefix from every chunk after the first
// rebuilds the normalised text.
func Chunk(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 || overlap < 0 || overlap >= maxChars {
		return nil, fmt.Errorf("%w: max_chars=%d overlap=%d", ErrInvalidWindow, maxChars, overlap)
	}

	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return []string{}, nil
	}

	step := maxChars - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + maxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
