package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when stored vectors and the query vector
// come from embedding spaces of different sizes.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

const normEpsilon = 1e-10

// Match is a ranked chunk.
type Match struct {
	Index int
	Score float64
	Text  string
}

// CosineSimilarity divides each vector by its L2 norm plus a small epsilon
// and returns the dot product, so a zero vector scores 0 instead of NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot / ((math.Sqrt(normA) + normEpsilon) * (math.Sqrt(normB) + normEpsilon)), nil
}

// Rank scores every stored vector against query and orders them by
// descending similarity. Equal scores keep ascending chunk index order.
func Rank(query []float32, vectors [][]float32) ([]Match, error) {
	matches := make([]Match, len(vectors))
	for i, v := range vectors {
		score, err := CosineSimilarity(query, v)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		matches[i] = Match{Index: i, Score: score}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// Retrieve embeds question and returns the min(topK, len(chunks)) chunks most
// similar to it, best first. The embedder is not called when there is
// nothing to rank.
func Retrieve(ctx context.Context, embedder Embedder, question string, chunks []string, vectors [][]float32, topK int) ([]Match, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks, %d vectors", ErrEmbeddingCount, len(chunks), len(vectors))
	}
	if len(chunks) == 0 || topK <= 0 {
		return []Match{}, nil
	}

	query, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	ranked, err := Rank(query, vectors)
	if err != nil {
		return nil, err
	}
	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	for i := range ranked {
		ranked[i].Text = chunks[ranked[i].Index]
	}
	return ranked, nil
}

// Texts returns the chunk text of each match, in order.
func Texts(matches []Match) []string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts
}
