package rag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// letterClient is a langchaingo EmbedderClient that embeds text as a
// 26-dimensional letter histogram.
type letterClient struct {
	mu      sync.Mutex
	batches [][]string
	err     error
	short   bool
}

func (c *letterClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batches = append(c.batches, append([]string(nil), texts...))
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, letterVector(text))
	}
	if c.short && len(out) > 1 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func letterVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func newLetterEmbedder(t *testing.T, batchSize int) (*LangchainEmbedder, *letterClient) {
	t.Helper()
	client := &letterClient{}
	emb, err := NewLangchainEmbedder(client, batchSize)
	require.NoError(t, err)
	return emb, client
}

func TestLangchainEmbedderDocumentsKeepOrder(t *testing.T) {
	emb, client := newLetterEmbedder(t, 2)
	texts := []string{"aaa", "bbb", "ccc", "ddd", "eee"}

	vectors, err := emb.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		assert.Equal(t, letterVector(text), vectors[i], "vector %d", i)
	}
	assert.Len(t, client.batches, 3, "five texts in batches of two")
}

func TestLangchainEmbedderEmptyBatch(t *testing.T) {
	emb, client := newLetterEmbedder(t, 0)

	vectors, err := emb.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Empty(t, client.batches, "backend must not be called for zero chunks")
}

func TestLangchainEmbedderQuerySameSpace(t *testing.T) {
	emb, _ := newLetterEmbedder(t, 8)
	ctx := context.Background()

	docs, err := emb.EmbedDocuments(ctx, []string{"late fee"})
	require.NoError(t, err)
	query, err := emb.EmbedQuery(ctx, "late fee")
	require.NoError(t, err)

	assert.Equal(t, docs[0], query)
}

func TestLangchainEmbedderPropagatesErrors(t *testing.T) {
	emb, client := newLetterEmbedder(t, 4)
	client.err = errors.New("model not found")

	_, err := emb.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")

	_, err = emb.EmbedQuery(context.Background(), "a")
	require.Error(t, err)
}

func TestLangchainEmbedderCountMismatch(t *testing.T) {
	emb, client := newLetterEmbedder(t, 10)
	client.short = true

	_, err := emb.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrEmbeddingCount)
}

func TestNewOllamaEmbedder(t *testing.T) {
	emb, err := NewOllamaEmbedder("http://localhost:11434", "all-minilm", 16)
	require.NoError(t, err)
	assert.NotNil(t, emb)
}
