package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ErrEmbeddingCount is returned when an embedding backend answers with a
// different number of vectors than texts it was given.
var ErrEmbeddingCount = errors.New("embedding count mismatch")

// Embedder turns text into vectors. EmbedQuery must return a vector in the
// same space as EmbedDocuments for the same model.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LangchainEmbedder adapts a langchaingo embedder and checks that every
// input text gets exactly one vector back.
type LangchainEmbedder struct {
	inner embeddings.Embedder
}

var _ Embedder = (*LangchainEmbedder)(nil)

// NewLangchainEmbedder wraps any langchaingo embedding client.
func NewLangchainEmbedder(client embeddings.EmbedderClient, batchSize int) (*LangchainEmbedder, error) {
	opts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if batchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(batchSize))
	}
	inner, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &LangchainEmbedder{inner: inner}, nil
}

// NewOllamaEmbedder embeds through an Ollama server's embedding model.
func NewOllamaEmbedder(baseURL, model string, batchSize int) (*LangchainEmbedder, error) {
	llm, err := ollama.New(ollama.WithServerURL(baseURL), ollama.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewLangchainEmbedder(llm, batchSize)
}

// EmbedDocuments returns one vector per text, in input order.
func (e *LangchainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vectors, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %d texts, %d vectors", ErrEmbeddingCount, len(texts), len(vectors))
	}
	return vectors, nil
}

// EmbedQuery embeds a single question.
func (e *LangchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", ErrEmbeddingCount)
	}
	return vector, nil
}
