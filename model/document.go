package model

import (
	"fmt"
	"time"
)

// Document is an ingested lease. It is built once at upload time and only read
// afterwards; Chunks[i] is embedded as Embeddings[i].
type Document struct {
	ID         string      `json:"document_id"`
	Filename   string      `json:"filename"`
	RawText    string      `json:"-"`
	Chunks     []string    `json:"-"`
	Embeddings [][]float32 `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewDocument validates the chunk/embedding pairing and returns a document
// ready to be stored.
func NewDocument(id, filename, rawText string, chunks []string, embeddings [][]float32) (*Document, error) {
	if id == "" {
		return nil, fmt.Errorf("document id is required")
	}
	if len(chunks) != len(embeddings) {
		return nil, fmt.Errorf("document %s: %d chunks but %d embeddings", id, len(chunks), len(embeddings))
	}
	return &Document{
		ID:         id,
		Filename:   filename,
		RawText:    rawText,
		Chunks:     chunks,
		Embeddings: embeddings,
		CreatedAt:  time.Now(),
	}, nil
}

// NumChunks returns the number of retrievable chunks
func (d *Document) NumChunks() int {
	return len(d.Chunks)
}
