package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AnTengye/leasewise/config"
	"github.com/AnTengye/leasewise/llm"
	"github.com/AnTengye/leasewise/model"
	"github.com/AnTengye/leasewise/pkg/logger"
	"github.com/AnTengye/leasewise/rag"
	"github.com/google/uuid"
)

// LeaseService runs the ingestion and question flows over stored leases.
type LeaseService struct {
	store    *DocumentStore
	embedder rag.Embedder
	chat     llm.ChatModel
	ollama   config.OllamaConfig
	rag      config.RAGConfig
}

func NewLeaseService(store *DocumentStore, embedder rag.Embedder, chat llm.ChatModel, cfg *config.Config) *LeaseService {
	return &LeaseService{
		store:    store,
		embedder: embedder,
		chat:     chat,
		ollama:   cfg.Ollama,
		rag:      cfg.RAG,
	}
}

// Answer is the reply to a question plus the excerpts it was grounded on.
type Answer struct {
	Answer          string
	ContextSnippets []string
}

// TermsAnalysis holds extracted lease fields and the reply they came from.
type TermsAnalysis struct {
	Terms model.StructuredTerms
	Raw   string
	Error string
}

// RedFlagAnalysis holds risky clauses and the reply they came from.
type RedFlagAnalysis struct {
	Flags []model.RedFlag
	Raw   string
	Error string
}

// Ingest normalises and chunks text, embeds every chunk and stores the
// result. Nothing is stored if any step fails.
func (s *LeaseService) Ingest(ctx context.Context, filename, text string) (*model.Document, error) {
	start := time.Now()
	normalized := rag.Normalize(text)

	chunks, err := rag.Chunk(normalized, s.rag.ChunkSize, s.rag.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunk text: %w", err)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	doc, err := model.NewDocument(uuid.New().String(), filename, normalized, chunks, vectors)
	if err != nil {
		return nil, err
	}
	s.store.Save(doc)

	logger.Info(logger.WithDocumentID(ctx, doc.ID), "document ingested",
		"filename", filename,
		"chars", len([]rune(normalized)),
		"chunks", doc.NumChunks(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// Document returns a stored lease or ErrDocumentNotFound
func (s *LeaseService) Document(id string) (*model.Document, error) {
	return s.store.Get(id)
}

func (s *LeaseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	logger.Info(logger.WithDocumentID(ctx, id), "document deleted")
	return nil
}

// Summarize asks the model for a bullet-point summary of the lease opening.
func (s *LeaseService) Summarize(ctx context.Context, id string) (string, error) {
	doc, err := s.store.Get(id)
	if err != nil {
		return "", err
	}
	ctx = logger.WithDocumentID(ctx, id)

	prompt := rag.BuildSummaryPrompt(rag.Truncate(doc.RawText, s.rag.SummaryMaxChars))
	return s.complete(ctx, "summary", rag.SystemSummary, prompt, s.ollama.SummaryTimeout()), nil
}

// Ask retrieves the chunks closest to question and answers from them only.
// An error is returned for unknown documents and when the question cannot
// be embedded; model failures come back as the answer text.
func (s *LeaseService) Ask(ctx context.Context, id, question string) (*Answer, error) {
	doc, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDocumentID(ctx, id)

	matches, err := rag.Retrieve(ctx, s.embedder, question, doc.Chunks, doc.Embeddings, s.rag.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	snippets := rag.Texts(matches)
	logger.Debug(ctx, "context retrieved", "matches", len(matches))

	prompt := rag.BuildQAPrompt(rag.JoinContext(snippets), question)
	answer := s.complete(ctx, "ask", rag.SystemQA, prompt, s.ollama.QATimeout())

	return &Answer{Answer: answer, ContextSnippets: snippets}, nil
}

// ExtractTerms asks for the known lease fields as JSON and parses the reply.
func (s *LeaseService) ExtractTerms(ctx context.Context, id string) (*TermsAnalysis, error) {
	doc, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDocumentID(ctx, id)

	prompt := rag.BuildTermsPrompt(rag.Truncate(doc.RawText, s.rag.TermsMaxChars), model.TermKeys)
	raw := s.complete(ctx, "extract_terms", rag.SystemTerms, prompt, s.ollama.ExtractTimeout())

	res := rag.ParseTerms(raw)
	if res.Error != "" {
		logger.Warn(ctx, "terms reply not usable", "raw_chars", len(raw))
	}
	return &TermsAnalysis{Terms: res.Terms, Raw: raw, Error: res.Error}, nil
}

// RedFlags asks for risky clauses as JSON and validates each one.
func (s *LeaseService) RedFlags(ctx context.Context, id string) (*RedFlagAnalysis, error) {
	doc, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDocumentID(ctx, id)

	prompt := rag.BuildRedFlagPrompt(rag.Truncate(doc.RawText, s.rag.RedFlagMaxChars))
	raw := s.complete(ctx, "red_flags", rag.SystemRedFlags, prompt, s.ollama.ExtractTimeout())

	res := rag.ParseRedFlags(raw)
	if res.Error != "" || res.Rejected > 0 {
		logger.Warn(ctx, "red flag reply partly unusable", "error", res.Error, "rejected", res.Rejected)
	}
	return &RedFlagAnalysis{Flags: res.Flags, Raw: raw, Error: res.Error}, nil
}

// Ping checks that the chat model server is reachable
func (s *LeaseService) Ping(ctx context.Context) error {
	return s.chat.Ping(ctx)
}

// complete calls the chat model and folds a failure into the reply text.
func (s *LeaseService) complete(ctx context.Context, op, system, prompt string, timeout time.Duration) string {
	start := time.Now()
	text, err := s.chat.Complete(ctx, system, prompt, timeout)
	if err != nil {
		logger.Error(ctx, "model call failed", "op", op, "error", err, "duration_ms", time.Since(start).Milliseconds())
	} else {
		logger.Debug(ctx, "model call completed", "op", op, "duration_ms", time.Since(start).Milliseconds())
	}
	return llm.Reply(text, err)
}
