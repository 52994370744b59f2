package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/AnTengye/leasewise/config"
	"github.com/AnTengye/leasewise/model"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is an in-memory store for ingested leases.
// Documents are lost on restart.
type DocumentStore struct {
	documents    map[string]*model.Document
	mu           sync.RWMutex
	maxDocuments int           // 0 = unlimited
	ttl          time.Duration // 0 = never expire
	now          func() time.Time
}

// NewDocumentStore creates a store with the eviction limits from cfg
func NewDocumentStore(cfg *config.StoreConfig) *DocumentStore {
	maxDocuments := cfg.MaxDocuments
	if maxDocuments < 0 {
		maxDocuments = 0
	}
	ttl := cfg.TTL()
	if ttl < 0 {
		ttl = 0
	}
	slog.Info("document store initialized", "max_documents", maxDocuments, "ttl", ttl)
	return &DocumentStore{
		documents:    make(map[string]*model.Document),
		maxDocuments: maxDocuments,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Save stores a fully built document. Documents are never mutated afterwards.
func (s *DocumentStore) Save(doc *model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now()
	}
	s.documents[doc.ID] = doc

	s.cleanupIfNeeded()
}

// Get returns the document for id. Expired documents count as missing.
func (s *DocumentStore) Get(id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok || s.expired(doc) {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.documents, id)
	return nil
}

// Count returns the number of documents in the store
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Must be called with lock held
func (s *DocumentStore) expired(doc *model.Document) bool {
	return s.ttl > 0 && s.now().Sub(doc.CreatedAt) > s.ttl
}

// cleanupIfNeeded removes oldest documents if store exceeds maxDocuments
// Must be called with lock held
func (s *DocumentStore) cleanupIfNeeded() {
	if s.maxDocuments <= 0 {
		return
	}
	if len(s.documents) <= s.maxDocuments {
		return
	}

	docs := make([]*model.Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	removeCount := len(docs) - s.maxDocuments
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old document",
			"document_id", docs[i].ID,
			"created_at", docs[i].CreatedAt,
		)
		delete(s.documents, docs[i].ID)
	}
}

// EvictExpired removes every document older than the TTL and returns how
// many were removed.
func (s *DocumentStore) EvictExpired() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.documents {
		if s.expired(d) {
			delete(s.documents, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("evicted expired documents", "count", removed, "remaining", len(s.documents))
	}
	return removed
}

// StartJanitor runs EvictExpired every interval until ctx is done.
func (s *DocumentStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvictExpired()
			}
		}
	}()
}
