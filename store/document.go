package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hrygo/studysense/server/content"
)

const documentKeyPrefix = "document/"

// chunkPoolCacheKey caches the aggregated chunk pool across all documents.
const chunkPoolCacheKey = "chunkpool"

// Document is a processed study document. Raw uploaded bytes and the full
// extracted text are not persisted; the sentence-aligned chunks are the
// durable representation.
type Document struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ContentType string          `json:"contentType"`
	CharCount   int             `json:"charCount"`
	Chunks      []content.Chunk `json:"chunks"`
	CreatedTs   int64           `json:"createdTs"`
}

// CreateDocument persists a document and invalidates the chunk pool cache.
func (s *Store) CreateDocument(ctx context.Context, create *Document) (*Document, error) {
	if err := s.setJSON(ctx, documentKeyPrefix+create.ID, create); err != nil {
		return nil, err
	}
	s.cache.Delete(chunkPoolCacheKey)
	return create, nil
}

// GetDocument returns the document with the given id, or nil when absent.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	document := &Document{}
	ok, err := s.getJSON(ctx, documentKeyPrefix+id, document)
	if err != nil || !ok {
		return nil, err
	}
	return document, nil
}

// ListDocuments returns all documents ordered by key.
func (s *Store) ListDocuments(ctx context.Context) ([]*Document, error) {
	keys, err := s.driver.List(ctx, documentKeyPrefix)
	if err != nil {
		return nil, err
	}
	documents := make([]*Document, 0, len(keys))
	for _, key := range keys {
		document := &Document{}
		ok, err := s.getJSON(ctx, key, document)
		if err != nil {
			return nil, err
		}
		if ok {
			documents = append(documents, document)
		}
	}
	return documents, nil
}

// DeleteDocument removes a document and its chunks. Quizzes generated from
// it survive; questions embed their own citation text.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := s.driver.Delete(ctx, documentKeyPrefix+id); err != nil {
		return err
	}
	s.cache.Delete(chunkPoolCacheKey)
	return nil
}

// ChunkPool returns every chunk across all documents, grouped by document in
// key order with the per-document index order preserved. The pool is cached
// briefly since generation reads it far more often than uploads change it.
func (s *Store) ChunkPool(ctx context.Context) ([]content.Chunk, error) {
	if cached, ok := s.cache.Get(chunkPoolCacheKey); ok {
		var pool []content.Chunk
		if err := json.Unmarshal(cached, &pool); err == nil {
			return pool, nil
		}
	}

	documents, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	var pool []content.Chunk
	for _, document := range documents {
		pool = append(pool, document.Chunks...)
	}

	if encoded, err := json.Marshal(pool); err == nil {
		s.cache.Set(chunkPoolCacheKey, encoded, 0)
	}
	return pool, nil
}

// DocumentNameTaken reports whether another stored document already uses the
// given source name.
func (s *Store) DocumentNameTaken(ctx context.Context, name string) (bool, error) {
	documents, err := s.ListDocuments(ctx)
	if err != nil {
		return false, err
	}
	for _, document := range documents {
		if strings.EqualFold(document.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
