// Package library manages the study document collection: text extraction,
// chunking and the derived topic list.
package library

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"log/slog"

	"github.com/hrygo/studysense/plugin/textextract"
	"github.com/hrygo/studysense/server/content"
	"github.com/hrygo/studysense/store"
)

// Extractor is the text-extraction collaborator contract.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// Upload is one file in an ingest request.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// IngestResult reports the outcome for one uploaded file. Extraction
// failures are scoped to their file; other files in the same request are
// still processed.
type IngestResult struct {
	Name       string `json:"name"`
	DocumentID string `json:"documentId,omitempty"`
	ChunkCount int    `json:"chunkCount"`
	Error      string `json:"error,omitempty"`
}

type Service struct {
	store     *store.Store
	extractor Extractor
}

func NewService(st *store.Store, extractor Extractor) *Service {
	return &Service{store: st, extractor: extractor}
}

// Ingest extracts and chunks each uploaded file. Extraction runs
// concurrently per file; store writes are serialized so collection
// invariants hold under the single-writer policy.
func (s *Service) Ingest(ctx context.Context, uploads []Upload) ([]IngestResult, error) {
	results := make([]IngestResult, len(uploads))
	texts := make([]string, len(uploads))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	var mu sync.Mutex
	for i, upload := range uploads {
		i, upload := i, upload
		group.Go(func() error {
			text, err := s.extractor.Extract(groupCtx, upload.Data, upload.ContentType)
			mu.Lock()
			defer mu.Unlock()
			results[i] = IngestResult{Name: upload.Name}
			if err != nil {
				slog.Warn("text extraction failed", "file", upload.Name, "error", err)
				results[i].Error = extractionErrorMessage(err)
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, upload := range uploads {
		if results[i].Error != "" {
			continue
		}
		chunks := content.Split(texts[i], upload.Name, content.DefaultChunkSize)
		document := &store.Document{
			ID:          uuid.NewString(),
			Name:        upload.Name,
			ContentType: upload.ContentType,
			CharCount:   len(texts[i]),
			Chunks:      chunks,
			CreatedTs:   time.Now().Unix(),
		}
		if _, err := s.store.CreateDocument(ctx, document); err != nil {
			return nil, errors.Wrapf(err, "failed to persist document %s", upload.Name)
		}
		results[i].DocumentID = document.ID
		results[i].ChunkCount = len(chunks)
		slog.Info("document ingested", "file", upload.Name, "chunks", len(chunks), "chars", document.CharCount)
	}

	return results, nil
}

func extractionErrorMessage(err error) string {
	switch {
	case errors.Is(err, textextract.ErrUnsupportedFormat):
		return "unsupported file format"
	case errors.Is(err, textextract.ErrEmptyExtraction):
		return "no usable text could be extracted"
	default:
		return "extraction failed"
	}
}

// ListDocuments returns all stored documents.
func (s *Service) ListDocuments(ctx context.Context) ([]*store.Document, error) {
	return s.store.ListDocuments(ctx)
}

// DeleteDocument removes a document and its chunks. Existing quizzes keep
// their embedded citations.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	return s.store.DeleteDocument(ctx, id)
}

// Topics recomputes the topic list from the current chunk pool.
func (s *Service) Topics(ctx context.Context) ([]string, error) {
	pool, err := s.store.ChunkPool(ctx)
	if err != nil {
		return nil, err
	}
	return content.ExtractTopics(pool), nil
}
