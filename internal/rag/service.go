// Package rag orchestrates the retrieval-augmented pipeline: ingest
// splits text into chunks and stores their embeddings; chat retrieves
// the nearest chunks and grounds answer generation on them.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/chunk"
	"github.com/answerdesk/answerdesk/internal/knowledge"
)

// ErrValidation indicates rejected input: empty text, a blank question,
// or a source that produced no chunks.
var ErrValidation = errors.New("validation failed")

// sourcePreviewLimit caps the chunk preview returned with chat sources.
const sourcePreviewLimit = 200

// Embedder converts text to an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a model response for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Store persists chunks and serves nearest-neighbor queries.
type Store interface {
	Insert(ctx context.Context, docs []knowledge.Document) error
	Query(ctx context.Context, vec []float32, k int) ([]knowledge.Result, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Fetcher extracts ingestible text from URLs and uploaded files.
type Fetcher interface {
	FromURL(ctx context.Context, rawURL string) (string, error)
	FromFile(filename, contentType string, data []byte) (string, error)
}

// Service wires the chunker, embedder, generator, fetcher and store into
// the ingestion and chat operations exposed by the API.
type Service struct {
	splitter  *chunk.Splitter
	embedder  Embedder
	generator Generator
	fetcher   Fetcher
	store     Store
	topK      int
	logger    *slog.Logger
}

// New creates a Service. All collaborators are required; topK is the
// number of chunks retrieved per chat turn.
func New(splitter *chunk.Splitter, embedder Embedder, generator Generator, fetcher Fetcher, store Store, topK int, logger *slog.Logger) (*Service, error) {
	switch {
	case splitter == nil:
		return nil, fmt.Errorf("splitter is required")
	case embedder == nil:
		return nil, fmt.Errorf("embedder is required")
	case generator == nil:
		return nil, fmt.Errorf("generator is required")
	case fetcher == nil:
		return nil, fmt.Errorf("fetcher is required")
	case store == nil:
		return nil, fmt.Errorf("store is required")
	}
	if topK < 1 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		splitter:  splitter,
		embedder:  embedder,
		generator: generator,
		fetcher:   fetcher,
		store:     store,
		topK:      topK,
		logger:    logger,
	}, nil
}

// IngestText chunks and stores raw text. Caller-provided metadata pairs
// are recorded on every chunk alongside the positional fields.
func (s *Service) IngestText(ctx context.Context, text string, metadata map[string]any) (*IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrValidation)
	}
	return s.ingest(ctx, text, knowledge.SourceTypeText, metadata)
}

// IngestURL fetches a page, extracts its text and stores it. The source
// URL is recorded on every chunk.
func (s *Service) IngestURL(ctx context.Context, rawURL string, metadata map[string]any) (*IngestResult, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: url cannot be empty", ErrValidation)
	}

	content, err := s.fetcher.FromURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	merged := mergeMetadata(metadata, map[string]any{"url": rawURL})
	return s.ingest(ctx, content, knowledge.SourceTypeURL, merged)
}

// IngestFile decodes an uploaded file and stores its text. Only
// text/plain uploads are accepted; the filename and content type are
// recorded on every chunk.
func (s *Service) IngestFile(ctx context.Context, filename, contentType string, data []byte) (*IngestResult, error) {
	content, err := s.fetcher.FromFile(filename, contentType, data)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"filename":     filename,
		"content_type": contentType,
	}
	return s.ingest(ctx, content, knowledge.SourceTypeFile, metadata)
}

// ingest runs the shared pipeline: split, embed each chunk, then persist
// the whole batch in one transaction so a failed embedding never leaves
// a partial ingestion behind.
func (s *Service) ingest(ctx context.Context, text, sourceType string, metadata map[string]any) (*IngestResult, error) {
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: source contained no ingestible text", ErrValidation)
	}

	docs := make([]knowledge.Document, 0, len(chunks))
	for i, c := range chunks {
		vec, err := s.embedder.Embed(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d/%d: %w", i+1, len(chunks), err)
		}

		md := mergeMetadata(metadata, map[string]any{
			"chunk_index":  i,
			"total_chunks": len(chunks),
			"source_type":  sourceType,
		})

		docs = append(docs, knowledge.Document{
			ID:       uuid.New().String(),
			Content:  c,
			Vector:   vec,
			Metadata: md,
		})
	}

	if err := s.store.Insert(ctx, docs); err != nil {
		return nil, err
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingested source",
		"source_type", sourceType,
		"chunks_added", len(docs),
		"total_documents", total)

	return &IngestResult{ChunksAdded: len(docs), TotalDocuments: total}, nil
}

// Chat answers a customer question grounded on the nearest stored
// chunks. If conversationID is empty a fresh one is generated; the
// value is otherwise passed through untouched.
func (s *Service) Chat(ctx context.Context, message, conversationID string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", ErrValidation)
	}

	queryVec, err := s.embedder.Embed(ctx, message)
	if err != nil {
		return nil, err
	}

	results, err := s.store.Query(ctx, queryVec, s.topK)
	if err != nil {
		return nil, err
	}

	contextDocs := make([]string, 0, len(results))
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		contextDocs = append(contextDocs, r.Content)
		sources = append(sources, Source{
			Content:         preview(r.Content),
			Metadata:        r.Metadata,
			SimilarityScore: 1 - r.Distance,
		})
	}

	response, err := s.generator.Generate(ctx, buildPrompt(contextDocs, message))
	if err != nil {
		return nil, err
	}

	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	return &ChatResult{
		Response:       response,
		ConversationID: conversationID,
		Sources:        sources,
	}, nil
}

// Stats reports the knowledge base size and identity.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalDocuments: total,
		CollectionName: knowledge.CollectionName,
		Status:         "active",
	}, nil
}

// Clear removes every stored chunk.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// preview truncates chunk content for the sources list. Truncation is
// rune-aware and marked with a trailing ellipsis.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= sourcePreviewLimit {
		return content
	}
	return string(runes[:sourcePreviewLimit]) + "..."
}

// mergeMetadata overlays pipeline fields onto caller metadata without
// mutating either map.
func mergeMetadata(base, extra map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
