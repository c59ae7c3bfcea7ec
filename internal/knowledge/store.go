// Package knowledge stores document chunks and their embeddings in
// PostgreSQL + pgvector and serves nearest-neighbor queries over them.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// CollectionName is the logical collection identity reported by stats.
const CollectionName = "customer_support_kb"

// chunksTable is the backing table; see db/migrations.
const chunksTable = "chunks"

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages the chunk collection. The similarity metric is cosine
// distance, fixed by the vector_cosine_ops index in the schema; callers
// may rely on distances being in [0, 2].
//
// Store is safe for concurrent use, with one documented exception:
// Clear is not synchronized with in-flight Insert or Query calls.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store and verifies the schema matches the expected
// embedding dimension. The dimension check turns a misconfigured
// embedder into a startup failure instead of a per-insert one.
func New(ctx context.Context, pool *pgxpool.Pool, dimension int32, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{pool: pool, logger: logger}
	if err := s.verifyDimension(ctx, dimension); err != nil {
		return nil, err
	}
	return s, nil
}

// verifyDimension asserts that the embedding column width matches the
// embedder's output dimension.
func (s *Store) verifyDimension(ctx context.Context, want int32) error {
	var typmod int32
	err := s.pool.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = $1::regclass AND attname = 'embedding'`,
		chunksTable,
	).Scan(&typmod)
	if err != nil {
		return fmt.Errorf("checking embedding column: %w", err)
	}
	if typmod != want {
		return fmt.Errorf("embedding column is vector(%d), embedder outputs %d dimensions", typmod, want)
	}
	return nil
}

// Insert persists a batch of documents in a single transaction: either
// every chunk of an ingestion lands or none does. Chunk counts per batch
// are small (one source text), so per-row statements inside one
// transaction are sufficient.
func (s *Store) Insert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("insert rollback", "error", rbErr)
		}
	}()

	for _, doc := range docs {
		if err := insertDoc(ctx, tx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing insert batch: %w", err)
	}

	s.logger.Debug("inserted chunk batch", "count", len(docs))
	return nil
}

func insertDoc(ctx context.Context, q querier, doc Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata for chunk %q: %w", doc.ID, err)
	}

	_, err = q.Exec(ctx,
		`INSERT INTO chunks (id, content, embedding, metadata) VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.Content, pgvector.NewVector(doc.Vector), metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting chunk %q: %w", doc.ID, err)
	}
	return nil
}

// Query returns the k nearest chunks to vec by cosine distance,
// closest first. An empty collection yields an empty slice.
func (s *Store) Query(ctx context.Context, vec []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content, metadata, embedding <=> $1 AS distance
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vec), k,
	)
	if err != nil {
		return nil, fmt.Errorf("querying nearest chunks: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0, k)
	for rows.Next() {
		var (
			content      string
			metadataJSON []byte
			distance     float64
		)
		if err := rows.Scan(&content, &metadataJSON, &distance); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}

		var metadata map[string]any
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			s.logger.Warn("failed to parse chunk metadata", "error", err)
			metadata = map[string]any{}
		}

		results = append(results, Result{
			Content:  content,
			Metadata: metadata,
			Distance: distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return results, nil
}

// Count returns the total number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	if count > math.MaxInt {
		return 0, fmt.Errorf("chunk count %d exceeds platform int capacity", count)
	}
	return int(count), nil
}

// Clear removes every chunk, leaving an empty collection with the same
// schema and metric. It is destructive and irreversible, and is not
// synchronized with concurrent inserts or queries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE chunks`); err != nil {
		return fmt.Errorf("clearing collection: %w", err)
	}
	s.logger.Info("knowledge collection cleared", "collection", CollectionName)
	return nil
}
