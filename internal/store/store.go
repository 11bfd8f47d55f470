// Package store persists document chunks and their embeddings in
// PostgreSQL with the pgvector extension, and answers cosine similarity
// queries against them.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/askphys/askphys/internal/log"
)

var (
	// ErrWrite indicates a chunk insert failed.
	ErrWrite = errors.New("vector store write failed")

	// ErrRead indicates a similarity query failed.
	ErrRead = errors.New("vector store read failed")

	// ErrDimension indicates an embedding's length does not match the
	// store's vector column.
	ErrDimension = errors.New("embedding dimension mismatch")
)

// Querier is the subset of pgx operations the store needs.
// *pgxpool.Pool satisfies it; tests substitute fakes.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Record is one chunk of a source document, ready to persist.
type Record struct {
	SourceID   string
	ChunkIndex int
	PageNumber int
	Content    string
	Embedding  []float32
}

// Match is one similarity search hit.
type Match struct {
	SourceID   string
	Content    string
	Similarity float32
}

// Store reads and writes the doc_chunks table.
// It is safe for concurrent use when its Querier is.
type Store struct {
	db     Querier
	dim    int
	logger log.Logger
}

// New creates a Store over db. dim is the width of the vector column;
// embeddings of any other length are rejected before reaching PostgreSQL.
func New(db Querier, dim int, logger log.Logger) *Store {
	return &Store{db: db, dim: dim, logger: logger}
}

const insertChunkSQL = `
INSERT INTO doc_chunks (source_id, chunk_index, page_number, content, embedding)
VALUES ($1, $2, $3, $4, $5)`

// InsertBatch persists records in a single database round trip.
// It returns the number of records written. On failure the batch stops at
// the first failing insert, so written records stay persisted and the
// count tells the caller how far the batch got.
func (s *Store) InsertBatch(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for _, r := range records {
		if len(r.Embedding) != s.dim {
			return 0, fmt.Errorf("%w: chunk %d of %q has %d, want %d",
				ErrDimension, r.ChunkIndex, r.SourceID, len(r.Embedding), s.dim)
		}
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertChunkSQL,
			r.SourceID, r.ChunkIndex, r.PageNumber, r.Content, pgvector.NewVector(r.Embedding))
	}

	results := s.db.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	for i := range records {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("%w: inserting chunk %d of %q: %v",
				ErrWrite, records[i].ChunkIndex, records[i].SourceID, err)
		}
	}

	s.logger.Debug("inserted chunk batch", "source", records[0].SourceID, "count", len(records))
	return len(records), nil
}

// HasSource reports whether any chunk of sourceID is already stored.
func (s *Store) HasSource(ctx context.Context, sourceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM doc_chunks WHERE source_id = $1)`, sourceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking source %q: %v", ErrRead, sourceID, err)
	}
	return exists, nil
}

// DeleteSource removes every chunk of sourceID, returning how many rows
// went away. Used by forced re-ingestion.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) (int64, error) {
	var deleted int64
	err := s.db.QueryRow(ctx,
		`WITH gone AS (DELETE FROM doc_chunks WHERE source_id = $1 RETURNING 1)
		 SELECT count(*) FROM gone`, sourceID,
	).Scan(&deleted)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting source %q: %v", ErrWrite, sourceID, err)
	}
	return deleted, nil
}

// Count returns the total number of stored chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM doc_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %v", ErrRead, err)
	}
	return n, nil
}

const similaritySQL = `
SELECT source_id, content, 1 - (embedding <=> $1) AS similarity
FROM doc_chunks
WHERE 1 - (embedding <=> $1) >= $2
ORDER BY similarity DESC, id ASC
LIMIT $3`

// SimilaritySearch returns the chunks most similar to embedding, ordered
// by descending cosine similarity with ascending id as a deterministic
// tie-break. Only chunks at or above threshold are returned, at most
// limit of them.
func (s *Store) SimilaritySearch(ctx context.Context, embedding []float32, threshold float32, limit int) ([]Match, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrDimension, len(embedding), s.dim)
	}

	rows, err := s.db.Query(ctx, similaritySQL, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query: %v", ErrRead, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.SourceID, &m.Content, &m.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scanning match: %v", ErrRead, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading matches: %v", ErrRead, err)
	}

	s.logger.Debug("similarity search", "matches", len(matches), "threshold", threshold, "limit", limit)
	return matches, nil
}
