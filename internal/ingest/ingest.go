// Package ingest walks a document corpus into the vector store:
// extract text, split into overlapping chunks, embed each chunk, write
// in batches. Ingestion is idempotent per document: a source that already
// has chunks stored is skipped unless force is set.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/askphys/askphys/internal/chunk"
	"github.com/askphys/askphys/internal/config"
	"github.com/askphys/askphys/internal/extract"
	"github.com/askphys/askphys/internal/log"
	"github.com/askphys/askphys/internal/store"
)

// Embedder turns one chunk of text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the vector store surface the pipeline writes through.
type Store interface {
	InsertBatch(ctx context.Context, records []store.Record) (int, error)
	HasSource(ctx context.Context, sourceID string) (bool, error)
	DeleteSource(ctx context.Context, sourceID string) (int64, error)
}

// Options tune the pipeline. Zero values fall back to the config defaults.
type Options struct {
	// BatchSize is how many embedded chunks are written per round trip.
	BatchSize int

	// MinDocumentLength is the minimum trimmed rune count a document
	// must have to be ingested.
	MinDocumentLength int

	// Force re-ingests documents that are already stored, replacing
	// their chunks.
	Force bool
}

// Report describes the outcome of ingesting a single document.
type Report struct {
	SourceID      string
	Chunks        int
	ChunksWritten int
	Skipped       bool
}

// Summary aggregates a directory ingestion run.
type Summary struct {
	FilesAdded    int
	FilesSkipped  int
	FilesFailed   int
	ChunksWritten int
}

// Pipeline ingests documents. It is safe for concurrent use when its
// Embedder and Store are.
type Pipeline struct {
	chunker  *chunk.Chunker
	embedder Embedder
	store    Store
	opts     Options
	logger   log.Logger
}

// New creates an ingestion Pipeline.
func New(chunker *chunk.Chunker, embedder Embedder, st Store, opts Options, logger log.Logger) *Pipeline {
	if opts.BatchSize < 1 {
		opts.BatchSize = config.DefaultInsertBatchSize
	}
	if opts.MinDocumentLength < 1 {
		opts.MinDocumentLength = config.DefaultMinDocumentLength
	}
	return &Pipeline{chunker: chunker, embedder: embedder, store: st, opts: opts, logger: logger}
}

// IngestFile ingests one document. The source identifier is the file's
// base name, so the same document re-ingested from a different directory
// is still recognized.
//
// A failed batch write is logged and the remaining batches are still
// attempted, so the Report may count fewer chunks written than chunked.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (Report, error) {
	rep := Report{SourceID: filepath.Base(path)}

	if !extract.Supported(path) {
		return rep, fmt.Errorf("ingesting %s: %w", rep.SourceID, extract.ErrUnsupported)
	}

	exists, err := p.store.HasSource(ctx, rep.SourceID)
	if err != nil {
		return rep, fmt.Errorf("checking %s: %w", rep.SourceID, err)
	}
	if exists {
		if !p.opts.Force {
			p.logger.Info("source already ingested, skipping", "source", rep.SourceID)
			rep.Skipped = true
			return rep, nil
		}
		deleted, err := p.store.DeleteSource(ctx, rep.SourceID)
		if err != nil {
			return rep, fmt.Errorf("replacing %s: %w", rep.SourceID, err)
		}
		p.logger.Info("replacing source", "source", rep.SourceID, "old_chunks", deleted)
	}

	text, err := extract.Text(path)
	if err != nil {
		return rep, err
	}

	// Near-empty documents (scanned images without OCR, stub files) are
	// skipped, not failed.
	text = strings.TrimSpace(text)
	if len([]rune(text)) < p.opts.MinDocumentLength {
		p.logger.Info("no text found in document, skipping", "source", rep.SourceID)
		rep.Skipped = true
		return rep, nil
	}

	chunks := p.chunker.Split(text)
	rep.Chunks = len(chunks)

	// A batch that fails to insert is logged and dropped; later batches
	// are still written (partial-success).
	batch := make([]store.Record, 0, p.opts.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		written, err := p.store.InsertBatch(ctx, batch)
		rep.ChunksWritten += written
		if err != nil {
			p.logger.Error("batch insert failed, continuing with next batch",
				"source", rep.SourceID, "batch_size", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for i, c := range chunks {
		vec, err := p.embedder.Embed(ctx, c)
		if err != nil {
			flush()
			return rep, fmt.Errorf("embedding chunk %d of %s: %w", i, rep.SourceID, err)
		}
		batch = append(batch, store.Record{
			SourceID:   rep.SourceID,
			ChunkIndex: i,
			Content:    c,
			Embedding:  vec,
		})
		if len(batch) == p.opts.BatchSize {
			flush()
		}
	}
	flush()

	p.logger.Info("ingested document",
		"source", rep.SourceID, "chunks", rep.Chunks, "written", rep.ChunksWritten)
	return rep, nil
}

// IngestDir ingests every supported document directly under dir.
// Subdirectories, dotfiles and unsupported formats are skipped silently;
// per-document failures are logged and counted, and do not stop the run.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading corpus directory: %w", err)
	}

	var sum Summary
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !extract.Supported(entry.Name()) {
			p.logger.Debug("skipping unsupported file", "file", entry.Name())
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rep, err := p.IngestFile(ctx, filepath.Join(dir, entry.Name()))
		sum.ChunksWritten += rep.ChunksWritten
		switch {
		case err != nil:
			sum.FilesFailed++
			p.logger.Error("failed to ingest document", "source", rep.SourceID, "error", err)
		case rep.Skipped:
			sum.FilesSkipped++
		default:
			sum.FilesAdded++
		}
	}

	p.logger.Info("corpus ingestion finished",
		"added", sum.FilesAdded, "skipped", sum.FilesSkipped,
		"failed", sum.FilesFailed, "chunks", sum.ChunksWritten)
	return sum, nil
}
