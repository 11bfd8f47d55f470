// Package retrieve answers "what does the corpus say about this
// question": embed the question, run a similarity search, and assemble
// the hits into a context block with deduplicated source attributions.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"github.com/askphys/askphys/internal/config"
	"github.com/askphys/askphys/internal/log"
	"github.com/askphys/askphys/internal/store"
)

var (
	// ErrEmbedding indicates the question could not be embedded.
	ErrEmbedding = errors.New("question embedding failed")

	// ErrUnavailable indicates the vector store could not be queried.
	// Callers may degrade to answering without retrieved context.
	ErrUnavailable = errors.New("retrieval unavailable")
)

// Separator joins chunk contents in the assembled context block.
const Separator = "\n---\n"

// NoContext is the context text used when no chunk clears the
// similarity threshold.
const NoContext = "no context found"

// Embedder turns the question into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs the similarity query.
type Searcher interface {
	SimilaritySearch(ctx context.Context, embedding []float32, threshold float32, limit int) ([]store.Match, error)
}

// Options tune retrieval. Threshold is used as given, so zero accepts
// every match; the 0.3 default lives in the config layer. TopK falls
// back to the config default when unset and is clamped to [1, 10].
type Options struct {
	Threshold float32
	TopK      int
}

// Context is the assembled retrieval result handed to generation.
type Context struct {
	// Text is the matched chunk contents joined by Separator, or
	// NoContext when nothing matched.
	Text string

	// Sources lists the distinct documents the chunks came from, in
	// order of best match. Empty when nothing matched.
	Sources []string

	// Matches is how many chunks cleared the threshold.
	Matches int
}

// Pipeline retrieves context for questions. Safe for concurrent use when
// its Embedder and Searcher are.
type Pipeline struct {
	embedder Embedder
	searcher Searcher
	opts     Options
	logger   log.Logger
}

// New creates a retrieval Pipeline.
func New(embedder Embedder, searcher Searcher, opts Options, logger log.Logger) *Pipeline {
	if opts.TopK == 0 {
		opts.TopK = config.DefaultTopK
	}
	if opts.TopK < 1 {
		opts.TopK = 1
	}
	if opts.TopK > 10 {
		opts.TopK = 10
	}
	return &Pipeline{embedder: embedder, searcher: searcher, opts: opts, logger: logger}
}

// Retrieve embeds question and assembles the context of its best matches.
func (p *Pipeline) Retrieve(ctx context.Context, question string) (Context, error) {
	vec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	matches, err := p.searcher.SimilaritySearch(ctx, vec, p.opts.Threshold, p.opts.TopK)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	result := Assemble(matches)
	p.logger.Debug("retrieved context",
		"matches", result.Matches, "sources", len(result.Sources))
	return result, nil
}

// Assemble joins matches into a Context. Sources are deduplicated in
// first-seen order, which follows match quality since matches arrive
// sorted by descending similarity.
func Assemble(matches []store.Match) Context {
	if len(matches) == 0 {
		return Context{Text: NoContext}
	}

	seen := make(map[string]struct{}, len(matches))
	result := Context{Matches: len(matches)}
	text := make([]byte, 0, 256)
	for i, m := range matches {
		if i > 0 {
			text = append(text, Separator...)
		}
		text = append(text, m.Content...)

		if _, ok := seen[m.SourceID]; !ok {
			seen[m.SourceID] = struct{}{}
			result.Sources = append(result.Sources, m.SourceID)
		}
	}
	result.Text = string(text)
	return result
}
