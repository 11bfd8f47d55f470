// Package chunk splits extracted document text into overlapping fixed-size
// spans for embedding and independent retrieval.
//
// Windows are measured in runes, not bytes, so multi-byte characters are
// never split. Overlap keeps concepts retrievable when they straddle a
// window boundary; the window walk is deterministic, with no awareness of
// sentence or paragraph structure.
package chunk

import (
	"fmt"

	"github.com/askphys/askphys/internal/config"
)

// Chunker produces overlapping windows of a fixed size.
// Parameters are validated once at construction; a Chunker is immutable
// and safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker.
// Requires size > 0 and 0 <= overlap < size; otherwise the window would
// never advance. Violations wrap the config sentinel errors so callers
// treat them as fatal startup misconfiguration.
func New(size, overlap int) (*Chunker, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", config.ErrInvalidChunkSize, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: must satisfy 0 <= overlap < size, got overlap=%d size=%d",
			config.ErrInvalidChunkOverlap, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured window size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split breaks text into windows of at most Size runes, each starting
// Size-Overlap runes after the previous one. The walk stops once a window
// reaches the end of the text, so the final chunk may be shorter but no
// degenerate tail window is emitted.
//
// Text no longer than Size yields exactly one chunk, the full text.
// For longer text the chunk count is ceil((L-overlap)/(size-overlap)).
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	step := c.size - c.overlap
	chunks := make([]string, 0, (len(runes)-c.overlap+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
