package store_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askphys/askphys/internal/config"
	"github.com/askphys/askphys/internal/log"
	"github.com/askphys/askphys/internal/store"
	"github.com/askphys/askphys/internal/testutil"
)

// unitVec returns a 768-dim unit vector pointing along axis, optionally
// rotated toward the next axis by angle radians.
func unitVec(axis int, angle float64) []float32 {
	v := make([]float32, config.DefaultEmbeddingDim)
	v[axis] = float32(math.Cos(angle))
	v[(axis+1)%config.DefaultEmbeddingDim] = float32(math.Sin(angle))
	return v
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := store.New(tdb.Pool, config.DefaultEmbeddingDim, log.NewNop())

	records := []store.Record{
		{SourceID: "mechanics.pdf", ChunkIndex: 0, Content: "Newton's laws", Embedding: unitVec(0, 0)},
		{SourceID: "mechanics.pdf", ChunkIndex: 1, Content: "work and energy", Embedding: unitVec(0, 0.2)},
		{SourceID: "optics.pdf", ChunkIndex: 0, Content: "thin lenses", Embedding: unitVec(5, 0)},
	}

	written, err := s.InsertBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	t.Run("HasSource", func(t *testing.T) {
		got, err := s.HasSource(ctx, "mechanics.pdf")
		require.NoError(t, err)
		assert.True(t, got)

		got, err = s.HasSource(ctx, "unknown.pdf")
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("SimilaritySearch orders by similarity", func(t *testing.T) {
		matches, err := s.SimilaritySearch(ctx, unitVec(0, 0), 0.5, 5)
		require.NoError(t, err)
		require.Len(t, matches, 2, "orthogonal chunk must stay below threshold")

		assert.Equal(t, "Newton's laws", matches[0].Content)
		assert.Equal(t, "work and energy", matches[1].Content)
		assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
		assert.InDelta(t, 1.0, float64(matches[0].Similarity), 1e-3)
	})

	t.Run("SimilaritySearch above max similarity matches nothing", func(t *testing.T) {
		// Normalized vectors cap cosine similarity at 1.0, so a 1.1
		// threshold can never be cleared.
		matches, err := s.SimilaritySearch(ctx, unitVec(0, 0), 1.1, 5)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("SimilaritySearch respects limit", func(t *testing.T) {
		matches, err := s.SimilaritySearch(ctx, unitVec(0, 0.1), 0.0, 1)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("DeleteSource", func(t *testing.T) {
		deleted, err := s.DeleteSource(ctx, "mechanics.pdf")
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		got, err := s.HasSource(ctx, "mechanics.pdf")
		require.NoError(t, err)
		assert.False(t, got)
	})
}
