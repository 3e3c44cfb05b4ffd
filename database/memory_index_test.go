package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuongle/docquery-be/types"
)

func chunkWithVector(id string, ordinal int, vec []float32) types.Chunk {
	return types.Chunk{
		ID:        id,
		Ordinal:   ordinal,
		Text:      "chunk " + id,
		Embedding: vec,
	}
}

func TestMemoryVectorIndexRejectsBadDimension(t *testing.T) {
	_, err := NewMemoryVectorIndex(0)
	require.Error(t, err)

	index, err := NewMemoryVectorIndex(3)
	require.NoError(t, err)

	err = index.AddChunks(context.Background(), "doc", []types.Chunk{
		chunkWithVector("a", 0, []float32{1, 0}),
	})
	require.Error(t, err)
}

func TestMemoryVectorIndexQueryOrdering(t *testing.T) {
	ctx := context.Background()
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	require.NoError(t, index.AddChunks(ctx, "doc", []types.Chunk{
		chunkWithVector("a", 0, []float32{1, 0}),
		chunkWithVector("b", 1, []float32{0, 1}),
		chunkWithVector("c", 2, []float32{1, 0.2}),
	}))

	results, err := index.Query(ctx, "doc", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "c", results[1].Chunk.ID)
	assert.Equal(t, "b", results[2].Chunk.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
}

func TestMemoryVectorIndexTieBreakByOrdinal(t *testing.T) {
	ctx := context.Background()
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	// Identical vectors: equal distance, ordinal decides.
	require.NoError(t, index.AddChunks(ctx, "doc", []types.Chunk{
		chunkWithVector("later", 5, []float32{1, 1}),
		chunkWithVector("earlier", 1, []float32{1, 1}),
	}))

	results, err := index.Query(ctx, "doc", []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "earlier", results[0].Chunk.ID)
	assert.Equal(t, "later", results[1].Chunk.ID)
}

func TestMemoryVectorIndexCapsAtK(t *testing.T) {
	ctx := context.Background()
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	var chunks []types.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunkWithVector(fmt.Sprintf("c%d", i), i, []float32{float32(i + 1), 1}))
	}
	require.NoError(t, index.AddChunks(ctx, "doc", chunks))

	results, err := index.Query(ctx, "doc", []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Len(t, results, 4)

	results, err = index.Query(ctx, "doc", []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestMemoryVectorIndexUnknownDocument(t *testing.T) {
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	_, err = index.Query(context.Background(), "missing", []float32{1, 0}, 3)
	require.ErrorIs(t, err, types.ErrIndexNotFound)
}

func TestMemoryVectorIndexPartitionIsolation(t *testing.T) {
	ctx := context.Background()
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	require.NoError(t, index.AddChunks(ctx, "doc-a", []types.Chunk{
		chunkWithVector("a", 0, []float32{1, 0}),
	}))
	require.NoError(t, index.AddChunks(ctx, "doc-b", []types.Chunk{
		chunkWithVector("b", 0, []float32{1, 0}),
	}))

	results, err := index.Query(ctx, "doc-a", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestMemoryVectorIndexDelete(t *testing.T) {
	ctx := context.Background()
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	require.NoError(t, index.AddChunks(ctx, "doc", []types.Chunk{
		chunkWithVector("a", 0, []float32{1, 0}),
	}))
	require.NoError(t, index.DeleteIndex(ctx, "doc"))

	_, err = index.Query(ctx, "doc", []float32{1, 0}, 1)
	require.ErrorIs(t, err, types.ErrIndexNotFound)
	assert.Equal(t, 0, index.Size("doc"))
}

func TestMemoryVectorIndexConcurrentAddAndQuery(t *testing.T) {
	ctx := context.Background()
	index, err := NewMemoryVectorIndex(2)
	require.NoError(t, err)

	require.NoError(t, index.CreateIndex(ctx, "doc"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			chunk := chunkWithVector(fmt.Sprintf("w%d", n), n, []float32{1, float32(n)})
			assert.NoError(t, index.AddChunks(ctx, "doc", []types.Chunk{chunk}))
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := index.Query(ctx, "doc", []float32{1, 0}, 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, index.Size("doc"))
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, 1, cosineDistance([]float32{0, 0}, []float32{1, 1}), 1e-6)
	// Opposite vectors exceed 1; the index never clamps above, only below 0.
	assert.InDelta(t, 2, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-6)
}
