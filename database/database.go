package database

import (
	"context"

	"github.com/vuongle/docquery-be/types"
)

// ChunkDistance pairs a chunk with its distance to a query vector.
// Distance is cosine distance: 0 identical, 2 opposite.
type ChunkDistance struct {
	Chunk    types.Chunk
	Distance float32
}

// VectorIndex is a per-document nearest-neighbor store. Indexes are strictly
// partitioned by document id; a query never returns chunks from another
// document. Query results come back in ascending-distance order with ties
// broken by chunk ordinal. Querying an unknown document id fails with
// types.ErrIndexNotFound.
type VectorIndex interface {
	CreateIndex(ctx context.Context, documentID string) error
	AddChunks(ctx context.Context, documentID string, chunks []types.Chunk) error
	Query(ctx context.Context, documentID string, vector []float32, k int) ([]ChunkDistance, error)
	DeleteIndex(ctx context.Context, documentID string) error
}
