package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/vuongle/docquery-be/types"
)

// MemoryVectorIndex is an in-memory brute-force cosine index, one partition
// per document. Reads proceed concurrently; writes take the exclusive lock,
// so a batch add is never observed half-applied.
type MemoryVectorIndex struct {
	mu         sync.RWMutex
	dimension  int
	partitions map[string]*partition
}

type partition struct {
	chunks  []types.Chunk
	vectors [][]float32
}

// NewMemoryVectorIndex creates an index accepting vectors of the given
// dimension.
func NewMemoryVectorIndex(dimension int) (*MemoryVectorIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dimension)
	}
	return &MemoryVectorIndex{
		dimension:  dimension,
		partitions: make(map[string]*partition),
	}, nil
}

func (m *MemoryVectorIndex) CreateIndex(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[documentID]; !ok {
		m.partitions[documentID] = &partition{}
	}
	return nil
}

func (m *MemoryVectorIndex) AddChunks(ctx context.Context, documentID string, chunks []types.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != m.dimension {
			return fmt.Errorf("chunk %s: embedding dimension %d, index expects %d", c.ID, len(c.Embedding), m.dimension)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[documentID]
	if !ok {
		p = &partition{}
		m.partitions[documentID] = p
	}
	for _, c := range chunks {
		vec := make([]float32, m.dimension)
		copy(vec, c.Embedding)
		p.chunks = append(p.chunks, c)
		p.vectors = append(p.vectors, vec)
	}
	return nil
}

func (m *MemoryVectorIndex) Query(ctx context.Context, documentID string, vector []float32, k int) ([]ChunkDistance, error) {
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(vector), m.dimension)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.partitions[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, types.ErrIndexNotFound)
	}
	if k <= 0 || len(p.chunks) == 0 {
		return nil, nil
	}
	results := make([]ChunkDistance, len(p.chunks))
	for i, vec := range p.vectors {
		results[i] = ChunkDistance{Chunk: p.chunks[i], Distance: cosineDistance(vector, vec)}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (m *MemoryVectorIndex) DeleteIndex(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.partitions, documentID)
	return nil
}

// Size returns the number of chunks indexed for a document, 0 if none.
func (m *MemoryVectorIndex) Size(documentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.partitions[documentID]; ok {
		return len(p.chunks)
	}
	return 0
}

// cosineDistance returns 1 - cosine similarity. A zero vector on either side
// yields the maximum distance of 1.
func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	d := 1 - sim
	if d < 0 {
		d = 0
	}
	return float32(d)
}
