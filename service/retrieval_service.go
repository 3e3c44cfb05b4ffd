package service

import (
	"context"
	"log"

	"github.com/vuongle/docquery-be/database"
	"github.com/vuongle/docquery-be/types"
)

// RetrievalService ranks a document's chunks against a query. Retrieval is
// best-effort: any downstream failure degrades to an empty result because
// absence of context is a meaningful signal for the response layer.
type RetrievalService struct {
	embedder Embedder
	index    database.VectorIndex
}

func NewRetrievalService(embedder Embedder, index database.VectorIndex) *RetrievalService {
	return &RetrievalService{embedder: embedder, index: index}
}

// Retrieve returns up to k passages sorted most similar first. Never
// returns an error.
func (s *RetrievalService) Retrieve(ctx context.Context, documentID, query string, k int) []types.RetrievedPassage {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		log.Printf("Retrieval: embedding failed for document %s: %v", documentID, err)
		return nil
	}

	results, err := s.index.Query(ctx, documentID, vector, k)
	if err != nil {
		log.Printf("Retrieval: index query failed for document %s: %v", documentID, err)
		return nil
	}

	passages := make([]types.RetrievedPassage, 0, len(results))
	for _, result := range results {
		passages = append(passages, types.RetrievedPassage{
			Text:      result.Chunk.Text,
			Distance:  result.Distance,
			Relevance: clamp01(1 - result.Distance),
		})
	}
	return passages
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
