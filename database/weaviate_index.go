package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/vuongle/docquery-be/config"
	"github.com/vuongle/docquery-be/types"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "ordinal", DataType: []string{"int"}},
			{Name: "charCount", DataType: []string{"int"}},
		},
		// Vectors are supplied by the embedder, not a vectorizer module.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// WeaviateIndex stores chunk vectors in a single Weaviate class partitioned
// by the documentId property. Distance metric is Weaviate's cosine distance.
type WeaviateIndex struct {
	client *weaviate.Client
}

func NewWeaviateIndex(cfg config.WeaviateConfig) (*WeaviateIndex, error) {
	scheme := "http"
	if strings.HasPrefix(cfg.Host, "https") {
		scheme = "https"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Host, "https://"), "http://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	hasClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasClass = true
			break
		}
	}
	if !hasClass {
		if err := client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
		}
	}
	return &WeaviateIndex{client: client}, nil
}

// ReInit drops and recreates the chunk class, wiping every document.
func (s *WeaviateIndex) ReInit() error {
	if err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background()); err != nil {
		return fmt.Errorf("failed to delete %s class: %w", CHUNK_CLASS, err)
	}
	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background()); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	return nil
}

// CreateIndex is a no-op: partitions materialize with the first AddChunks.
func (s *WeaviateIndex) CreateIndex(ctx context.Context, documentID string) error {
	return nil
}

func (s *WeaviateIndex) AddChunks(ctx context.Context, documentID string, chunks []types.Chunk) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}
		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: CHUNK_CLASS,
				Properties: map[string]interface{}{
					"text":       chunks[j].Text,
					"documentId": documentID,
					"chunkId":    chunks[j].ID,
					"ordinal":    chunks[j].Ordinal,
					"charCount":  chunks[j].CharCount,
				},
				Vector: chunks[j].Embedding,
			})
		}
		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *WeaviateIndex) Query(ctx context.Context, documentID string, vector []float32, k int) ([]ChunkDistance, error) {
	fields := []graphql.Field{
		{Name: "text"},
		{Name: "documentId"},
		{Name: "chunkId"},
		{Name: "ordinal"},
		{Name: "charCount"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("vector query failed: %v", result.Errors[0].Message)
	}

	var out []ChunkDistance
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			cd := ChunkDistance{
				Chunk: types.Chunk{
					DocumentID: documentID,
					Text:       asString(obj["text"]),
					ID:         asString(obj["chunkId"]),
					Ordinal:    asInt(obj["ordinal"]),
					CharCount:  asInt(obj["charCount"]),
				},
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if d, ok := additional["distance"].(float64); ok {
					cd.Distance = float32(d)
				}
			}
			out = append(out, cd)
		}
	}
	// Every ingested document has at least one chunk, so an empty result
	// means the document was never indexed.
	if len(out) == 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, types.ErrIndexNotFound)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Chunk.Ordinal < out[j].Chunk.Ordinal
	})
	return out, nil
}

func (s *WeaviateIndex) DeleteIndex(ctx context.Context, documentID string) error {
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	return err
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asInt(v interface{}) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
