package service

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/vuongle/docquery-be/types"
)

// fakeEmbedder maps text to a bag-of-words vector: each lowercased word is
// hashed into one of dimension buckets. Deterministic, and texts sharing
// words land closer under cosine distance, which is enough to exercise
// retrieval ordering.
type fakeEmbedder struct {
	dimension int
	fail      bool
}

func newFakeEmbedder(dimension int) *fakeEmbedder {
	return &fakeEmbedder{dimension: dimension}
}

func (e *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, types.ErrEmbeddingFailed
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, types.ErrEmbeddingFailed
	}
	return e.embed(text), nil
}

func (e *fakeEmbedder) Dimension() int {
	return e.dimension
}

func (e *fakeEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%e.dimension]++
	}
	return vec
}

// fakeAI answers with a fixed reply, or dispatches through respond when
// set. Prompts are recorded for assertions.
type fakeAI struct {
	mu      sync.Mutex
	reply   string
	err     error
	respond func(prompt string) (string, error)
	prompts []string
}

func (a *fakeAI) Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()
	if a.respond != nil {
		return a.respond(prompt)
	}
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func (a *fakeAI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.prompts)
}

func (a *fakeAI) lastPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.prompts) == 0 {
		return ""
	}
	return a.prompts[len(a.prompts)-1]
}
