package service

import (
	"context"

	"github.com/vuongle/docquery-be/types"
)

// StreamHandler receives generated text fragments as they arrive.
type StreamHandler func(delta string)

// AIService generates text from a prompt. Implementations wrap provider
// failures in types.ErrGenerationFailed so callers can degrade without
// inspecting provider error types.
type AIService interface {
	Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error)
}

// StreamingAIService is implemented by providers that can stream partial
// output. The websocket layer uses it when available.
type StreamingAIService interface {
	AIService
	GenerateStream(ctx context.Context, prompt string, opts types.GenerateOptions, handler StreamHandler) error
}
