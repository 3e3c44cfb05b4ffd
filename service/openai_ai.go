package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sashabaranov/go-openai"

	"github.com/vuongle/docquery-be/types"
)

var systemMessageDocumentAssistant = openai.ChatCompletionMessage{
	Role:    openai.ChatMessageRoleSystem,
	Content: "You are a document analysis assistant. You answer questions strictly from the document passages included in the prompt. If the passages do not contain the answer, say so instead of guessing.",
}

type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService builds an AIService over an OpenAI-compatible endpoint.
// baseURL may point at any server speaking the chat completion API.
func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (s *OpenAIService) Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				systemMessageDocumentAssistant,
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", types.ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) GenerateStream(ctx context.Context, prompt string, opts types.GenerateOptions, handler StreamHandler) error {
	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				systemMessageDocumentAssistant,
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			log.Println("Error receiving response from stream:", err)
			return fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
		}
		if len(resp.Choices) > 0 {
			handler(resp.Choices[0].Delta.Content)
		}
	}
}
