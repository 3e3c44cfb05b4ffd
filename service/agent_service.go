package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/vuongle/docquery-be/prompts"
	"github.com/vuongle/docquery-be/types"
)

// Passage counts and generation options per task type. Summary consumes
// more context than the focused strategies.
const (
	defaultPassageCount = 4
	summaryPassageCount = 8
)

var generateOptionsByTask = map[types.TaskType]types.GenerateOptions{
	types.TaskExplanation: {Temperature: 0.2, MaxTokens: 800},
	types.TaskAnalysis:    {Temperature: 0.1, MaxTokens: 1000},
	types.TaskExtraction:  {Temperature: 0.1, MaxTokens: 600},
	types.TaskSummary:     {Temperature: 0.1, MaxTokens: 1500},
}

// AgentService renders the answering prompt for a task type and runs
// generation. Respond never returns an error: every failure mode becomes
// an answer string the caller can show as-is.
type AgentService struct {
	ai AIService
}

func NewAgentService(ai AIService) *AgentService {
	return &AgentService{ai: ai}
}

// PassageCount reports how many retrieved passages the strategy for task
// consumes.
func (s *AgentService) PassageCount(task types.TaskType) int {
	if task == types.TaskSummary {
		return summaryPassageCount
	}
	return defaultPassageCount
}

// Respond answers the query from the supplied passages. An empty passage
// list short-circuits to a fixed "not found" answer without a model call,
// so the answer can never be fabricated from nothing.
func (s *AgentService) Respond(ctx context.Context, task types.TaskType, query string, passages []types.RetrievedPassage, conversationContext, documentType string) string {
	if len(passages) == 0 {
		return notFoundAnswer(documentType)
	}

	if count := s.PassageCount(task); len(passages) > count {
		passages = passages[:count]
	}
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}

	prompt, err := prompts.ForTask(task, prompts.Data{
		DocumentType:        documentType,
		Query:               query,
		Context:             strings.Join(texts, "\n"),
		ConversationContext: conversationContext,
	})
	if err != nil {
		log.Printf("Prompt rendering failed for task %s: %v", task, err)
		return errorAnswer(err)
	}

	opts, ok := generateOptionsByTask[task]
	if !ok {
		opts = generateOptionsByTask[types.DefaultTaskType]
	}
	answer, err := s.ai.Generate(ctx, prompt, opts)
	if err != nil {
		log.Printf("Generation failed for task %s: %v", task, err)
		return errorAnswer(err)
	}
	return strings.TrimSpace(answer)
}

func notFoundAnswer(documentType string) string {
	if documentType == "" {
		documentType = "document"
	}
	return fmt.Sprintf("## No Relevant Content Found\n\nI could not find relevant information in the %s to answer your question. Try rephrasing, or ask about a different part of the document.", documentType)
}

func errorAnswer(err error) string {
	return fmt.Sprintf("## Error\n\nI encountered an error processing your question: %v", err)
}
