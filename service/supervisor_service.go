package service

import (
	"context"
	"log"
	"strings"

	"github.com/vuongle/docquery-be/prompts"
	"github.com/vuongle/docquery-be/types"
)

// Keyword tables for the heuristic fallback, checked in priority order.
// Analysis wins over extraction so "analyze what changed" is not treated
// as a lookup.
var (
	analysisKeywords = []string{
		"analyze", "compliance", "risk", "check", "assess", "evaluate", "review",
		"gdpr", "hipaa", "regulation", "audit", "legal",
	}
	extractionKeywords = []string{
		"what", "who", "when", "where", "how", "which", "list", "find", "show", "extract",
	}
	explanationKeywords = []string{
		"explain", "simple", "understand", "mean", "clarify",
	}
	summaryKeywords = []string{
		"summary", "overview", "summarize", "key points", "main points",
	}
	interrogativePrefixes = []string{"what", "who", "when", "where", "how", "which"}

	comprehensivePatterns = []string{"comprehensive analysis", "initial analysis", "full analysis"}
	summaryQualifiers     = []string{"complete", "full", "comprehensive", "detailed"}
)

const longQueryThreshold = 300

// SupervisorService routes a query to a task type. Classification is a
// total function: the generative tier may fail or answer outside the
// enumeration, in which case the keyword tier decides.
type SupervisorService struct {
	ai AIService
}

func NewSupervisorService(ai AIService) *SupervisorService {
	return &SupervisorService{ai: ai}
}

func (s *SupervisorService) Classify(ctx context.Context, query, conversationContext, documentType string) types.TaskType {
	queryLower := strings.ToLower(query)

	// Broad requests are force-routed to summary regardless of what the
	// model would say.
	if isComprehensiveRequest(queryLower, len(query)) {
		return types.TaskSummary
	}

	if task, ok := s.classifyGenerative(ctx, query, conversationContext, documentType); ok {
		return task
	}
	return classifyByKeywords(queryLower)
}

func (s *SupervisorService) classifyGenerative(ctx context.Context, query, conversationContext, documentType string) (types.TaskType, bool) {
	prompt, err := prompts.Classification(prompts.Data{
		DocumentType:        documentType,
		Query:               query,
		ConversationContext: conversationContext,
	})
	if err != nil {
		log.Printf("Classification prompt error: %v", err)
		return "", false
	}

	answer, err := s.ai.Generate(ctx, prompt, types.GenerateOptions{Temperature: 0.1, MaxTokens: 10})
	if err != nil {
		log.Printf("Generative classification failed, falling back to keywords: %v", err)
		return "", false
	}

	return types.ParseTaskType(strings.ToLower(strings.TrimSpace(answer)))
}

func isComprehensiveRequest(queryLower string, queryLen int) bool {
	for _, pattern := range comprehensivePatterns {
		if strings.Contains(queryLower, pattern) {
			return true
		}
	}
	if strings.Contains(queryLower, "summary") {
		for _, qualifier := range summaryQualifiers {
			if strings.Contains(queryLower, qualifier) {
				return true
			}
		}
	}
	return queryLen > longQueryThreshold
}

func classifyByKeywords(queryLower string) types.TaskType {
	switch {
	case containsAny(queryLower, analysisKeywords):
		return types.TaskAnalysis
	case containsAny(queryLower, extractionKeywords):
		return types.TaskExtraction
	case containsAny(queryLower, explanationKeywords):
		return types.TaskExplanation
	case containsAny(queryLower, summaryKeywords):
		return types.TaskSummary
	}
	for _, prefix := range interrogativePrefixes {
		if strings.HasPrefix(queryLower, prefix) {
			return types.TaskExtraction
		}
	}
	return types.DefaultTaskType
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
