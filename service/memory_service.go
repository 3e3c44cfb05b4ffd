package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/types"
)

// Number of turns injected into prompts and the preview length each stored
// answer is cut to.
const (
	contextTurnCount    = 2
	answerPreviewLength = 200
)

// MemoryService adds conversational continuity on top of ConversationRepo.
// Appends to the same conversation are serialized through a per-id lock so
// turn order and the folder message count stay consistent under concurrent
// requests; different conversations never contend.
type MemoryService struct {
	repo  repository.ConversationRepo
	locks sync.Map // conversation id -> *sync.Mutex
}

func NewMemoryService(repo repository.ConversationRepo) *MemoryService {
	return &MemoryService{repo: repo}
}

func (s *MemoryService) lock(conversationID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Append records one Q&A turn. A conversation id defaulting to the document
// id is created on first use, titled after the question.
func (s *MemoryService) Append(ctx context.Context, conversationID, documentID, question, answer string, task types.TaskType) error {
	if conversationID == "" {
		conversationID = documentID
	}

	mu := s.lock(conversationID)
	mu.Lock()
	defer mu.Unlock()

	turn := &types.ConversationTurn{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		DocumentID:     documentID,
		Question:       question,
		Answer:         answer,
		TaskType:       task,
	}
	err := s.repo.AppendTurn(ctx, turn)
	if errors.Is(err, types.ErrConversationNotFound) {
		folder := &types.ConversationFolder{
			ID:         conversationID,
			Title:      conversationTitle(question),
			DocumentID: documentID,
		}
		if err := s.repo.CreateFolder(ctx, folder); err != nil {
			return err
		}
		err = s.repo.AppendTurn(ctx, turn)
	}
	return err
}

// Recent returns the most recent limit turns for a document, oldest first.
func (s *MemoryService) Recent(ctx context.Context, documentID string, limit int) ([]types.ConversationTurn, error) {
	return s.repo.RecentByDocument(ctx, documentID, limit)
}

// ContextDigest formats the last turns for prompt injection. Answers are
// truncated to a fixed preview so the digest cannot crowd out the
// retrieved passages.
func (s *MemoryService) ContextDigest(ctx context.Context, documentID string) string {
	turns, err := s.repo.RecentByDocument(ctx, documentID, contextTurnCount)
	if err != nil || len(turns) == 0 {
		return ""
	}

	parts := []string{"Previous conversation context:"}
	for _, turn := range turns {
		parts = append(parts, "Q: "+turn.Question)
		parts = append(parts, "A: "+truncate(turn.Answer, answerPreviewLength))
		parts = append(parts, "---")
	}
	return strings.Join(parts, "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func conversationTitle(question string) string {
	const maxTitleLength = 60
	title := strings.TrimSpace(question)
	if title == "" {
		return "New conversation"
	}
	return truncate(title, maxTitleLength)
}
