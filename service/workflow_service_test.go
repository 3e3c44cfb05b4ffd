package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuongle/docquery-be/database"
	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/types"
)

// classifierThenAnswer routes the classification prompt to a fixed task
// token and every other prompt to a fixed answer.
func classifierThenAnswer(task, answer string) func(prompt string) (string, error) {
	return func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Classify this document question") {
			return task, nil
		}
		return answer, nil
	}
}

type workflowFixture struct {
	workflow *WorkflowService
	repo     *repository.MemoryConversationRepo
	store    *repository.MemoryDocumentStore
	ai       *fakeAI
}

func newWorkflowFixture(t *testing.T, ai *fakeAI) *workflowFixture {
	t.Helper()
	embedder := newFakeEmbedder(16)
	index, err := database.NewMemoryVectorIndex(16)
	require.NoError(t, err)
	store := repository.NewMemoryDocumentStore()
	repo := repository.NewMemoryConversationRepo()

	documents := NewDocumentService(
		types.DocumentServiceConfig{ChunkSize: 120, ChunkOverlap: 20},
		embedder, index, store,
	)
	workflow := NewWorkflowService(
		documents,
		NewRetrievalService(embedder, index),
		NewSupervisorService(ai),
		NewAgentService(ai),
		NewMemoryService(repo),
		store,
		30*time.Second,
	)
	return &workflowFixture{workflow: workflow, repo: repo, store: store, ai: ai}
}

const policyText = "Personal data such as names and email addresses is collected during registration. " +
	"Collected data is shared only with payment processors and never sold to advertisers. " +
	"All records are deleted within thirty days of an account closure request."

func TestProcessQueryUnknownDocument(t *testing.T) {
	fx := newWorkflowFixture(t, &fakeAI{reply: "extraction"})

	result := fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "never-uploaded",
		Question:   "What data is collected?",
	})

	assert.Equal(t, types.StatusError, result.Status)
	assert.NotEmpty(t, result.Answer)
	assert.Contains(t, result.Answer, "never-uploaded")
	assert.Empty(t, result.OriginalSections)
	// No model call is made for a document that does not exist.
	assert.Equal(t, 0, fx.ai.calls())
}

func TestProcessQueryExtractionScenario(t *testing.T) {
	ai := &fakeAI{respond: classifierThenAnswer("extraction", "## Key Information\n- names and email addresses")}
	fx := newWorkflowFixture(t, ai)

	doc := &types.Document{ID: "doc-1", Filename: "policy", DocumentType: "privacy policy"}
	ingest := fx.workflow.ProcessDocument(context.Background(), policyText, doc)
	require.Equal(t, types.StatusSuccess, ingest.Status)
	require.GreaterOrEqual(t, ingest.TotalChunks, 3)

	result := fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "doc-1",
		Question:   "What data is collected?",
	})

	assert.Equal(t, types.StatusSuccess, result.Status)
	assert.Equal(t, types.TaskExtraction, result.TaskType)
	assert.NotEmpty(t, result.OriginalSections)
	assert.LessOrEqual(t, len(result.OriginalSections), 4)
	assert.Equal(t, "## Key Information\n- names and email addresses", result.Answer)

	// Every retrieved section belongs to the ingested document text.
	for _, section := range result.OriginalSections {
		assert.Contains(t, policyText, strings.TrimSpace(section.Text))
		assert.GreaterOrEqual(t, section.Relevance, float32(0))
		assert.LessOrEqual(t, section.Relevance, float32(1))
	}
}

func TestProcessQueryRecordsConversationTurn(t *testing.T) {
	ai := &fakeAI{respond: classifierThenAnswer("extraction", "the answer")}
	fx := newWorkflowFixture(t, ai)

	doc := &types.Document{ID: "doc-1", Filename: "policy"}
	require.Equal(t, types.StatusSuccess, fx.workflow.ProcessDocument(context.Background(), policyText, doc).Status)

	fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "doc-1",
		Question:   "What data is collected?",
	})

	folder, err := fx.repo.GetFolder(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, folder.MessageCount)

	turns, err := fx.repo.Turns(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "What data is collected?", turns[0].Question)
	assert.Equal(t, "the answer", turns[0].Answer)
	assert.Equal(t, types.TaskExtraction, turns[0].TaskType)
}

func TestProcessQuerySecondTurnSeesContext(t *testing.T) {
	ai := &fakeAI{respond: classifierThenAnswer("extraction", "first answer")}
	fx := newWorkflowFixture(t, ai)

	doc := &types.Document{ID: "doc-1", Filename: "policy"}
	require.Equal(t, types.StatusSuccess, fx.workflow.ProcessDocument(context.Background(), policyText, doc).Status)

	fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "doc-1",
		Question:   "What data is collected?",
	})
	fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "doc-1",
		Question:   "And who is it shared with?",
	})

	// The second round's prompts carry the first question as context.
	assert.Contains(t, fx.ai.lastPrompt(), "What data is collected?")
}

func TestProcessQueryGenerationFailureDegrades(t *testing.T) {
	ai := &fakeAI{err: types.ErrGenerationFailed}
	fx := newWorkflowFixture(t, ai)

	doc := &types.Document{ID: "doc-1", Filename: "policy"}
	require.Equal(t, types.StatusSuccess, fx.workflow.ProcessDocument(context.Background(), policyText, doc).Status)

	result := fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "doc-1",
		Question:   "analyze the risks",
	})

	// Classification falls back to keywords, generation failure becomes an
	// error answer; the pipeline itself still reports success.
	assert.Equal(t, types.StatusSuccess, result.Status)
	assert.Equal(t, types.TaskAnalysis, result.TaskType)
	assert.True(t, strings.HasPrefix(result.Answer, "## Error"))
}

func TestProcessQueryDocumentTypeFromMetadata(t *testing.T) {
	ai := &fakeAI{respond: classifierThenAnswer("explanation", "answer")}
	fx := newWorkflowFixture(t, ai)

	doc := &types.Document{ID: "doc-1", Filename: "policy", DocumentType: "healthcare"}
	require.Equal(t, types.StatusSuccess, fx.workflow.ProcessDocument(context.Background(), policyText, doc).Status)

	fx.workflow.ProcessQuery(context.Background(), types.QueryRequest{
		DocumentID: "doc-1",
		Question:   "does this explain my rights",
	})
	assert.Contains(t, fx.ai.lastPrompt(), "healthcare")
}
