package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/types"
)

// WorkflowService wires the pipeline stages together. ProcessQuery is the
// outermost boundary: it always returns a well-formed QueryResult, never an
// error, so callers get a uniform response shape for every failure mode.
type WorkflowService struct {
	documents         *DocumentService
	retrieval         *RetrievalService
	supervisor        *SupervisorService
	agents            *AgentService
	memory            *MemoryService
	store             repository.DocumentStore
	generationTimeout time.Duration
}

func NewWorkflowService(
	documents *DocumentService,
	retrieval *RetrievalService,
	supervisor *SupervisorService,
	agents *AgentService,
	memory *MemoryService,
	store repository.DocumentStore,
	generationTimeout time.Duration,
) *WorkflowService {
	if generationTimeout <= 0 {
		generationTimeout = 60 * time.Second
	}
	return &WorkflowService{
		documents:         documents,
		retrieval:         retrieval,
		supervisor:        supervisor,
		agents:            agents,
		memory:            memory,
		store:             store,
		generationTimeout: generationTimeout,
	}
}

// ProcessQuery answers a question about an uploaded document. The request
// flows digest -> classify -> retrieve -> respond -> append; a failure in
// any stage degrades to a diagnostic answer with status "error" or to the
// stage's documented fallback.
func (s *WorkflowService) ProcessQuery(ctx context.Context, req types.QueryRequest) types.QueryResult {
	ctx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	doc, err := s.store.GetDocument(ctx, req.DocumentID)
	if err != nil {
		log.Printf("Query for unknown document %s: %v", req.DocumentID, err)
		return types.QueryResult{
			Answer:           fmt.Sprintf("## Error\n\nDocument %s was not found. Upload the document before querying it.", req.DocumentID),
			TaskType:         types.DefaultTaskType,
			OriginalSections: []types.RetrievedPassage{},
			Status:           types.StatusError,
		}
	}

	documentType := req.DocumentType
	if documentType == "" {
		documentType = doc.DocumentType
	}

	digest := s.memory.ContextDigest(ctx, req.DocumentID)
	task := s.supervisor.Classify(ctx, req.Question, digest, documentType)
	passages := s.retrieval.Retrieve(ctx, req.DocumentID, req.Question, s.agents.PassageCount(task))
	answer := s.agents.Respond(ctx, task, req.Question, passages, digest, documentType)

	if err := s.memory.Append(ctx, req.ConversationID, req.DocumentID, req.Question, answer, task); err != nil {
		log.Printf("Failed to record conversation turn for document %s: %v", req.DocumentID, err)
	}

	if passages == nil {
		passages = []types.RetrievedPassage{}
	}
	return types.QueryResult{
		Answer:           answer,
		TaskType:         task,
		OriginalSections: passages,
		Status:           types.StatusSuccess,
	}
}

// ProcessDocument ingests already-extracted text under the given document
// metadata.
func (s *WorkflowService) ProcessDocument(ctx context.Context, text string, doc *types.Document) types.ProcessResult {
	return s.documents.ProcessDocument(ctx, text, doc)
}
