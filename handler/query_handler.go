package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vuongle/docquery-be/service"
	"github.com/vuongle/docquery-be/types"
)

type QueryHandler struct {
	workflow *service.WorkflowService
}

func NewQueryHandler(workflow *service.WorkflowService) *QueryHandler {
	return &QueryHandler{workflow: workflow}
}

// Query runs one question through the pipeline. The pipeline reports its
// own failures inside the result body, so this endpoint answers 200 for
// every well-formed request.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" || req.Question == "" {
		sendError(w, "document_id and question are required", http.StatusBadRequest)
		return
	}

	result := h.workflow.ProcessQuery(r.Context(), req)
	sendSuccess(w, result)
}

// Health reports process liveness.
func (h *QueryHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
