package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vuongle/docquery-be/service"
	"github.com/vuongle/docquery-be/types"
	"github.com/vuongle/docquery-be/utils"
)

const maxUploadSize = 10 << 20 // 10MB

type UploadHandler struct {
	uploadDir string
	documents *service.DocumentService
}

func NewUploadHandler(uploadDir string, documents *service.DocumentService) *UploadHandler {
	return &UploadHandler{
		uploadDir: uploadDir,
		documents: documents,
	}
}

// UploadDocument accepts a multipart upload, saves the file, extracts its
// text and runs the ingestion pipeline. The response carries the new
// document id clients use for querying.
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var req types.UploadRequest
	if metadata := r.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			sendError(w, "Invalid metadata", http.StatusBadRequest)
			return
		}
	}
	if req.Title == "" {
		req.Title = header.Filename
	}

	savedPath, err := utils.SaveUploadedFile(file, header.Filename, h.uploadDir)
	if err != nil {
		log.Println("Failed to save uploaded file:", err)
		sendError(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	text, err := h.documents.ExtractText(savedPath)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc := &types.Document{
		ID:           uuid.New().String(),
		Filename:     req.Title,
		DocumentType: req.DocumentType,
		CreatedAt:    time.Now().Unix(),
	}
	result := h.documents.ProcessDocument(r.Context(), text, doc)
	if result.Status != types.StatusSuccess {
		sendError(w, result.Error, http.StatusInternalServerError)
		return
	}

	sendSuccess(w, types.UploadResponse{
		DocumentID:      doc.ID,
		Filename:        doc.Filename,
		TotalChunks:     result.TotalChunks,
		TotalCharacters: result.TotalCharacters,
		Status:          result.Status,
	})
}
