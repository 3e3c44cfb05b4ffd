package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/service"
	"github.com/vuongle/docquery-be/types"
)

type DocumentHandler struct {
	uploadDir string
	store     repository.DocumentStore
	documents *service.DocumentService
}

func NewDocumentHandler(uploadDir string, store repository.DocumentStore, documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		uploadDir: uploadDir,
		store:     store,
		documents: documents,
	}
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docs, err := h.store.ListDocuments(r.Context())
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []*types.Document{}
	}
	sendSuccess(w, docs)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("document_id")
	if id == "" {
		sendError(w, "document_id is required", http.StatusBadRequest)
		return
	}
	doc, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, doc)
}

// DeleteDocument removes the document's metadata and vector index.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("document_id")
	if id == "" {
		sendError(w, "document_id is required", http.StatusBadRequest)
		return
	}
	if err := h.documents.DeleteDocument(r.Context(), id); err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// ServeDocument streams an uploaded source file back to the client. Stored
// filenames carry a timestamp suffix the client does not know about, so
// the requested name is matched against the stored ones.
func (h *DocumentHandler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestedName := r.URL.Query().Get("file")
	if requestedName == "" {
		http.Error(w, "File parameter is required", http.StatusBadRequest)
		return
	}
	if strings.Contains(requestedName, "/") || strings.Contains(requestedName, "..") {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	actualFile, err := h.findFileWithTimestamp(requestedName)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", requestedName))
	http.ServeFile(w, r, filepath.Join(h.uploadDir, actualFile))
}

func (h *DocumentHandler) findFileWithTimestamp(requestedName string) (string, error) {
	files, err := os.ReadDir(h.uploadDir)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(requestedName)
	baseName := strings.TrimSuffix(requestedName, ext)
	for _, file := range files {
		name := file.Name()
		if filepath.Ext(name) != ext {
			continue
		}
		nameWithoutExt := strings.TrimSuffix(name, ext)
		if nameWithoutExt == baseName {
			return name, nil
		}
		lastUnderscoreIdx := strings.LastIndex(nameWithoutExt, "_")
		if lastUnderscoreIdx == -1 {
			continue
		}
		timestampPart := nameWithoutExt[lastUnderscoreIdx+1:]
		if len(timestampPart) != 10 && len(timestampPart) != 13 {
			continue
		}
		if _, err := strconv.ParseInt(timestampPart, 10, 64); err != nil {
			continue
		}
		if nameWithoutExt[:lastUnderscoreIdx] == baseName {
			return name, nil
		}
	}
	return "", fmt.Errorf("file not found: %s", requestedName)
}
