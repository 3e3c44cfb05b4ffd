package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/types"
)

type ConversationHandler struct {
	conversations repository.ConversationRepo
}

func NewConversationHandler(conversations repository.ConversationRepo) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	folders, err := h.conversations.ListFolders(r.Context())
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if folders == nil {
		folders = []types.ConversationFolder{}
	}
	sendSuccess(w, types.ConversationListResponse{Conversations: folders})
}

func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req types.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		sendError(w, "title is required", http.StatusBadRequest)
		return
	}
	folder := &types.ConversationFolder{
		ID:           uuid.New().String(),
		Title:        req.Title,
		DocumentID:   req.DocumentID,
		DocumentType: req.DocumentType,
	}
	if err := h.conversations.CreateFolder(r.Context(), folder); err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, folder)
}

// ConversationMessages returns all turns of one conversation, oldest first.
func (h *ConversationHandler) ConversationMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.conversations.GetFolder(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrConversationNotFound) {
			sendError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	turns, err := h.conversations.Turns(r.Context(), id)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if turns == nil {
		turns = []types.ConversationTurn{}
	}
	sendSuccess(w, types.ConversationMessagesResponse{ConversationID: id, Messages: turns})
}

func (h *ConversationHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req types.RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		sendError(w, "title is required", http.StatusBadRequest)
		return
	}
	if err := h.conversations.RenameFolder(r.Context(), id, req.Title); err != nil {
		if errors.Is(err, types.ErrConversationNotFound) {
			sendError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.conversations.DeleteFolder(r.Context(), r.PathValue("id")); err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}
