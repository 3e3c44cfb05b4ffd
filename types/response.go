package types

// DataResponse is the envelope for every JSON endpoint.
type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	TotalChunks     int    `json:"total_chunks"`
	TotalCharacters int    `json:"total_characters"`
	Status          string `json:"status"`
}

type ConversationListResponse struct {
	Conversations []ConversationFolder `json:"conversations"`
}

type ConversationMessagesResponse struct {
	ConversationID string             `json:"conversation_id"`
	Messages       []ConversationTurn `json:"messages"`
}
