package types

type QueryRequest struct {
	DocumentID     string `json:"document_id"`
	Question       string `json:"question"`
	DocumentType   string `json:"document_type,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type CreateConversationRequest struct {
	Title        string `json:"title"`
	DocumentID   string `json:"document_id,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

type RenameConversationRequest struct {
	Title string `json:"title"`
}

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketQuery = "query"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
