package types

// ConversationFolder groups the turns of one conversation. MessageCount is
// maintained, not derived: every appended turn increments it atomically.
type ConversationFolder struct {
	ID           string `bson:"_id" json:"id"`
	Title        string `bson:"title" json:"title"`
	DocumentID   string `bson:"document_id" json:"document_id"`
	DocumentType string `bson:"document_type" json:"document_type"`
	MessageCount int    `bson:"message_count" json:"message_count"`
	CreatedAt    int64  `bson:"created_at" json:"created_at"`
	UpdatedAt    int64  `bson:"updated_at" json:"updated_at"`
}

// ConversationTurn is one question/answer pair. Turns are append-only and
// ordered by timestamp.
type ConversationTurn struct {
	ID             string   `bson:"_id" json:"id"`
	ConversationID string   `bson:"conversation_id" json:"conversation_id"`
	DocumentID     string   `bson:"document_id" json:"document_id"`
	Question       string   `bson:"question" json:"question"`
	Answer         string   `bson:"answer" json:"answer"`
	TaskType       TaskType `bson:"task_type" json:"task_type"`
	Timestamp      int64    `bson:"timestamp" json:"timestamp"`
}
