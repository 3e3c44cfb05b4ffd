package types

// Chunk is a bounded slice of document text. Embedding is filled in after
// chunking and has the embedder's declared dimension.
type Chunk struct {
	ID         string    `bson:"_id" json:"id"`
	DocumentID string    `bson:"document_id" json:"document_id"`
	Text       string    `bson:"text" json:"text"`
	Ordinal    int       `bson:"ordinal" json:"ordinal"`
	CharCount  int       `bson:"char_count" json:"char_count"`
	Embedding  []float32 `bson:"-" json:"-"`
}

// Document is the ingestion-time metadata kept for an uploaded file.
// Chunks are owned by the document and are deleted with it.
type Document struct {
	ID              string `bson:"_id" json:"id"`
	Filename        string `bson:"filename" json:"filename"`
	DocumentType    string `bson:"document_type" json:"document_type"`
	TotalChunks     int    `bson:"total_chunks" json:"total_chunks"`
	TotalCharacters int    `bson:"total_characters" json:"total_characters"`
	CreatedAt       int64  `bson:"created_at" json:"created_at"`
}

// DocumentServiceConfig configures chunking.
type DocumentServiceConfig struct {
	ChunkSize    int // maximum chunk length in characters
	ChunkOverlap int // characters of context shared by consecutive chunks
}

// UploadRequest carries the metadata sent alongside an uploaded file.
type UploadRequest struct {
	Title        string `json:"title"`
	DocumentType string `json:"document_type"`
}
