package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/vuongle/docquery-be/database"
	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/types"
)

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	ChunkSize:    1000,
	ChunkOverlap: 200,
}

// DocumentService extracts text from uploaded files, splits it into
// overlapping chunks and indexes the chunk embeddings per document.
type DocumentService struct {
	chunkSize    int
	chunkOverlap int
	embedder     Embedder
	index        database.VectorIndex
	store        repository.DocumentStore
}

func NewDocumentService(cfg types.DocumentServiceConfig, embedder Embedder, index database.VectorIndex, store repository.DocumentStore) *DocumentService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultDocumentServiceConfig.ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = DefaultDocumentServiceConfig.ChunkOverlap
	}
	return &DocumentService{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		embedder:     embedder,
		index:        index,
		store:        store,
	}
}

// ExtractText reads a supported file into plain text. PDF extraction shells
// out to pdftotext; txt and md files are read as-is.
func (s *DocumentService) ExtractText(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return extractTextWithPdftotext(filePath)
	case ".txt", ".md":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported file format %s", types.ErrExtractionFailed, filepath.Ext(filePath))
	}
}

func extractTextWithPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-enc", "UTF-8", "-nopgbrk", path, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: pdftotext: %v", types.ErrExtractionFailed, err)
	}
	text := out.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", types.ErrExtractionFailed, filepath.Base(path))
	}
	return text, nil
}

// ChunkText splits text into overlapping chunks, preferring sentence and
// word boundaries near the window end. Consecutive chunks share exactly
// chunkOverlap characters, so joining the first chunk with every later
// chunk minus its overlap prefix reconstructs the input. Two exceptions:
// a chunk shorter than the overlap starts the next window fresh, and a
// single token longer than the chunk size is emitted whole.
func (s *DocumentService) ChunkText(documentID, text string) []types.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []types.Chunk
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.boundaryEnd(runes, start, end)
		}

		piece := string(runes[start:end])
		chunks = append(chunks, types.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Text:       piece,
			Ordinal:    len(chunks),
			CharCount:  end - start,
		})

		if end == len(runes) {
			break
		}
		next := end - s.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundaryEnd moves the window end back to the nearest sentence end, or
// failing that a word boundary. A window with no boundary at all is one
// oversized token; it is extended forward and emitted whole.
func (s *DocumentService) boundaryEnd(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			return i + 1
		}
	}
	for i := end - 1; i > start; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	for end < len(runes) && !unicode.IsSpace(runes[end]) {
		end++
	}
	return end
}

// ProcessDocument runs the ingestion pipeline: chunk, embed, index and save
// metadata. The result carries a status field instead of an error so the
// serving layer can hand it to clients unchanged.
func (s *DocumentService) ProcessDocument(ctx context.Context, text string, doc *types.Document) types.ProcessResult {
	chunks := s.ChunkText(doc.ID, text)
	if len(chunks) == 0 {
		return types.ProcessResult{
			Status:     types.StatusError,
			DocumentID: doc.ID,
			Error:      "document contains no extractable text",
		}
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return types.ProcessResult{Status: types.StatusError, DocumentID: doc.ID, Error: err.Error()}
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := s.index.CreateIndex(ctx, doc.ID); err != nil {
		return types.ProcessResult{Status: types.StatusError, DocumentID: doc.ID, Error: err.Error()}
	}
	if err := s.index.AddChunks(ctx, doc.ID, chunks); err != nil {
		return types.ProcessResult{Status: types.StatusError, DocumentID: doc.ID, Error: err.Error()}
	}

	doc.TotalChunks = len(chunks)
	doc.TotalCharacters = len([]rune(text))
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return types.ProcessResult{Status: types.StatusError, DocumentID: doc.ID, Error: err.Error()}
	}
	log.Printf("Processed document %s: %d chunks, %d characters", doc.ID, doc.TotalChunks, doc.TotalCharacters)

	return types.ProcessResult{
		Status:          types.StatusSuccess,
		DocumentID:      doc.ID,
		TotalChunks:     doc.TotalChunks,
		TotalCharacters: doc.TotalCharacters,
	}
}

// DeleteDocument removes a document's metadata and its vector index.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.index.DeleteIndex(ctx, documentID); err != nil {
		log.Printf("Failed to delete index for document %s: %v", documentID, err)
	}
	return s.store.DeleteDocument(ctx, documentID)
}
