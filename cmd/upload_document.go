/*
Copyright © 2025 vuongle
*/
package cmd

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vuongle/docquery-be/config"
	"github.com/vuongle/docquery-be/database"
	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/service"
	"github.com/vuongle/docquery-be/types"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Ingest a document from the command line",
	Long: `Extracts text from a local file, chunks and embeds it, and writes
the chunks into the configured vector index so the document can be
queried through the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		documentID, _ := cmd.Flags().GetString("document-id")
		documentType, _ := cmd.Flags().GetString("document-type")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if filePath == "" {
			log.Fatal("--file is required")
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if !cfg.UseWeaviate {
			log.Fatal("CLI ingestion requires Weaviate; an in-memory index dies with this process")
		}
		if !cfg.UseMongo {
			log.Fatal("CLI ingestion requires MongoDB for document metadata")
		}

		weaviateIndex, err := database.NewWeaviateIndex(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate: %v", err)
		}
		if reinit {
			if err := weaviateIndex.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize index: %v", err)
			}
			log.Println("Index reinitialized, all documents dropped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		documentStore := repository.NewDocumentRepo(mongoClient.Database(cfg.MongoDB).Collection("documents"))

		embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Embedding)
		documentService := service.NewDocumentService(
			types.DocumentServiceConfig{
				ChunkSize:    cfg.Pipeline.ChunkSize,
				ChunkOverlap: cfg.Pipeline.ChunkOverlap,
			},
			embedder, weaviateIndex, documentStore,
		)

		text, err := documentService.ExtractText(filePath)
		if err != nil {
			log.Fatalf("Failed to extract text: %v", err)
		}

		if documentID == "" {
			documentID = uuid.New().String()
		}
		doc := &types.Document{
			ID:           documentID,
			Filename:     strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)),
			DocumentType: documentType,
			CreatedAt:    time.Now().Unix(),
		}
		result := documentService.ProcessDocument(context.Background(), text, doc)
		if result.Status != types.StatusSuccess {
			log.Fatalf("Ingestion failed: %s", result.Error)
		}
		log.Printf("Uploaded document %s: %d chunks, %d characters", result.DocumentID, result.TotalChunks, result.TotalCharacters)
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the file to ingest")
	uploadDocumentCmd.Flags().String("document-id", "", "Document id (generated when empty)")
	uploadDocumentCmd.Flags().String("document-type", "", "Document type hint (finance, legal, healthcare, ...)")
	uploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the vector index before ingesting")
}
