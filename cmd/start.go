/*
Copyright © 2025 vuongle
*/
package cmd

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vuongle/docquery-be/config"
	"github.com/vuongle/docquery-be/database"
	"github.com/vuongle/docquery-be/handler"
	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/service"
	"github.com/vuongle/docquery-be/types"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document query server",
	Long:  `Starts the HTTP server that handles document uploads and query requests`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Storage backends
		var (
			documentStore    repository.DocumentStore
			conversationRepo repository.ConversationRepo
		)
		if cfg.UseMongo {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
			cancel()
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			mongoDb := mongoClient.Database(cfg.MongoDB)
			documentStore = repository.NewDocumentRepo(mongoDb.Collection("documents"))
			conversationRepo = repository.NewConversationRepo(mongoDb)
		} else {
			log.Println("MongoDB disabled, using in-process stores")
			documentStore = repository.NewMemoryDocumentStore()
			conversationRepo = repository.NewMemoryConversationRepo()
		}

		var vectorIndex database.VectorIndex
		if cfg.UseWeaviate {
			weaviateIndex, err := database.NewWeaviateIndex(cfg.Weaviate)
			if err != nil {
				log.Fatalf("Failed to connect to Weaviate: %v", err)
			}
			vectorIndex = weaviateIndex
		} else {
			log.Println("Weaviate disabled, using in-memory vector index")
			memoryIndex, err := database.NewMemoryVectorIndex(cfg.Embedding.Dimension)
			if err != nil {
				log.Fatalf("Failed to create vector index: %v", err)
			}
			vectorIndex = memoryIndex
		}

		// AI backends
		embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Embedding)
		var aiService service.AIService
		switch cfg.AIProvider {
		case "gemini":
			geminiService, err := service.NewGeminiService([]string{cfg.GeminiAPIKey}, cfg.Model)
			if err != nil {
				log.Fatalf("Failed to create Gemini service: %v", err)
			}
			aiService = geminiService
		default:
			aiService = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		}

		// Pipeline services
		documentService := service.NewDocumentService(
			types.DocumentServiceConfig{
				ChunkSize:    cfg.Pipeline.ChunkSize,
				ChunkOverlap: cfg.Pipeline.ChunkOverlap,
			},
			embedder, vectorIndex, documentStore,
		)
		retrievalService := service.NewRetrievalService(embedder, vectorIndex)
		supervisorService := service.NewSupervisorService(aiService)
		agentService := service.NewAgentService(aiService)
		memoryService := service.NewMemoryService(conversationRepo)
		workflowService := service.NewWorkflowService(
			documentService, retrievalService, supervisorService, agentService,
			memoryService, documentStore, cfg.Pipeline.GenerationTimeout,
		)
		websocketService := service.NewWebSocketService(workflowService)

		// Handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(cfg.UploadDir, documentService)
		queryHandler := handler.NewQueryHandler(workflowService)
		conversationHandler := handler.NewConversationHandler(conversationRepo)
		documentHandler := handler.NewDocumentHandler(cfg.UploadDir, documentStore, documentService)

		mux := http.NewServeMux()
		mux.HandleFunc("GET /health", queryHandler.Health)
		mux.HandleFunc("POST /api/v1/upload", uploadHandler.UploadDocument)
		mux.HandleFunc("POST /api/v1/query", queryHandler.Query)
		mux.HandleFunc("GET /api/v1/documents", documentHandler.ListDocuments)
		mux.HandleFunc("GET /api/v1/documents/get", documentHandler.GetDocument)
		mux.HandleFunc("DELETE /api/v1/documents/delete", documentHandler.DeleteDocument)
		mux.HandleFunc("GET /api/v1/documents/serve", documentHandler.ServeDocument)
		mux.HandleFunc("GET /api/v1/conversations", conversationHandler.ListConversations)
		mux.HandleFunc("POST /api/v1/conversations", conversationHandler.CreateConversation)
		mux.HandleFunc("GET /api/v1/conversations/{id}/messages", conversationHandler.ConversationMessages)
		mux.HandleFunc("PUT /api/v1/conversations/{id}/title", conversationHandler.RenameConversation)
		mux.HandleFunc("DELETE /api/v1/conversations/{id}", conversationHandler.DeleteConversation)
		mux.HandleFunc("/ws/chat", websocketService.HandleQuery)

		log.Printf("Starting server on port %s...", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, corsHandler.CorsMiddleware(mux)); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
