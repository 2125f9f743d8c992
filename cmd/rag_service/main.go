package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docurag/internal/config"
	"docurag/internal/database/milvus"
	"docurag/internal/database/minio"
	"docurag/internal/database/mysql"
	"docurag/internal/embedding"
	"docurag/internal/llm"
	"docurag/internal/models"
	"docurag/internal/rag/embeddings"
	"docurag/internal/rag/extract"
	"docurag/internal/rag/pipeline"
	"docurag/internal/rag/storages/objectstore"
	"docurag/internal/rag/storages/vectorstore"
	"docurag/internal/rag/summarize"
	"docurag/internal/rag_service/api"
	"docurag/internal/rag_service/dal"
	"docurag/internal/rag_service/service"
	"docurag/pkg/logger"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("rag_service")
	appLogger.Info("Logger initialized")

	ctx := context.Background()

	// Document registry.
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	if err := db.AutoMigrate(&models.DocumentRecord{}); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Document registry ready")

	// Vector index.
	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer milvusClient.Close()
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Milvus collection ready")

	// Object storage.
	minioClient, err := minio.GetClient(&cfg.Databases.MinIO)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	if err := minio.EnsureBucket(ctx, minioClient, cfg.Databases.MinIO.Bucket); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("MinIO bucket ready")

	// Models.
	embeddingClient, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Model clients initialized")

	// Pipelines and service.
	index, err := vectorstore.NewMilvusIndex(milvusClient, embeddings.NewAdapter(embeddingClient), appLogger)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	store := objectstore.NewMinioStore(minioClient, cfg.Databases.MinIO.Bucket, appLogger)
	extractor := extract.NewPDFExtractor(appLogger)
	summarizer := summarize.NewLLMSummarizer(llmClient,
		cfg.Summarizer.TextConcurrency, cfg.Summarizer.ImageConcurrency, appLogger)

	ingestion := pipeline.NewIngestionPipeline(extractor, summarizer, index, store, appLogger)
	query := pipeline.NewQueryPipeline(index, store, llmClient, 4, time.Hour, appLogger)

	ragService := service.NewRagService(ingestion, query, dal.NewDocumentDAL(db), "", appLogger)
	router := api.SetupRouter(api.NewHandler(ragService, appLogger))
	appLogger.Info("Dependencies injected")

	address := cfg.HTTP.Address
	if address == "" {
		address = ":8080"
	}
	server := &http.Server{Addr: address, Handler: router}

	go func() {
		appLogger.Info("Starting server on " + address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown: " + err.Error())
	}
	if err := mysql.Close(); err != nil {
		appLogger.Error("Failed to close database: " + err.Error())
	}
	appLogger.Info("Server stopped")
}
