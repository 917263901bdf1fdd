package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"docstream-be/internal/config"
	"docstream-be/internal/controller"
	"docstream-be/internal/pkg/logger"
	"docstream-be/internal/repository/implementation"
	"docstream-be/internal/service"
	"docstream-be/internal/worker"
	"docstream-be/pkg/artifact"
	"docstream-be/pkg/bus"
	"docstream-be/pkg/cache"
	"docstream-be/pkg/chunker"
	"docstream-be/pkg/embedding"
	"docstream-be/pkg/metrics"
	"docstream-be/pkg/objectstore"
	"docstream-be/pkg/ocr"
	"docstream-be/pkg/pipeline"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container wires the REST API side: controllers plus the infrastructure the
// ingest and retrieval services need.
type Container struct {
	PipelineController  controller.IPipelineController
	RetrievalController controller.IRetrievalController
	HealthController    controller.IHealthController

	EventBus bus.Bus
	Logger   logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	eventBus, err := buildBus(cfg)
	if err != nil {
		return nil, err
	}

	embeddingProvider := buildEmbeddingProvider(cfg)
	vectorCache := buildVectorCache(cfg)

	docRepo := implementation.NewDocumentRepository(db)
	chunkRepo := implementation.NewChunkRepository(db)

	ingestService := service.NewIngestService(eventBus, docRepo, sysLogger)
	retrievalService := service.NewRetrievalService(
		docRepo,
		chunkRepo,
		embeddingProvider,
		vectorCache,
		cfg.Embedding.Dim,
		cfg.Embedding.Metric,
		sysLogger,
	)

	return &Container{
		PipelineController:  controller.NewPipelineController(ingestService),
		RetrievalController: controller.NewRetrievalController(retrievalService),
		HealthController:    controller.NewHealthController(db),
		EventBus:            eventBus,
		Logger:              sysLogger,
	}, nil
}

// WorkerContainer wires the stage-worker side: one Runner per pipeline stage,
// ready for a worker process to run any subset of them.
type WorkerContainer struct {
	Runners   map[string]*worker.Runner
	Metrics   *metrics.WorkerMetrics
	Artifacts *artifact.Store
	EventBus  bus.Bus
	Logger    logger.ILogger
}

func NewWorkerContainer(db *gorm.DB, cfg *config.Config) (*WorkerContainer, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	eventBus, err := buildBus(cfg)
	if err != nil {
		return nil, err
	}

	objectStore, err := buildObjectStore(cfg)
	if err != nil {
		return nil, err
	}

	artifacts, err := artifact.Open(cfg.Artifact.Path, cfg.Artifact.InMemory)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}

	embeddingProvider := buildEmbeddingProvider(cfg)
	ocrClient := ocr.NewHttpClient(cfg.Ocr.BaseURL, cfg.Ocr.TimeoutSeconds)

	docRepo := implementation.NewDocumentRepository(db)
	chunkRepo := implementation.NewChunkRepository(db)

	workerMeter := metrics.NewWorkerMetrics()
	backoff := pipeline.Backoff{
		Base:   time.Duration(cfg.Pipeline.BackoffBaseMs) * time.Millisecond,
		Max:    time.Duration(cfg.Pipeline.BackoffMaxMs) * time.Millisecond,
		Factor: 2,
	}

	stages := []worker.Stage{
		worker.NewIngestStage(objectStore, docRepo),
		worker.NewOcrStage(objectStore, ocrClient, artifacts, docRepo),
		worker.NewChunkerStage(artifacts, docRepo, chunkRepo, chunker.Config{
			MaxChars: cfg.Chunking.MaxChars,
			Overlap:  cfg.Chunking.Overlap,
			MinChars: cfg.Chunking.MinChars,
		}),
		worker.NewEmbedderStage(
			embeddingProvider,
			docRepo,
			chunkRepo,
			cfg.Embedding.Dim,
			cfg.Embedding.Version,
			cfg.Embedding.Concurrency,
		),
		worker.NewIndexerStage(docRepo, chunkRepo, cfg.Embedding.Version),
	}

	runners := make(map[string]*worker.Runner, len(stages))
	for _, stage := range stages {
		runners[stage.Name()] = worker.NewRunner(
			stage,
			eventBus,
			docRepo,
			workerMeter,
			sysLogger,
			allPartitions(cfg.Pipeline.Partitions),
			cfg.Pipeline.MaxAttempts,
			backoff,
		)
	}

	return &WorkerContainer{
		Runners:   runners,
		Metrics:   workerMeter,
		Artifacts: artifacts,
		EventBus:  eventBus,
		Logger:    sysLogger,
	}, nil
}

// allPartitions is the single-deployment default: each worker process
// consumes every partition. Splitting the slice across processes scales a
// stage out without breaking per-document ordering.
func allPartitions(n int) []int {
	if n < 1 {
		n = 1
	}
	parts := make([]int, n)
	for i := range parts {
		parts[i] = i
	}
	return parts
}

func buildBus(cfg *config.Config) (bus.Bus, error) {
	if cfg.Pipeline.Bus == "channel" {
		log.Printf("[INFO] Using in-process channel bus")
		return bus.NewChannelBus(), nil
	}
	eventBus, err := bus.NewJetStreamBus(cfg.App.NatsURL, cfg.Pipeline.Partitions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS JetStream: %w", err)
	}
	log.Printf("[INFO] Using NATS JetStream bus (%s)", cfg.App.NatsURL)
	return eventBus, nil
}

func buildObjectStore(cfg *config.Config) (*objectstore.Multi, error) {
	providers := map[string]objectstore.Config{
		"gcs":   {Endpoint: cfg.ObjectStore.GcsEndpoint, Token: cfg.ObjectStore.GcsToken},
		"s3":    {Endpoint: cfg.ObjectStore.S3Endpoint, Token: cfg.ObjectStore.S3Token},
		"minio": {Endpoint: cfg.ObjectStore.MinioEndpoint, Token: cfg.ObjectStore.MinioToken},
	}

	stores := make(map[string]objectstore.Store, len(providers))
	for name, providerCfg := range providers {
		providerCfg.TimeoutSeconds = cfg.ObjectStore.TimeoutSeconds
		store, err := objectstore.New(name, providerCfg)
		if err != nil {
			return nil, err
		}
		stores[name] = store
	}
	return objectstore.NewMulti(stores), nil
}

// buildEmbeddingProvider selects the embedding backend from config.
func buildEmbeddingProvider(cfg *config.Config) embedding.Provider {
	switch cfg.Embedding.Provider {
	case "openai":
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Embedding.OpenAIModel)
		return embedding.NewOpenAIProvider(cfg.Embedding.OpenAIKey, cfg.Embedding.OpenAIBaseURL, cfg.Embedding.OpenAIModel)
	case "gemini":
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Embedding.GeminiModel)
		return embedding.NewGeminiProvider(cfg.Embedding.GeminiKey, cfg.Embedding.GeminiModel)
	default:
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Embedding.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Embedding.OllamaBaseURL, cfg.Embedding.OllamaModel, 60)
	}
}

func buildVectorCache(cfg *config.Config) cache.VectorCache {
	ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second

	if cfg.App.RedisURL == "" {
		return cache.NewMemoryCache(ttl)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory cache", err)
		return cache.NewMemoryCache(ttl)
	}
	return cache.NewRedisCache(rdb, ttl)
}
