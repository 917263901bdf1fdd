package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	ObjectStore ObjectStoreConfig
	Ocr         OcrConfig
	Embedding   EmbeddingConfig
	Chunking    ChunkingConfig
	Pipeline    PipelineConfig
	Artifact    ArtifactConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	MetricsPort        string
	WatchDir           string
}

type DatabaseConfig struct {
	Connection string
}

type ObjectStoreConfig struct {
	// Providers enabled for this deployment; refs for others are rejected.
	GcsEndpoint    string
	GcsToken       string
	S3Endpoint     string
	S3Token        string
	MinioEndpoint  string
	MinioToken     string
	TimeoutSeconds int
	// DefaultProvider/DefaultBucket are what the drop-dir watcher stamps on
	// arrival events.
	DefaultProvider string
	DefaultBucket   string
}

type OcrConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type EmbeddingConfig struct {
	Provider      string // "ollama", "openai" or "gemini"
	OllamaBaseURL string
	OllamaModel   string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string
	Dim           int
	Concurrency   int
	Version       string
	Metric        string // "cosine" or "l2"
	CacheTTLSec   int
}

type ChunkingConfig struct {
	MaxChars int
	Overlap  int
	MinChars int
}

type PipelineConfig struct {
	Bus           string // "jetstream" or "channel"
	Partitions    int
	MaxAttempts   int
	BackoffBaseMs int
	BackoffMaxMs  int
}

type ArtifactConfig struct {
	Path     string
	InMemory bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/docstream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			MetricsPort:        getEnv("METRICS_PORT", "9091"),
			WatchDir:           getEnv("WATCH_DIR", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		ObjectStore: ObjectStoreConfig{
			GcsEndpoint:     getEnv("GCS_ENDPOINT", ""),
			GcsToken:        getEnv("GCS_TOKEN", ""),
			S3Endpoint:      getEnv("S3_ENDPOINT", ""),
			S3Token:         getEnv("S3_TOKEN", ""),
			MinioEndpoint:   getEnv("MINIO_ENDPOINT", "http://localhost:9000"),
			MinioToken:      getEnv("MINIO_TOKEN", ""),
			TimeoutSeconds:  getEnvAsInt("OBJECT_STORE_TIMEOUT_SECONDS", 30),
			DefaultProvider: getEnv("OBJECT_STORE_DEFAULT_PROVIDER", "minio"),
			DefaultBucket:   getEnv("OBJECT_STORE_DEFAULT_BUCKET", "pdfs"),
		},
		Ocr: OcrConfig{
			BaseURL:        getEnv("OCR_BASE_URL", "http://localhost:8070"),
			TimeoutSeconds: getEnvAsInt("OCR_TIMEOUT_SECONDS", 120),
		},
		Embedding: EmbeddingConfig{
			Provider:      getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("OPENAI_EMBEDDING_MODEL", ""),
			GeminiKey:     getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			Dim:           getEnvAsInt("EMBEDDING_DIM", 768),
			Concurrency:   getEnvAsInt("EMBEDDING_CONCURRENCY", 4),
			Version:       getEnv("EMBEDDING_VERSION", "v1"),
			Metric:        getEnv("EMBEDDING_METRIC", "cosine"),
			CacheTTLSec:   getEnvAsInt("EMBEDDING_CACHE_TTL_SECONDS", 600),
		},
		Chunking: ChunkingConfig{
			MaxChars: getEnvAsInt("CHUNK_MAX_CHARS", 1500),
			Overlap:  getEnvAsInt("CHUNK_OVERLAP", 200),
			MinChars: getEnvAsInt("CHUNK_MIN_CHARS", 200),
		},
		Pipeline: PipelineConfig{
			Bus:           getEnv("PIPELINE_BUS", "jetstream"),
			Partitions:    getEnvAsInt("PIPELINE_PARTITIONS", 8),
			MaxAttempts:   getEnvAsInt("PIPELINE_MAX_ATTEMPTS", 3),
			BackoffBaseMs: getEnvAsInt("PIPELINE_BACKOFF_BASE_MS", 500),
			BackoffMaxMs:  getEnvAsInt("PIPELINE_BACKOFF_MAX_MS", 10000),
		},
		Artifact: ArtifactConfig{
			Path:     getEnv("ARTIFACT_STORE_PATH", "data/artifacts"),
			InMemory: getEnv("ARTIFACT_STORE_IN_MEMORY", "false") == "true",
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
