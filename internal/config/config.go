package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IsProd       = false
	LogLevelProd = slog.LevelInfo
	TraceIDKey   = "traceId"

	RateLimitPerSecond      = 2
	BurstRateLimitPerSecond = 5

	//worker pool
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//job requests buffer limit
	QueueBufferLimit = 100
	JobTimeout       = 5 * time.Minute

	//server timeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//uploads
	UploadDir     = "uploads"
	MaxUploadSize = 32 << 20 //32mb

	//extraction
	MinTextLength      = 100 //below this a PDF is treated as scanned and sent to OCR
	PageExtractTimeout = 10 * time.Second

	//chunking
	ChunkTargetSize = 500
	ChunkOverlap    = 50

	//retrieval
	TopKChunks        = 4
	MinSimilarity     = 0.25
	ThemeMaxDocuments = 25

	//embedding
	EmbedBatchSize = 100

	//vector index
	EmbeddingDimension int32 = 1536
	QdrantUseTLS             = false
	QdrantPoolSize           = 1
	QdrantGrpcPort           = 6334
	ChromemDir               = "index_data"

	//gemini
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//openai
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0

	//http connection pooling
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	defaultRedisAddr = "127.0.0.1:6379"

	RedisDocumentStore = 0

	RedisDocumentTTL = 0 //document records do not expire
)

// Provider selects the generation/embedding backend: "gemini" or "openai".
func Provider() string {
	if p := os.Getenv("DOCQUERY_PROVIDER"); p != "" {
		return p
	}
	return "gemini"
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func RedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return defaultRedisAddr
}

func QdrantHost() string {
	return os.Getenv("QDRANT_HOST")
}
