// @title           Document Query API
// @version         1.0
// @description     Upload documents, track their ingestion and ask questions across them with themed answers.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"docquery/internal/config"
	"docquery/internal/docstore"
	"docquery/internal/embedding"
	"docquery/internal/embedding/googleembed"
	"docquery/internal/embedding/openaiembed"
	"docquery/internal/extract"
	"docquery/internal/handlers"
	"docquery/internal/index"
	"docquery/internal/index/chromemindex"
	"docquery/internal/index/qdrantindex"
	"docquery/internal/ingest"
	"docquery/internal/llm"
	"docquery/internal/llm/gemini"
	"docquery/internal/llm/openaillm"
	"docquery/internal/ocr"
	"docquery/internal/ocr/geminiocr"
	"docquery/internal/queryengine"
	"docquery/internal/server"
	"docquery/internal/theme"
	"docquery/internal/worker"
	"docquery/pkg/applog"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	applog.Init()
	var logger = applog.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan ingest.Job, config.QueueBufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//document store: Redis with in-memory fallback
	var documentStore docstore.DocumentStore
	if redisStore := docstore.GetRedisDocumentStore(serviceContext); redisStore != nil {
		documentStore = redisStore
	} else {
		logger.Error("Redis is offline, document records will not survive a restart")
		documentStore = docstore.NewMemoryDocumentStore()
	}

	serviceConfig := ingest.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		Store:             documentStore,
	}
	logger.Info("Starting ingest service")
	ingestService := ingest.InitIngestService(serviceConfig)

	//vector index: qdrant with embedded chromem fallback
	var indexStore index.Store
	if qdrantStore := qdrantindex.GetQdrantStore(serviceContext); qdrantStore != nil {
		indexStore = qdrantStore
	} else if chromemStore := chromemindex.GetChromemStore(); chromemStore != nil {
		logger.Error("Qdrant is offline, using embedded vector index")
		indexStore = chromemStore
	} else {
		logger.Error("No vector index available. Shutting down.")
		return
	}

	embedder, llmProvider, ocrClient := initProvider(serviceContext, logger)
	if embedder == nil || llmProvider == nil {
		logger.Error("Generation provider failed to initialize. Shutting down.")
		logger.Debug("Available services", "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	pipeline := ingest.NewPipeline(documentStore, extract.NewExtractor(ocrClient), embedder, indexStore)
	engine := queryengine.NewEngine(documentStore, indexStore, embedder, llmProvider)
	synthesizer := theme.NewSynthesizer(llmProvider)

	handlers.InitDocumentHandler(ingestService, engine, synthesizer, indexStore)

	//init worker pool
	worker.InitServices(ingestService, pipeline)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// initProvider selects the generation backend. OCR always runs on Gemini
// vision; without a Gemini key scanned documents fail with a clear reason
// instead of blocking text ingestion.
func initProvider(ctx context.Context, logger *applog.Logger) (embedding.Embedder, llm.Provider, ocr.Client) {
	var ocrClient ocr.Client
	if key := config.GeminiAPIKey(); key != "" {
		ocrClient = geminiocr.GetGeminiOCRClient(ctx, config.GeminiModelName, key)
	}

	if config.Provider() == "openai" {
		logger.Info("Using OpenAI provider")
		embedder := openaiembed.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
		provider := openaillm.GetOpenAIClient(ctx, config.OpenAIModelName, config.OpenAIAPIKey())
		return embedder, provider, ocrClient
	}

	logger.Info("Using Gemini provider")
	embedder := googleembed.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GeminiAPIKey())
	provider := gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GeminiAPIKey())
	return embedder, provider, ocrClient
}
