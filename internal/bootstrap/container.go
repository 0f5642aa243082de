package bootstrap

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/qainatsaeed/BlackBox-LLM/internal/config"
	"github.com/qainatsaeed/BlackBox-LLM/internal/controller"
	"github.com/qainatsaeed/BlackBox-LLM/internal/diagnostics"
	"github.com/qainatsaeed/BlackBox-LLM/internal/directory"
	"github.com/qainatsaeed/BlackBox-LLM/internal/gateway"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pipeline"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/registry"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/implementation"
	"github.com/qainatsaeed/BlackBox-LLM/internal/retrieval"
	"github.com/qainatsaeed/BlackBox-LLM/internal/service"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/embedding"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/events"
	pkgNats "github.com/qainatsaeed/BlackBox-LLM/pkg/nats"
)

type Container struct {
	// Controllers
	QueryController  controller.IQueryController
	IngestController controller.IIngestController

	// Background components (exposed for main.go to run and shut down)
	Gateway       *gateway.Gateway
	Registry      *registry.Registry
	IngestService service.IIngestService
	Logger        logger.ILogger

	redis   *redis.Client
	natsPub *pkgNats.Publisher
	natsSub *pkgNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Repositories
	employeeRepo := implementation.NewEmployeeRepository(db)
	shiftRepo := implementation.NewShiftRepository(db)
	saleRepo := implementation.NewSaleRepository(db)
	embeddingRepo := implementation.NewDocumentEmbeddingRepository(db)

	// 3. Embedding Provider
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.OpenAIBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	// 4. Retrieval
	classifier := retrieval.NewKeywordClassifier()
	structuredSource := retrieval.NewSQLSource(employeeRepo, shiftRepo, saleRepo, sysLogger)
	documentSource := retrieval.NewVectorSource(
		embeddingProvider,
		embeddingRepo,
		cfg.Retrieval.TopK,
		cfg.Retrieval.ScoreThreshold,
		sysLogger,
	)
	orchestrator := retrieval.NewOrchestrator(
		classifier,
		structuredSource,
		documentSource,
		cfg.Retrieval.SourceTimeout,
		cfg.Retrieval.ContextBudget,
		sysLogger,
	)

	// 5. Model Registry
	modelRegistry, err := registry.Load(cfg.Models.ConfigPath, cfg.Models.InvokeTimeout, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load model registry: %v", err)
	}
	log.Printf("[INFO] Model registry loaded: %v (default: %s)", modelRegistry.Names(), modelRegistry.DefaultModel())

	// 6. Pipeline
	queryPipeline := pipeline.New(orchestrator, modelRegistry, sysLogger)

	// 7. Infrastructure
	// NATS (audit events, never on the answer path)
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// Redis (queue transport)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 8. Gateway
	teamDirectory := directory.NewService(employeeRepo, 0, sysLogger)
	transport := gateway.NewRedisTransport(rdb, cfg.Queue.AskQueue, cfg.Queue.ResponseQueue)

	var eventPublisher gateway.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	gw := gateway.New(
		transport,
		queryPipeline,
		teamDirectory,
		eventPublisher,
		cfg.Queue.Workers,
		cfg.Queue.GracePeriod,
		sysLogger,
	)

	// 9. Audit trail
	if natsSub != nil {
		err := natsSub.Subscribe("events.QUERY_ANSWERED", "query-audit", func(ctx context.Context, event events.Event) error {
			sysLogger.Info("audit", "query answered", event.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to start audit consumer: %v", err)
		}
	}

	// 10. Ingestion
	ingestService := service.NewIngestService(
		db,
		employeeRepo,
		shiftRepo,
		saleRepo,
		embeddingRepo,
		embeddingProvider,
		natsPub,
		teamDirectory,
		sysLogger,
	)

	// 11. Controllers
	diag := diagnostics.NewService(db, rdb, embeddingRepo, cfg.Queue.AskQueue)
	queryController := controller.NewQueryController(gw, modelRegistry, diag)
	ingestController := controller.NewIngestController(ingestService)

	return &Container{
		QueryController:  queryController,
		IngestController: ingestController,
		Gateway:          gw,
		Registry:         modelRegistry,
		IngestService:    ingestService,
		Logger:           sysLogger,
		redis:            rdb,
		natsPub:          natsPub,
		natsSub:          natsSub,
	}
}

// Close releases infrastructure connections. Call after the gateway has
// drained.
func (c *Container) Close() {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Printf("[WARN] Failed to close Redis client: %v", err)
		}
	}
}
