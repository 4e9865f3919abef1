package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"groupware-ai-be/internal/config"
	"groupware-ai-be/internal/controller"
	"groupware-ai-be/internal/pkg/logger"
	"groupware-ai-be/internal/repository/implementation"
	"groupware-ai-be/internal/repository/runstore"
	"groupware-ai-be/internal/service"
	"groupware-ai-be/pkg/callback"
	"groupware-ai-be/pkg/embedding"
	"groupware-ai-be/pkg/llm/factory"
	pktNats "groupware-ai-be/pkg/nats"
)

type Container struct {
	// Controllers
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	plannerLLM, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.PlannerModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize planner LLM: %v", err)
	}
	synthLLM, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.SynthModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize synthesis LLM: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (planner=%s synth=%s)",
		cfg.Ai.LLMProvider, cfg.Ai.PlannerModel, cfg.Ai.SynthModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Run store: Redis when reachable, in-process otherwise
	var runStore runstore.Store
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to memory run store", err)
			runStore = runstore.NewMemoryStore()
		} else {
			runStore = runstore.NewRedisStore(rdb)
		}
	} else {
		runStore = runstore.NewMemoryStore()
	}

	// 5. Repositories
	chunkRepo := implementation.NewProvChunkRepository(db)
	docRepo := implementation.NewProvDocumentRepository(db)
	chatRunRepo := implementation.NewChatRunRepository(db)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.EmbedProvTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EmbedProvTopic,
		docRepo,
		chunkRepo,
		embeddingProvider,
	)

	retrievalService := service.NewRetrievalService(chunkRepo, embeddingProvider)
	documentService := service.NewDocumentService(docRepo, chunkRepo, publisherService, sysLogger)

	callbackClient := callback.NewClient(
		cfg.Callback.HeaderName,
		cfg.Callback.MaxAttempts,
		time.Duration(cfg.Callback.RetryBaseMs)*time.Millisecond,
		log.Default(),
	)

	chatbotService := service.NewChatbotService(
		plannerLLM,
		synthLLM,
		db,
		retrievalService,
		callbackClient,
		runStore,
		chatRunRepo,
		natsPub,
	)

	// 7. Controllers
	chatbotController := controller.NewChatbotController(chatbotService)
	documentController := controller.NewDocumentController(documentService)

	return &Container{
		ChatbotController:  chatbotController,
		DocumentController: documentController,
		ConsumerService:    consumerService,
	}
}
