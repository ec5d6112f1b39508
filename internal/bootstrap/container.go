package bootstrap

import (
	"context"
	"log"

	"soulscript-be/internal/config"
	"soulscript-be/internal/constant"
	"soulscript-be/internal/controller"
	"soulscript-be/internal/pkg/logger"
	"soulscript-be/internal/pkg/mailer"
	"soulscript-be/internal/repository/memory"
	"soulscript-be/internal/repository/unitofwork"
	"soulscript-be/internal/service"
	"soulscript-be/internal/websocket"
	chatmemory "soulscript-be/pkg/chat/memory"
	"soulscript-be/pkg/embedding"
	"soulscript-be/pkg/llm/factory"
	"soulscript-be/pkg/moderation"
	"soulscript-be/pkg/retrieval"

	pktNats "soulscript-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController        controller.IChatController
	FeatureFlagController controller.IFeatureFlagController
	ModerationController  controller.IModerationController

	// WebSocket streaming
	StreamHandler *websocket.StreamHandler

	// Background Services (Exposed for main.go to run)
	AlertConsumerService service.IAlertConsumerService

	// Exposed for startup tasks
	FeatureFlagService service.IFeatureFlagService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

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
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey, "")
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" && baseURL == "" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		baseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	gate := moderation.NewGate(moderation.NewOpenAIClassifier(
		cfg.Moderation.APIKey,
		cfg.Moderation.BaseURL,
		cfg.Moderation.Model,
	))

	// 4. Conversation Memory
	windowRepo := memory.NewWindowRepository()
	summarizer := chatmemory.NewSummarizer(llmProvider)
	memoryManager := chatmemory.NewManager(windowRepo, summarizer)

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

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

	// 6. Services
	violationPublisher := service.NewPublisherService(constant.ModerationViolationTopic, pubSub)
	alertConsumer := service.NewAlertConsumerService(
		pubSub,
		constant.ModerationViolationTopic,
		emailService,
		cfg.SMTP.AlertEmail,
		natsPub,
	)

	flagService := service.NewFeatureFlagService(uowFactory, rdb, sysLogger)
	moderationLogService := service.NewModerationLogService(uowFactory)

	retriever := retrieval.NewPgvectorRetriever(
		unitofwork.NewUnitOfWork(db).DocumentChunkRepository(),
		embeddingProvider,
	)

	chatService := service.NewChatService(
		uowFactory,
		memoryManager,
		llmProvider,
		gate,
		retriever,
		flagService,
		violationPublisher,
		sysLogger,
	)

	// 7. Controllers
	chatController := controller.NewChatController(chatService)
	flagController := controller.NewFeatureFlagController(flagService)
	moderationController := controller.NewModerationController(moderationLogService)
	streamHandler := websocket.NewStreamHandler(chatService, sysLogger)

	return &Container{
		ChatController:        chatController,
		FeatureFlagController: flagController,
		ModerationController:  moderationController,
		StreamHandler:         streamHandler,
		AlertConsumerService:  alertConsumer,
		FeatureFlagService:    flagService,
		Logger:                sysLogger,
	}
}
