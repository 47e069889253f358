package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-lawmatch-be/internal/config"
	"ai-lawmatch-be/internal/controller"
	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/internal/pkg/mailer"
	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/internal/repository/statestore"
	"ai-lawmatch-be/internal/repository/unitofwork"
	"ai-lawmatch-be/internal/service"
	"ai-lawmatch-be/internal/websocket"
	"ai-lawmatch-be/pkg/embedding"
	"ai-lawmatch-be/pkg/llm/factory"
	"ai-lawmatch-be/pkg/ranking"
	"ai-lawmatch-be/pkg/triage/analysis"
	"ai-lawmatch-be/pkg/triage/interview"

	pktNats "ai-lawmatch-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	TriageController  controller.ITriageController
	RankingController controller.IRankingController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
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

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// State store: Redis when reachable, in-memory fallback otherwise.
	stateTTL := time.Duration(cfg.Triage.StateTTLHours) * time.Hour
	var stateStore contract.StateStore
	if redisUp {
		stateStore = statestore.NewRedisStateStore(rdb, stateTTL)
	} else {
		log.Printf("[WARN] Using in-memory state store; conversations will not survive restarts")
		stateStore = statestore.NewMemoryStateStore(stateTTL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/triage_events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. AI Providers
	providerA, err := factory.NewLLMProvider(cfg.Ai.ProviderAType, cfg.Ai.ProviderAModel, cfg.Ai.OllamaBaseURL, cfg.Keys.GoogleGemini)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize provider A: %v", err)
	}
	providerB, err := factory.NewLLMProvider(cfg.Ai.ProviderBType, cfg.Ai.ProviderBModel, cfg.Ai.OllamaBaseURL, cfg.Keys.GoogleGemini)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize provider B: %v", err)
	}
	judge, err := factory.NewLLMProvider(cfg.Ai.JudgeType, cfg.Ai.JudgeModel, cfg.Ai.OllamaBaseURL, cfg.Keys.GoogleGemini)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize judge provider: %v", err)
	}
	log.Printf("[INFO] Providers: A=%s (%s), B=%s (%s), judge=%s (%s)",
		cfg.Ai.ProviderAType, cfg.Ai.ProviderAModel,
		cfg.Ai.ProviderBType, cfg.Ai.ProviderBModel,
		cfg.Ai.JudgeType, cfg.Ai.JudgeModel)

	// Embedding cascade: primary provider first, local fallback second.
	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewCascade(
			embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel),
			embedding.NewGeminiProvider(cfg.Keys.GoogleGemini),
		)
	} else {
		embedder = embedding.NewCascade(
			embedding.NewGeminiProvider(cfg.Keys.GoogleGemini),
			embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel),
		)
	}

	// 4. Domain Engines
	providerTimeout := time.Duration(cfg.Triage.ProviderTimeoutSecs) * time.Second
	judgeTimeout := time.Duration(cfg.Triage.JudgeTimeoutSecs) * time.Second

	interviewer := interview.NewInterviewer(providerA, providerTimeout, sysLogger)
	analysisEngine := analysis.NewEngine(providerA, providerB, judge, embedder, providerTimeout, judgeTimeout, sysLogger)

	rankingEngine, err := ranking.NewEngine(
		cfg.Ranking.DefaultPreset,
		cfg.Ranking.DefaultRadiusKm,
		cfg.Ranking.DecayKm,
		cfg.Ranking.MaxEquityDelta,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize ranking engine: %v", err)
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.RankCaseTopic, pubSub)
	rankingService := service.NewRankingService(uowFactory, rankingEngine, natsPub, wsHub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.RankCaseTopic, rankingService)

	triageService := service.NewTriageService(
		stateStore,
		interviewer,
		analysisEngine,
		uowFactory,
		publisherService,
		natsPub,
		wsHub,
		sysLogger,
	)

	notifService := service.NewNotificationService(uowFactory, natsSub, emailService, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	// 6. Controllers
	return &Container{
		TriageController:  controller.NewTriageController(triageService, wsHub, sysLogger),
		RankingController: controller.NewRankingController(rankingService),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
