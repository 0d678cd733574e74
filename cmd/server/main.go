package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/config"
	"github.com/Tattzy25/real-code-homie/internal/application"
	"github.com/Tattzy25/real-code-homie/internal/billing"
	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/gate"
	"github.com/Tattzy25/real-code-homie/internal/handler"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/cache"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/mq"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/db"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/repository"
	"github.com/Tattzy25/real-code-homie/internal/llm"
	"github.com/Tattzy25/real-code-homie/internal/realtime"
	"github.com/Tattzy25/real-code-homie/internal/security"
	"github.com/Tattzy25/real-code-homie/internal/storage"
	"github.com/Tattzy25/real-code-homie/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	logger := newLogger(cfg.Server.Environment)
	defer logger.Sync()
	log := logger.Sugar()

	// Postgres is the source of truth; refuse to start without it.
	gormDB, err := db.InitGorm(cfg.Postgres.DSN())
	if err != nil {
		log.Fatalw("connect postgres failed", "err", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	conversationRepo := repository.NewConversationRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	usageLogRepo := repository.NewUsageLogRepository(gormDB)
	subscriptionRepo := repository.NewSubscriptionRepository(gormDB)
	errorLogRepo := repository.NewErrorLogRepository(gormDB)

	// Redis degrades: no quota cache, no rate limiting, no realtime fan-out.
	redisClient, err := cache.InitRedis(cfg)
	if err != nil {
		log.Warnw("redis unavailable, quota and realtime degrade", "err", err)
		redisClient = nil
	}

	// RocketMQ degrades to direct Postgres writes.
	var sink domain.MessageSink = repository.NewDirectSink(messageRepo, usageLogRepo)
	producer, err := mq.InitProducer(cfg, log)
	if err != nil {
		log.Warnw("rocketmq producer unavailable, persisting directly", "err", err)
	} else if producer != nil {
		sink = producer
		defer producer.Shutdown()

		consumer, err := mq.InitConsumer(cfg, messageRepo, usageLogRepo, log)
		if err != nil {
			log.Fatalw("start rocketmq consumer failed", "err", err)
		}
		defer consumer.Shutdown()
	}

	var reserver gate.UsageReserver
	if redisClient != nil {
		reserver = gate.NewRedisReserver(redisClient)
	}
	quota := gate.NewGate(userRepo, reserver, gate.NewRecountReserver(messageRepo), log)

	providers := llm.NewProviderSet(&cfg.Providers, log)
	broker := realtime.NewBroker(redisClient, log)

	relay := application.NewRelay(
		conversationRepo, messageRepo, userRepo, sink, providers, broker, log,
		application.RelayConfig{
			HistoryLimit:       cfg.Chat.HistoryLimit,
			HistoryTokenBudget: cfg.Chat.HistoryTokenBudget,
			MaxTokens:          cfg.Chat.MaxTokens,
			Temperature:        cfg.Chat.Temperature,
			PersistTimeout:     cfg.Chat.PersistTimeout,
		})
	conversationSvc := application.NewConversationService(conversationRepo, messageRepo, usageLogRepo)

	jwtSvc := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.ExpireH)
	authSvc := application.NewAuthService(userRepo, security.NewBcryptService(), jwtSvc)

	paypal := billing.NewPayPalClient(&cfg.PayPal)
	billingSvc := billing.NewService(userRepo, subscriptionRepo, paypal, log)

	var uploader *storage.Uploader
	if cfg.S3.Bucket != "" {
		if uploader, err = storage.NewUploader(&cfg.S3); err != nil {
			log.Warnw("uploads unavailable", "err", err)
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(log))

	handler.RegisterRoutes(r, &handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, log),
		Chat:          handler.NewChatHandler(relay, log),
		HelperChat:    handler.NewHelperChatHandler(providers, cfg.Chat.HelperMaxTokens, log),
		Conversations: handler.NewConversationHandler(conversationSvc, log),
		Realtime:      handler.NewRealtimeHandler(broker, conversationSvc, log),
		Billing:       handler.NewBillingHandler(billingSvc, log),
		Uploads:       handler.NewUploadHandler(uploader, log),
		Logs:          handler.NewLogHandler(errorLogRepo, log),
	}, jwtSvc, quota, redisClient, cfg.Redis.RateLimitQPS, log)

	registerConsul(cfg, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("serve failed", "err", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown failed", "err", err)
	}
}

func newLogger(environment string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// registerConsul announces the service; failures only cost discovery.
func registerConsul(cfg *config.AppConfig, log *zap.SugaredLogger) {
	if !cfg.Consul.Enabled {
		return
	}

	consul, err := registry.NewConsulRegistry(&registry.ConsulConfig{
		Address:    cfg.Consul.Address,
		Scheme:     cfg.Consul.Scheme,
		Datacenter: cfg.Consul.Datacenter,
	}, log)
	if err != nil {
		log.Warnw("consul unavailable, skipping registration", "err", err)
		return
	}

	localIP, err := registry.GetLocalIP()
	if err != nil {
		log.Warnw("local ip lookup failed, skipping registration", "err", err)
		return
	}

	err = consul.RegisterService(&registry.ServiceConfig{
		ID:      registry.GenerateServiceID(cfg.Server.Name, cfg.Server.Port),
		Name:    cfg.Server.Name,
		Tags:    []string{cfg.Server.Name, "api", "v1"},
		Address: localIP,
		Port:    cfg.Server.Port,
		HealthCheck: &registry.HealthCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/healthz", localIP, cfg.Server.Port),
			Interval:                       10 * time.Second,
			Timeout:                        3 * time.Second,
			DeregisterCriticalServiceAfter: time.Minute,
		},
	})
	if err != nil {
		log.Warnw("consul registration failed", "err", err)
	}
}
