package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	firebase "firebase.google.com/go/v4"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gopkg.in/yaml.v3"

	"github.com/tinywideclouds/go-push-registration/internal/events"
	"github.com/tinywideclouds/go-push-registration/internal/platform/fcm"
	"github.com/tinywideclouds/go-push-registration/internal/storage/cache"
	fsStore "github.com/tinywideclouds/go-push-registration/internal/storage/firestore"
	"github.com/tinywideclouds/go-push-registration/pkg/registry"
	"github.com/tinywideclouds/go-push-registration/registryservice"
	"github.com/tinywideclouds/go-push-registration/registryservice/config"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "push-registry-service")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, _ := config.NewConfigFromYaml(&yamlCfg, logger)
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Token Store (Decorated) ---
	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Error("Firestore client failed", "err", err)
		os.Exit(1)
	}
	defer fsClient.Close()

	var tokenStore registry.TokenStore = fsStore.NewFirestoreStore(fsClient)
	logger.Info("TokenStore initialized", "type", "firestore")

	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis Cache layer...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		tokenStore = cache.NewCachedTokenStore(tokenStore, redisClient, cfg.Redis.TTL)
		logger.Info("TokenStore upgraded", "type", "redis_cached_firestore")
	}

	// --- Token Validation (FCM dry run) ---
	var validator registry.TokenValidator
	if cfg.FCM.ValidateTokens {
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID})
		if err != nil {
			logger.Error("Failed to initialize Firebase App", "err", err)
			os.Exit(1)
		}
		fcmMessaging, err := fbApp.Messaging(ctx)
		if err != nil {
			logger.Error("Failed to create FCM messaging client", "err", err)
			os.Exit(1)
		}
		validator = fcm.NewValidator(fcmMessaging, logger)
		logger.Info("FCM token validation enabled")
	}

	// --- Events ---
	var publisher registry.EventPublisher = events.NopPublisher{}
	if cfg.EventsTopicID != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("PubSub client failed", "err", err)
			os.Exit(1)
		}
		defer psClient.Close()
		if err := ensureTopic(ctx, psClient, cfg.ProjectID, cfg.EventsTopicID, logger); err != nil {
			logger.Error("Events topic unavailable", "err", err)
			os.Exit(1)
		}
		sender := events.NewPubsubSender(psClient, cfg.EventsTopicID)
		defer sender.Stop()
		publisher = events.NewPublisher(sender, logger)
		logger.Info("Registry events enabled", "topic", cfg.EventsTopicID)
	} else {
		logger.Warn("No events topic configured; registry events are dropped")
	}

	// --- Auth ---
	jwksURL, err := middleware.DiscoverAndValidateJWTConfig(cfg.IdentityServiceURL, middleware.RSA256, logger)
	if err != nil {
		logger.Error("JWT config discovery failed", "err", err)
		os.Exit(1)
	}
	authMiddleware, err := middleware.NewJWKSAuthMiddleware(jwksURL, logger)
	if err != nil {
		logger.Error("JWKS middleware failed", "err", err)
		os.Exit(1)
	}

	// --- Service ---
	service, err := registryservice.New(cfg, tokenStore, validator, publisher, authMiddleware, logger)
	if err != nil {
		logger.Error("Service creation failed", "err", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting service...")
	if err := service.Start(ctx); err != nil {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}

func ensureTopic(ctx context.Context, psClient *pubsub.Client, projectID, topicID string, logger *slog.Logger) error {
	name := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	logger.Debug("Ensuring topic exists", "topic", name)
	_, err := psClient.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: name})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			logger.Debug("Topic already exists, skipping creation", "topic", name)
			return nil
		}
		return fmt.Errorf("could not create topic %s: %w", name, err)
	}
	return nil
}
