package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"gopkg.in/yaml.v3"

	"github.com/tinywideclouds/go-push-registration/internal/channel"
	"github.com/tinywideclouds/go-push-registration/internal/issuer"
	"github.com/tinywideclouds/go-push-registration/internal/notice"
	"github.com/tinywideclouds/go-push-registration/internal/permission"
	"github.com/tinywideclouds/go-push-registration/internal/platform"
	"github.com/tinywideclouds/go-push-registration/internal/registryclient"
	"github.com/tinywideclouds/go-push-registration/internal/storage/cache"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
	"github.com/tinywideclouds/go-push-registration/pushagent"
	"github.com/tinywideclouds/go-push-registration/pushagent/config"
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
	// stdout is reserved for the permission prompt and notices.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "push-agent")
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

	adapter := platform.New(cfg.Platform)

	// --- Permission ---
	var statusStore permission.StatusStore = permission.NewMemoryStore(registration.StatusUndetermined)
	if cfg.Permission.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cache.RedisOptions{
			Addr:     cfg.Permission.Redis.Addr,
			Password: cfg.Permission.Redis.Password,
			DB:       cfg.Permission.Redis.DB,
		})
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		statusStore = permission.NewRedisStore(redisClient, cfg.InstallationID)
		logger.Info("Permission store initialized", "type", "redis")
	}

	var prompter permission.Prompter
	switch cfg.Permission.Answer {
	case config.AnswerGrant:
		prompter = permission.StaticPrompter(true)
	case config.AnswerDeny:
		prompter = permission.StaticPrompter(false)
	default:
		prompter = permission.NewTerminalPrompter(os.Stdin, os.Stdout)
	}

	var authOpts []permission.Option
	if cfg.Permission.Reprompt {
		authOpts = append(authOpts, permission.WithReprompt())
	}
	authority := permission.NewAuthority(statusStore, prompter, logger, authOpts...)

	// --- Channels ---
	var channels registration.ChannelProvisioner = channel.NewMemoryProvisioner()
	if adapter.RequiresChannel() && cfg.Channels.FirestoreProjectID != "" {
		fsClient, err := firestore.NewClient(ctx, cfg.Channels.FirestoreProjectID)
		if err != nil {
			logger.Error("Firestore client failed", "err", err)
			os.Exit(1)
		}
		defer fsClient.Close()
		channels = channel.NewFirestoreProvisioner(fsClient, cfg.InstallationID)
		logger.Info("Channel store initialized", "type", "firestore")
	}

	// --- Token Issuer ---
	tokenIssuer := issuer.NewHTTPIssuer(issuer.Config{
		Endpoint:      cfg.Push.TokenEndpoint,
		ProjectID:     cfg.Push.ProjectID,
		ApplicationID: cfg.Push.AppID,
		DeviceID:      cfg.InstallationID,
		Development:   cfg.Push.Development,
	}, cfg.Platform, &http.Client{Timeout: 15 * time.Second}, logger)

	// --- Notices ---
	var notices registration.NoticePresenter = notice.NewWriterPresenter(os.Stdout)
	if cfg.Notices == config.NoticesLog {
		notices = notice.NewLogPresenter(logger)
	}

	flow, err := registration.NewFlow(adapter, authority, channels, tokenIssuer, notices, logger)
	if err != nil {
		logger.Error("Flow creation failed", "err", err)
		os.Exit(1)
	}

	// --- Registry Upload ---
	var uploader pushagent.TokenUploader
	if cfg.Registry.URL != "" {
		uploader = registryclient.New(cfg.Registry.URL, cfg.Registry.AccessToken, &http.Client{Timeout: 10 * time.Second}, logger)
	} else {
		logger.Warn("No registry url configured; token will not be uploaded")
	}

	agent := pushagent.New(flow, cfg.Platform, uploader, logger)
	outcome, err := agent.Run(ctx)
	fmt.Println(outcome.String())
	if err != nil {
		logger.Error("Registration failed", "err", err)
		os.Exit(1)
	}
}
