package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/tinywideclouds/go-push-registration/internal/platform"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

const DefaultTokenEndpoint = "https://exp.host/--/api/v2/push/getExpoPushToken"

// PromptAnswer selects how the permission prompt is answered. The zero value
// asks on the terminal.
type PromptAnswer string

const (
	AnswerInteractive PromptAnswer = ""
	AnswerGrant       PromptAnswer = "grant"
	AnswerDeny        PromptAnswer = "deny"
)

type NoticeMode string

const (
	NoticesTerminal NoticeMode = "terminal"
	NoticesLog      NoticeMode = "log"
)

type PushConfig struct {
	ProjectID     string
	AppID         string
	TokenEndpoint string
	Development   bool
}

type RegistryConfig struct {
	// URL of the token registry. Upload is skipped when empty.
	URL         string
	AccessToken string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type PermissionConfig struct {
	Answer   PromptAnswer
	Reprompt bool
	Redis    RedisConfig
}

type ChannelsConfig struct {
	// FirestoreProjectID enables Firestore-backed channels when set.
	FirestoreProjectID string
}

// Config is the validated agent configuration.
type Config struct {
	Platform       registration.Platform
	InstallationID string

	Push       PushConfig
	Registry   RegistryConfig
	Permission PermissionConfig
	Channels   ChannelsConfig
	Notices    NoticeMode
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	if val := os.Getenv("PUSH_PLATFORM"); val != "" {
		logger.Debug("Overriding config value", "key", "PUSH_PLATFORM", "source", "env")
		cfg.Platform = registration.Platform(val)
	}
	if val := os.Getenv("INSTALLATION_ID"); val != "" {
		cfg.InstallationID = val
	}
	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.Push.ProjectID = val
	}
	if val := os.Getenv("APP_ID"); val != "" {
		cfg.Push.AppID = val
	}
	if val := os.Getenv("TOKEN_ENDPOINT"); val != "" {
		logger.Debug("Overriding config value", "key", "TOKEN_ENDPOINT", "source", "env")
		cfg.Push.TokenEndpoint = val
	}
	if val := os.Getenv("REGISTRY_URL"); val != "" {
		logger.Debug("Overriding config value", "key", "REGISTRY_URL", "source", "env")
		cfg.Registry.URL = val
	}
	if val := os.Getenv("REGISTRY_ACCESS_TOKEN"); val != "" {
		cfg.Registry.AccessToken = val
	}
	if val := os.Getenv("PERMISSION_ANSWER"); val != "" {
		logger.Debug("Overriding config value", "key", "PERMISSION_ANSWER", "source", "env")
		cfg.Permission.Answer = PromptAnswer(val)
	}
	if val := os.Getenv("CHANNELS_PROJECT_ID"); val != "" {
		cfg.Channels.FirestoreProjectID = val
	}
	if val := os.Getenv("NOTICES"); val != "" {
		cfg.Notices = NoticeMode(val)
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Permission.Redis.Addr = val
		cfg.Permission.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Permission.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Permission.Redis.DB = db
		}
	}

	// Final Validation
	p, err := platform.Parse(string(cfg.Platform))
	if err != nil {
		return nil, fmt.Errorf("platform is required (set via YAML or PUSH_PLATFORM env var): %w", err)
	}
	cfg.Platform = p

	switch cfg.Permission.Answer {
	case AnswerInteractive, AnswerGrant, AnswerDeny:
	default:
		return nil, fmt.Errorf("unknown permission answer %q", cfg.Permission.Answer)
	}
	switch cfg.Notices {
	case "":
		cfg.Notices = NoticesTerminal
	case NoticesTerminal, NoticesLog:
	default:
		return nil, fmt.Errorf("unknown notices mode %q", cfg.Notices)
	}
	if cfg.Permission.Redis.Enabled && cfg.Permission.Redis.Addr == "" {
		return nil, fmt.Errorf("redis is enabled but no address is set (REDIS_ADDR)")
	}

	if cfg.InstallationID == "" {
		cfg.InstallationID = uuid.NewString()
		logger.Info("Generated installation id", "installation_id", cfg.InstallationID)
	}
	if cfg.Push.TokenEndpoint == "" {
		cfg.Push.TokenEndpoint = DefaultTokenEndpoint
	}
	if cfg.Push.ProjectID == "" {
		logger.Warn("No push project id configured; token requests will fail")
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
