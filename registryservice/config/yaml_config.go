package config

import (
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
	TTL      string `yaml:"ttl"`
}

type YamlFCMConfig struct {
	ValidateTokens bool `yaml:"validate_tokens"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID          string          `yaml:"project_id"`
	ListenAddr         string          `yaml:"listen_addr"`
	EventsTopicID      string          `yaml:"events_topic_id"`
	IdentityServiceURL string          `yaml:"identity_service_url"`
	CorsConfig         YamlCorsConfig  `yaml:"cors"`
	RedisConfig        YamlRedisConfig `yaml:"redis"`
	FCMConfig          YamlFCMConfig   `yaml:"fcm"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:          baseCfg.ProjectID,
		ListenAddr:         baseCfg.ListenAddr,
		EventsTopicID:      baseCfg.EventsTopicID,
		IdentityServiceURL: baseCfg.IdentityServiceURL,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
		},
		FCM: FCMConfig{
			ValidateTokens: baseCfg.FCMConfig.ValidateTokens,
		},
	}

	if baseCfg.RedisConfig.TTL != "" {
		ttl, err := time.ParseDuration(baseCfg.RedisConfig.TTL)
		if err != nil {
			logger.Warn("Ignoring invalid redis ttl", "ttl", baseCfg.RedisConfig.TTL, "err", err)
		} else {
			cfg.Redis.TTL = ttl
		}
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"events_topic_id", cfg.EventsTopicID,
	)

	return cfg, nil
}
