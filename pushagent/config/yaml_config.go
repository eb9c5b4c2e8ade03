package config

import (
	"log/slog"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

type YamlPushConfig struct {
	ProjectID     string `yaml:"project_id"`
	AppID         string `yaml:"app_id"`
	TokenEndpoint string `yaml:"token_endpoint"`
	Development   bool   `yaml:"development"`
}

type YamlRegistryConfig struct {
	URL         string `yaml:"url"`
	AccessToken string `yaml:"access_token"`
}

type YamlRedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type YamlPermissionConfig struct {
	Answer   string          `yaml:"answer"`
	Reprompt bool            `yaml:"reprompt"`
	Redis    YamlRedisConfig `yaml:"redis"`
}

type YamlChannelsConfig struct {
	FirestoreProjectID string `yaml:"firestore_project_id"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	Platform       string               `yaml:"platform"`
	InstallationID string               `yaml:"installation_id"`
	Push           YamlPushConfig       `yaml:"push"`
	Registry       YamlRegistryConfig   `yaml:"registry"`
	Permission     YamlPermissionConfig `yaml:"permission"`
	Channels       YamlChannelsConfig   `yaml:"channels"`
	Notices        string               `yaml:"notices"`
}

// NewConfigFromYaml converts the YamlConfig into a base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		Platform:       registration.Platform(baseCfg.Platform),
		InstallationID: baseCfg.InstallationID,
		Push: PushConfig{
			ProjectID:     baseCfg.Push.ProjectID,
			AppID:         baseCfg.Push.AppID,
			TokenEndpoint: baseCfg.Push.TokenEndpoint,
			Development:   baseCfg.Push.Development,
		},
		Registry: RegistryConfig{
			URL:         baseCfg.Registry.URL,
			AccessToken: baseCfg.Registry.AccessToken,
		},
		Permission: PermissionConfig{
			Answer:   PromptAnswer(baseCfg.Permission.Answer),
			Reprompt: baseCfg.Permission.Reprompt,
			Redis: RedisConfig{
				Enabled:  baseCfg.Permission.Redis.Enabled,
				Addr:     baseCfg.Permission.Redis.Addr,
				Password: baseCfg.Permission.Redis.Password,
				DB:       baseCfg.Permission.Redis.DB,
			},
		},
		Channels: ChannelsConfig{
			FirestoreProjectID: baseCfg.Channels.FirestoreProjectID,
		},
		Notices: NoticeMode(baseCfg.Notices),
	}

	logger.Debug("YAML config mapping complete",
		"platform", cfg.Platform,
		"project_id", cfg.Push.ProjectID,
		"registry_url", cfg.Registry.URL,
	)

	return cfg, nil
}
