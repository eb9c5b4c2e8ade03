package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"gopkg.in/yaml.v3"

	"github.com/tinywideclouds/go-push-registration/registryservice/config"
)

func TestNewConfigFromYaml(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success - maps all fields correctly", func(t *testing.T) {
		raw := `
project_id: yaml-project
listen_addr: ":9000"
events_topic_id: token-events
identity_service_url: http://identity:3000
cors:
  allowed_origins: ["http://yaml.com"]
  role: editor
redis:
  enabled: true
  addr: redis:6379
  db: 2
  ttl: 30m
fcm:
  validate_tokens: true
`
		var yamlCfg config.YamlConfig
		require.NoError(t, yaml.Unmarshal([]byte(raw), &yamlCfg))

		cfg, err := config.NewConfigFromYaml(&yamlCfg, logger)

		require.NoError(t, err)
		assert.Equal(t, "yaml-project", cfg.ProjectID)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "token-events", cfg.EventsTopicID)
		assert.Equal(t, "http://identity:3000", cfg.IdentityServiceURL)
		assert.Equal(t, []string{"http://yaml.com"}, cfg.CorsConfig.AllowedOrigins)
		assert.Equal(t, middleware.CorsRoleEditor, cfg.CorsConfig.Role)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
		assert.True(t, cfg.FCM.ValidateTokens)
	})

	t.Run("Success - Handles missing optional fields gracefully", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{ProjectID: "minimal-project"}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		assert.Equal(t, "minimal-project", cfg.ProjectID)
		assert.Empty(t, cfg.ListenAddr)
		assert.Zero(t, cfg.Redis.TTL)
		assert.False(t, cfg.Redis.Enabled)
	})
}
