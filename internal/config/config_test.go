package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FREE_GENERATION_LIMIT", "")
	t.Setenv("AI_TIMEOUT", "")
	t.Setenv("ANTHROPIC_MODEL", "")

	cfg := Load()

	assert.Equal(t, 3, cfg.FreeGenerationLimit)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, "claude-sonnet-4-5", cfg.AnthropicModel)
	assert.Equal(t, 4096, cfg.AnthropicMaxTokens)
	assert.Equal(t, "https://api.anthropic.com/v1", cfg.AnthropicAPIURL)
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("FREE_GENERATION_LIMIT", "5")
	t.Setenv("AI_TIMEOUT", "not-a-duration")
	t.Setenv("GENERATION_RATE_LIMIT", "-2")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("PAYMENT_LINK_URL", "https://shop.example.com/pro")

	cfg := Load()

	assert.Equal(t, 5, cfg.FreeGenerationLimit)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 10, cfg.GenerationRateLimit)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "https://shop.example.com/pro", cfg.PaymentLinkURL)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
