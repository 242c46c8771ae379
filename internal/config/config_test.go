package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLMModel)
	assert.Equal(t, float32(0), cfg.LLMTemperature)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "llm", cfg.RouterMode)
	assert.Equal(t, 25, cfg.AgentMaxIterations)
	assert.Equal(t, "router.work", cfg.StreamKey)
	assert.False(t, cfg.ChainStrict)
	assert.Zero(t, cfg.LLMRateLimit)
	assert.Equal(t, 1, cfg.LLMBurst)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("ROUTER_MODE", "hybrid")
	t.Setenv("AGENT_CONCURRENCY", "2")
	t.Setenv("CHAIN_STRICT", "true")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, "hybrid", cfg.RouterMode)
	assert.Equal(t, 2, cfg.AgentConcurrency)
	assert.True(t, cfg.ChainStrict)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			WorkerID:           "w",
			RedisAddr:          "localhost:6379",
			StreamKey:          "in",
			ConsumerGroup:      "g",
			ResultStream:       "out",
			BlockTime:          time.Second,
			LLMProvider:        "openai",
			LLMModel:           "gpt-3.5-turbo",
			LLMTimeout:         time.Second,
			LLMBurst:           1,
			RouterMode:         "llm",
			AgentMaxIterations: 5,
			HealthPort:         8082,
			LogLevel:           "info",
			LogFormat:          "json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLMProvider = "bard" }, wantErr: "LLM_PROVIDER"},
		{name: "negative temperature", mutate: func(c *Config) { c.LLMTemperature = -1 }, wantErr: "LLM_TEMPERATURE"},
		{name: "negative rate limit", mutate: func(c *Config) { c.LLMRateLimit = -1 }, wantErr: "LLM_RATE_LIMIT"},
		{name: "zero burst", mutate: func(c *Config) { c.LLMBurst = 0 }, wantErr: "LLM_BURST"},
		{name: "bad router mode", mutate: func(c *Config) { c.RouterMode = "deterministic" }, wantErr: "ROUTER_MODE"},
		{name: "zero iterations", mutate: func(c *Config) { c.AgentMaxIterations = 0 }, wantErr: "AGENT_MAX_ITERATIONS"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "LOG_LEVEL"},
		{name: "bad port", mutate: func(c *Config) { c.HealthPort = 70000 }, wantErr: "HEALTH_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestString_OmitsSecrets(t *testing.T) {
	cfg := &Config{LLMAPIKey: "sk-very-secret", LLMModel: "gpt-3.5-turbo"}
	assert.False(t, strings.Contains(cfg.String(), "sk-very-secret"))
	assert.Contains(t, cfg.String(), "gpt-3.5-turbo")
}
