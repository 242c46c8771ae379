package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration shared by the demos and the router worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"router-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"router.work"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"router-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"router.decided"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// LLM configuration
	LLMProvider    string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey      string        `env:"OPENAI_API_KEY"`
	LLMBaseURL     string        `env:"OPENAI_BASE_URL"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-3.5-turbo"`
	LLMTemperature float32       `env:"LLM_TEMPERATURE" envDefault:"0"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMRateLimit   float64       `env:"LLM_RATE_LIMIT" envDefault:"0"`
	LLMBurst       int           `env:"LLM_BURST" envDefault:"1"`

	// Router configuration
	RouterMode string `env:"ROUTER_MODE" envDefault:"llm"`
	CELEnabled bool   `env:"CEL_ENABLED" envDefault:"true"`

	// Agent configuration
	AgentMaxIterations int `env:"AGENT_MAX_ITERATIONS" envDefault:"25"`
	AgentConcurrency   int `env:"AGENT_CONCURRENCY" envDefault:"0"`

	// Prompt chain configuration
	ChainStrict bool `env:"CHAIN_STRICT" envDefault:"false"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	return Parse()
}

// Parse parses configuration from environment variables only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	// OPENAI_API_KEY is checked when the model client is constructed

	if c.LLMProvider != "openai" {
		return fmt.Errorf("LLM_PROVIDER must be: openai")
	}

	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	if c.LLMRateLimit < 0 {
		return fmt.Errorf("LLM_RATE_LIMIT must be non-negative")
	}

	if c.LLMBurst <= 0 {
		return fmt.Errorf("LLM_BURST must be positive")
	}

	if c.RouterMode != "llm" && c.RouterMode != "hybrid" {
		return fmt.Errorf("ROUTER_MODE must be one of: llm, hybrid")
	}

	if c.AgentMaxIterations <= 0 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be positive")
	}

	if c.AgentConcurrency < 0 {
		return fmt.Errorf("AGENT_CONCURRENCY must be non-negative")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"LLMProvider=%s, LLMModel=%s, LLMTemperature=%g, RouterMode=%s, CELEnabled=%v, "+
			"AgentMaxIterations=%d, ChainStrict=%v, HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.LLMProvider,
		c.LLMModel,
		c.LLMTemperature,
		c.RouterMode,
		c.CELEnabled,
		c.AgentMaxIterations,
		c.ChainStrict,
		c.HealthPort,
		c.LogLevel,
	)
}
