package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Report generation (OpenAI-compatible API)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	AITimeout     time.Duration

	// Document retrieval
	FetchTimeout time.Duration

	// Per-user quotas for the report-generation service
	ParseAIDailyLimit   int
	AnalyzeAIDailyLimit int
	AIPerMinuteLimit    int

	// Event queue
	QueueKey string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		OpenAIBaseURL:       "https://api.openai.com",
		OpenAIModel:         "gpt-4o-mini",
		AITimeout:           15 * time.Second,
		FetchTimeout:        30 * time.Second,
		ParseAIDailyLimit:   3,
		AnalyzeAIDailyLimit: 3,
		AIPerMinuteLimit:    8,
		QueueKey:            "events:changes",
		LogLevel:            "info",
		RedisDB:             0,
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	} else {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.OpenAIBaseURL = baseURL
	}

	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAIModel = model
	}

	if timeout := os.Getenv("AI_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
		}
		cfg.AITimeout = d
	}

	if timeout := os.Getenv("FETCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = d
	}

	if limit := os.Getenv("PARSE_AI_DAILY_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid PARSE_AI_DAILY_LIMIT: %w", err)
		}
		cfg.ParseAIDailyLimit = n
	}

	if limit := os.Getenv("ANALYZE_AI_DAILY_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid ANALYZE_AI_DAILY_LIMIT: %w", err)
		}
		cfg.AnalyzeAIDailyLimit = n
	}

	if limit := os.Getenv("AI_PER_MINUTE_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_PER_MINUTE_LIMIT: %w", err)
		}
		cfg.AIPerMinuteLimit = n
	}

	if queueKey := os.Getenv("QUEUE_KEY"); queueKey != "" {
		cfg.QueueKey = queueKey
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is empty")
	}

	if c.AITimeout < time.Second {
		return fmt.Errorf("AI timeout too small: %v", c.AITimeout)
	}

	if c.FetchTimeout < time.Second {
		return fmt.Errorf("fetch timeout too small: %v", c.FetchTimeout)
	}

	if c.ParseAIDailyLimit < 1 || c.AnalyzeAIDailyLimit < 1 {
		return fmt.Errorf("AI daily limits must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
