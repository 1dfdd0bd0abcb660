package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for askdb-engine.
// Configuration can come from the YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // set at load time, not from config

	// Database configuration (PostgreSQL, pgvector-enabled)
	Database DatabaseConfig `yaml:"database"`

	// Model provider configuration
	AI AIConfig `yaml:"ai"`

	// Generation pipeline tuning
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Per-caller request windows
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"askdb"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"askdb"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a connection string suitable for pgx and database/sql.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// AIConfig holds completion and embedding provider settings.
type AIConfig struct {
	// Provider selects the completion backend: "openai" (default, any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`

	Endpoint    string  `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey      string  `yaml:"-" env:"AI_API_KEY"` // secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0"`

	// Embeddings always go through an OpenAI-compatible endpoint, even when
	// completions use another provider.
	EmbeddingEndpoint   string `yaml:"embedding_endpoint" env:"AI_EMBEDDING_ENDPOINT" env-default:"https://api.openai.com/v1"`
	EmbeddingModel      string `yaml:"embedding_model" env:"AI_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	EmbeddingAPIKey     string `yaml:"-" env:"AI_EMBEDDING_API_KEY"` // secret - not in YAML
	EmbeddingDimensions int    `yaml:"embedding_dimensions" env:"AI_EMBEDDING_DIMENSIONS" env-default:"384"`
}

// PipelineConfig tunes the generation pipeline.
type PipelineConfig struct {
	// ExamplesPath points at the worked natural-language→SQL example corpus
	// (JSON or YAML).
	ExamplesPath string `yaml:"examples_path" env:"EXAMPLES_PATH" env-default:"data/queries.json"`

	// ExampleCount is how many corpus examples a request samples.
	ExampleCount int `yaml:"example_count" env:"EXAMPLE_COUNT" env-default:"5"`

	// VectorRowsInPrompt is how many semantically similar rows are retrieved
	// into the prompt.
	VectorRowsInPrompt int `yaml:"vector_rows_in_prompt" env:"VECTOR_ROWS_IN_PROMPT" env-default:"2"`

	// SampleRowsPerTable is how many representative rows the schema snapshot
	// carries per table.
	SampleRowsPerTable int `yaml:"sample_rows_per_table" env:"SAMPLE_ROWS_PER_TABLE" env-default:"1"`

	// ExecutionTimeoutSeconds bounds a single SQL execution.
	ExecutionTimeoutSeconds int `yaml:"execution_timeout_seconds" env:"SQL_EXECUTION_TIMEOUT" env-default:"10"`

	// TokenTTLMinutes is how long an unconsumed query token survives before
	// the sweep expires it.
	TokenTTLMinutes int `yaml:"token_ttl_minutes" env:"TOKEN_TTL_MINUTES" env-default:"15"`

	// MaxResultRows caps rows returned by an execution.
	MaxResultRows int `yaml:"max_result_rows" env:"MAX_RESULT_ROWS" env-default:"1000"`
}

// ExecutionTimeout returns the execution timeout as a duration.
func (c *PipelineConfig) ExecutionTimeout() time.Duration {
	return time.Duration(c.ExecutionTimeoutSeconds) * time.Second
}

// TokenTTL returns the token time-to-live as a duration.
func (c *PipelineConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// RateLimitConfig holds per-caller request windows.
type RateLimitConfig struct {
	// GenerateWindowSeconds: one generation request per caller per window.
	GenerateWindowSeconds int `yaml:"generate_window_seconds" env:"RATE_LIMIT_GENERATE_SECONDS" env-default:"15"`

	// FeedbackWindowSeconds: one feedback submission per caller per window.
	FeedbackWindowSeconds int `yaml:"feedback_window_seconds" env:"RATE_LIMIT_FEEDBACK_SECONDS" env-default:"5"`
}

// GenerateWindow returns the generation window as a duration.
func (c *RateLimitConfig) GenerateWindow() time.Duration {
	return time.Duration(c.GenerateWindowSeconds) * time.Second
}

// FeedbackWindow returns the feedback window as a duration.
func (c *RateLimitConfig) FeedbackWindow() time.Duration {
	return time.Duration(c.FeedbackWindowSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; defaults and environment
// variables apply. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.ExampleCount < 0 {
		return fmt.Errorf("example_count must not be negative")
	}
	if c.Pipeline.VectorRowsInPrompt < 0 {
		return fmt.Errorf("vector_rows_in_prompt must not be negative")
	}
	if c.Pipeline.ExecutionTimeoutSeconds <= 0 {
		return fmt.Errorf("execution_timeout_seconds must be positive")
	}
	if c.RateLimit.GenerateWindowSeconds <= 0 || c.RateLimit.FeedbackWindowSeconds <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	return nil
}
