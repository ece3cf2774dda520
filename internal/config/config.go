package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/joelkehle/quote-compare/internal/completion"
	"github.com/joelkehle/quote-compare/internal/schema"
)

// Prefix of every variable. Unprefixed names are accepted as well, so
// ANTHROPIC_API_KEY works the same as QUOTECOMPARE_ANTHROPIC_API_KEY.
const Prefix = "QUOTECOMPARE"

type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	CompletionProvider    string        `envconfig:"COMPLETION_PROVIDER" default:"anthropic"`
	AnthropicAPIKey       string        `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey          string        `envconfig:"OPENAI_API_KEY"`
	CompletionModel       string        `envconfig:"COMPLETION_MODEL"`
	CompletionTemperature float64       `envconfig:"COMPLETION_TEMPERATURE" default:"0.2"`
	CompletionMaxTokens   int           `envconfig:"COMPLETION_MAX_TOKENS" default:"4096"`
	CompletionTimeout     time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"60s"`
	CompletionRPS         float64       `envconfig:"COMPLETION_RPS" default:"0"`

	HTTPAddr   string `envconfig:"HTTP_ADDR" default:":8090"`
	DBPath     string `envconfig:"DB_PATH"`
	SchemaFile string `envconfig:"SCHEMA_FILE"`

	OTELEndpoint string `envconfig:"OTEL_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"quote-compare"`
}

func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// CompletionOptions picks the API key that matches the configured provider.
func (c *Config) CompletionOptions() completion.Options {
	key := c.AnthropicAPIKey
	if strings.EqualFold(strings.TrimSpace(c.CompletionProvider), completion.ProviderOpenAI) {
		key = c.OpenAIAPIKey
	}
	return completion.Options{
		Provider:    c.CompletionProvider,
		APIKey:      key,
		Model:       c.CompletionModel,
		Temperature: c.CompletionTemperature,
		MaxTokens:   c.CompletionMaxTokens,
		Timeout:     c.CompletionTimeout,
		RPS:         c.CompletionRPS,
	}
}

// Registry returns the built-in schema registry, overlaid with SchemaFile
// when one is configured.
func (c *Config) Registry() (*schema.Registry, error) {
	if strings.TrimSpace(c.SchemaFile) == "" {
		return schema.Default(), nil
	}
	reg, err := schema.LoadFile(schema.Default(), c.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("load schema overlay: %w", err)
	}
	return reg, nil
}
