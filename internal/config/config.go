package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/warranty-bot/")
	v.AddConfigPath("$HOME/.warranty-bot")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("WARRANTY_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Case rule defaults
	v.SetDefault("rules.path", "./configs/config_casos.json")

	// Category table defaults
	v.SetDefault("categories.path", "./configs/config_categorias.json")

	// Extraction defaults
	v.SetDefault("extraction.native_timeout", "30s")
	v.SetDefault("extraction.min_page_chars", 50)
	v.SetDefault("extraction.native_coverage", 0.8)
	v.SetDefault("extraction.render_dpi", 144)
	v.SetDefault("extraction.parallel_units", 1)

	// Recognition provider defaults
	v.SetDefault("recognition.provider", "tesseract")

	// Tesseract defaults
	v.SetDefault("tesseract.binary", "tesseract")
	v.SetDefault("tesseract.languages", "spa+eng")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o")
	v.SetDefault("openai.max_tokens", 4096)
	v.SetDefault("openai.temperature", 0.0)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 4096)
	v.SetDefault("gemini.temperature", 0.0)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 4096)
	v.SetDefault("bedrock.temperature", 0.0)

	// IMAP defaults
	v.SetDefault("imap.server", "")
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.folder", "INBOX")
	v.SetDefault("imap.poll_interval", "1m")
	v.SetDefault("imap.use_tls", true)

	// SMTP defaults
	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.use_tls", false)

	// Journal defaults
	v.SetDefault("journal.type", "memory")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.retention", "720h")
	v.SetDefault("journal.cleanup_frequency", "1h")
	v.SetDefault("journal.sqlite_path", "/data/warranty_journal.db")
	v.SetDefault("journal.mysql_dsn", "user:password@tcp(localhost:3306)/warranty_bot")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
