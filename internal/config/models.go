package config

import "time"

// RulesConfig represents the configuration for the case rule file
type RulesConfig struct {
	Path string
}

// CategoriesConfig represents the configuration for the category table file
type CategoriesConfig struct {
	Path string
}

// ExtractionConfig represents the configuration for document extraction
type ExtractionConfig struct {
	NativeTimeout  time.Duration
	MinPageChars   int
	NativeCoverage float64
	RenderDPI      int
	ParallelUnits  int
}

// RecognitionConfig represents the configuration for the recognition provider
type RecognitionConfig struct {
	Provider string
}

// TesseractConfig represents the configuration for the tesseract engine
type TesseractConfig struct {
	Binary    string
	Languages string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
}

// IMAPConfig represents the configuration for the inbox watcher
type IMAPConfig struct {
	Server       string
	Port         int
	Username     string
	Password     string
	Folder       string
	PollInterval time.Duration
	UseTLS       bool
}

// SMTPConfig represents the configuration for the reply sender
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// JournalConfig represents the configuration for the processed-message journal
type JournalConfig struct {
	Type             string
	Enabled          bool
	Retention        time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// GetRules returns the case rule configuration
func (c *Config) GetRules() RulesConfig {
	return RulesConfig{
		Path: c.GetString("rules.path"),
	}
}

// GetCategories returns the category table configuration
func (c *Config) GetCategories() CategoriesConfig {
	return CategoriesConfig{
		Path: c.GetString("categories.path"),
	}
}

// GetExtraction returns the extraction configuration
func (c *Config) GetExtraction() ExtractionConfig {
	return ExtractionConfig{
		NativeTimeout:  c.v.GetDuration("extraction.native_timeout"),
		MinPageChars:   c.GetInt("extraction.min_page_chars"),
		NativeCoverage: c.GetFloat64("extraction.native_coverage"),
		RenderDPI:      c.GetInt("extraction.render_dpi"),
		ParallelUnits:  c.GetInt("extraction.parallel_units"),
	}
}

// GetRecognition returns the recognition provider configuration
func (c *Config) GetRecognition() RecognitionConfig {
	return RecognitionConfig{
		Provider: c.GetString("recognition.provider"),
	}
}

// GetTesseract returns the tesseract configuration
func (c *Config) GetTesseract() TesseractConfig {
	return TesseractConfig{
		Binary:    c.GetString("tesseract.binary"),
		Languages: c.GetString("tesseract.languages"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
	}
}

// GetIMAP returns the inbox watcher configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Server:       c.GetString("imap.server"),
		Port:         c.GetInt("imap.port"),
		Username:     c.GetString("imap.username"),
		Password:     c.GetString("imap.password"),
		Folder:       c.GetString("imap.folder"),
		PollInterval: c.v.GetDuration("imap.poll_interval"),
		UseTLS:       c.GetBool("imap.use_tls"),
	}
}

// GetSMTP returns the reply sender configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Server:   c.GetString("smtp.server"),
		Port:     c.GetInt("smtp.port"),
		Username: c.GetString("smtp.username"),
		Password: c.GetString("smtp.password"),
		From:     c.GetString("smtp.from"),
		UseTLS:   c.GetBool("smtp.use_tls"),
	}
}

// GetJournal returns the journal configuration
func (c *Config) GetJournal() JournalConfig {
	return JournalConfig{
		Type:             c.GetString("journal.type"),
		Enabled:          c.GetBool("journal.enabled"),
		Retention:        c.v.GetDuration("journal.retention"),
		CleanupFrequency: c.v.GetDuration("journal.cleanup_frequency"),
		SQLitePath:       c.GetString("journal.sqlite_path"),
		MySQLDSN:         c.GetString("journal.mysql_dsn"),
	}
}
