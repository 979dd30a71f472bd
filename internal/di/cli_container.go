package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/fruno/warranty-bot/internal/categories"
	"github.com/fruno/warranty-bot/internal/config"
	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/extraction"
	"github.com/fruno/warranty-bot/internal/factory"
	"github.com/fruno/warranty-bot/internal/logging"
	"github.com/fruno/warranty-bot/internal/rules"
	"github.com/fruno/warranty-bot/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Recognition provider flags
	Provider    string
	MaxTokens   int
	Temperature float64

	// Tesseract flags
	TesseractBinary    string
	TesseractLanguages string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Extraction flags
	NativeTimeout  string
	MinPageChars   int
	NativeCoverage float64
	RenderDPI      int
	ParallelUnits  int

	// Data file flags
	RulesPath      string
	CategoriesPath string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Recognition provider flags
	flag.StringVar(&flags.Provider, "provider", "tesseract", "Recognition provider (tesseract, openai, gemini, bedrock)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 4096, "Maximum tokens for vision model response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.0, "Temperature for vision model generation")

	// Tesseract flags
	flag.StringVar(&flags.TesseractBinary, "tesseract-binary", "tesseract", "Path to the tesseract binary")
	flag.StringVar(&flags.TesseractLanguages, "tesseract-languages", "spa+eng", "Tesseract language codes")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o", "OpenAI model name")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Extraction flags
	flag.StringVar(&flags.NativeTimeout, "native-timeout", "30s", "Hard budget for the native text attempt")
	flag.IntVar(&flags.MinPageChars, "min-page-chars", 50, "Minimum characters for a page to count as native text")
	flag.Float64Var(&flags.NativeCoverage, "native-coverage", 0.8, "Fraction of pages that must carry native text")
	flag.IntVar(&flags.RenderDPI, "render-dpi", 144, "DPI for page rendering before recognition")
	flag.IntVar(&flags.ParallelUnits, "parallel-units", 1, "Recognition units processed concurrently")

	// Data file flags
	flag.StringVar(&flags.RulesPath, "rules", "./configs/config_casos.json", "Path to the case rule file")
	flag.StringVar(&flags.CategoriesPath, "categories", "./configs/config_categorias.json", "Path to the category table file")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRecognitionFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewExtractorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register recognition engine and extractor
	if err := container.Provide(func(f *factory.RecognitionFactory) (extraction.RecognitionEngine, error) {
		return f.CreateEngine()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ExtractorFactory, engine extraction.RecognitionEngine) (core.Extractor, error) {
		return f.CreateExtractor(engine)
	}); err != nil {
		return nil, err
	}

	// Register case rules and dispatcher
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) ([]core.CaseRule, error) {
		return rules.LoadFile(cfg.GetRules().Path, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDispatcher); err != nil {
		return nil, err
	}

	// Register category store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.CategorySource, error) {
		return categories.NewStore(cfg.GetCategories().Path, logger)
	}); err != nil {
		return nil, err
	}

	// Register pipeline service with no journal
	if err := container.Provide(func(
		dispatcher *core.Dispatcher,
		extractor core.Extractor,
		categorySource core.CategorySource,
		logger *zap.Logger,
	) *core.PipelineService {
		return core.NewPipelineService(
			dispatcher,
			extractor,
			categorySource,
			nil,   // No journal for one-shot runs
			false, // Journal disabled
			logger,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set recognition provider
	v.Set("recognition.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "tesseract":
		v.Set("tesseract.binary", flags.TesseractBinary)
		v.Set("tesseract.languages", flags.TesseractLanguages)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
	}

	// Set extraction tuning
	v.Set("extraction.native_timeout", flags.NativeTimeout)
	v.Set("extraction.min_page_chars", flags.MinPageChars)
	v.Set("extraction.native_coverage", flags.NativeCoverage)
	v.Set("extraction.render_dpi", flags.RenderDPI)
	v.Set("extraction.parallel_units", flags.ParallelUnits)

	// Set data files
	v.Set("rules.path", flags.RulesPath)
	v.Set("categories.path", flags.CategoriesPath)

	return config.NewFromViper(v)
}
