package gemini

import (
	"github.com/fruno/warranty-bot/internal/config"
	"go.uber.org/zap"
)

// Factory creates Gemini recognition engines.
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini engines.
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEngine creates a new Gemini recognition engine from config.
func (f *Factory) CreateEngine() (*Engine, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewEngine(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		f.logger,
	)
}
