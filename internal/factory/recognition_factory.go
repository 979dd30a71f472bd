package factory

import (
	"fmt"

	"github.com/fruno/warranty-bot/internal/adapters/bedrock"
	"github.com/fruno/warranty-bot/internal/adapters/gemini"
	"github.com/fruno/warranty-bot/internal/adapters/openai"
	"github.com/fruno/warranty-bot/internal/adapters/tesseract"
	"github.com/fruno/warranty-bot/internal/config"
	"github.com/fruno/warranty-bot/internal/extraction"
	"go.uber.org/zap"
)

// RecognitionFactory creates recognition engines
type RecognitionFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRecognitionFactory creates a new recognition factory
func NewRecognitionFactory(cfg *config.Config, logger *zap.Logger) *RecognitionFactory {
	return &RecognitionFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEngine creates a recognition engine based on the configuration
func (f *RecognitionFactory) CreateEngine() (extraction.RecognitionEngine, error) {
	recognitionConfig := f.cfg.GetRecognition()

	switch recognitionConfig.Provider {
	case "tesseract":
		tessConfig := f.cfg.GetTesseract()
		return tesseract.NewEngine(tessConfig.Binary, tessConfig.Languages, f.logger), nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger)
		return factory.CreateEngine()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger)
		return factory.CreateEngine()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger)
		return factory.CreateEngine()
	default:
		return nil, fmt.Errorf("unsupported recognition provider: %s", recognitionConfig.Provider)
	}
}
