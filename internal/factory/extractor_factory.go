package factory

import (
	"github.com/fruno/warranty-bot/internal/adapters/pdfdoc"
	"github.com/fruno/warranty-bot/internal/config"
	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/extraction"
	"github.com/fruno/warranty-bot/internal/utils"
	"go.uber.org/zap"
)

// ExtractorFactory assembles the extraction orchestrator
type ExtractorFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewExtractorFactory creates a new extractor factory
func NewExtractorFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ExtractorFactory {
	return &ExtractorFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateExtractor creates the orchestrator with the configured engines
func (f *ExtractorFactory) CreateExtractor(engine extraction.RecognitionEngine) (core.Extractor, error) {
	extractionConfig := f.cfg.GetExtraction()

	document := pdfdoc.NewDocument(float64(extractionConfig.RenderDPI), f.logger)

	orchestrator := extraction.NewOrchestrator(
		document,
		document,
		engine,
		f.textProcessor,
		extraction.Options{
			NativeTimeout:  extractionConfig.NativeTimeout,
			MinPageChars:   extractionConfig.MinPageChars,
			NativeCoverage: extractionConfig.NativeCoverage,
			ParallelUnits:  extractionConfig.ParallelUnits,
		},
		f.logger,
	)

	return orchestrator, nil
}
