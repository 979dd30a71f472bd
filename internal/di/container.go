package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/fruno/warranty-bot/internal/categories"
	"github.com/fruno/warranty-bot/internal/config"
	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/extraction"
	"github.com/fruno/warranty-bot/internal/factory"
	"github.com/fruno/warranty-bot/internal/logging"
	"github.com/fruno/warranty-bot/internal/ports"
	"github.com/fruno/warranty-bot/internal/rules"
	"github.com/fruno/warranty-bot/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
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
	if err := container.Provide(factory.NewJournalFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewInboxFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register recognition engine
	if err := container.Provide(func(f *factory.RecognitionFactory) (extraction.RecognitionEngine, error) {
		return f.CreateEngine()
	}); err != nil {
		return nil, err
	}

	// Register extractor
	if err := container.Provide(func(f *factory.ExtractorFactory, engine extraction.RecognitionEngine) (core.Extractor, error) {
		return f.CreateExtractor(engine)
	}); err != nil {
		return nil, err
	}

	// Register journal and enabled flag
	if err := container.Provide(func(f *factory.JournalFactory) (core.Journal, error) {
		return f.CreateJournal()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.JournalFactory) bool {
		return f.IsJournalEnabled()
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

	// Register pipeline service
	if err := container.Provide(core.NewPipelineService); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.PipelineService) ports.MailProcessor {
		return s
	}); err != nil {
		return nil, err
	}

	// Register reply sender and inbox
	if err := container.Provide(func(f *factory.InboxFactory) ports.ReplySender {
		return f.CreateReplySender()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.InboxFactory, processor ports.MailProcessor, sender ports.ReplySender) ports.Inbox {
		return f.CreateInbox(processor, sender)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
