package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fruno/warranty-bot/internal/adapters/journal"
	"github.com/fruno/warranty-bot/internal/config"
	"github.com/fruno/warranty-bot/internal/core"
	"go.uber.org/zap"
)

// JournalFactory creates processed-message journals based on configuration
type JournalFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJournalFactory creates a new journal factory
func NewJournalFactory(cfg *config.Config, logger *zap.Logger) *JournalFactory {
	return &JournalFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateJournal creates a journal based on the configuration
func (f *JournalFactory) CreateJournal() (core.Journal, error) {
	journalConfig := f.cfg.GetJournal()

	switch journalConfig.Type {
	case "memory":
		return journal.NewMemoryJournal(f.logger, journalConfig.Retention, journalConfig.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(journalConfig.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return journal.NewSQLiteJournal(journalConfig.SQLitePath, f.logger, journalConfig.Retention, journalConfig.CleanupFrequency)
	case "mysql":
		return journal.NewMySQLJournal(journalConfig.MySQLDSN, f.logger, journalConfig.Retention, journalConfig.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", journalConfig.Type)
	}
}

// IsJournalEnabled returns whether journaling is enabled
func (f *JournalFactory) IsJournalEnabled() bool {
	return f.cfg.GetBool("journal.enabled")
}
