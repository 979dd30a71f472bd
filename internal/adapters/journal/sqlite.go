package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fruno/warranty-bot/internal/core"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteJournal is a SQLite implementation of the Journal interface
type SQLiteJournal struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteJournal creates a new SQLite journal
func NewSQLiteJournal(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id TEXT PRIMARY KEY,
			case_id TEXT,
			category_id INTEGER,
			strategy TEXT,
			processed_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on processed_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_messages(processed_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	j := &SQLiteJournal{
		db:          db,
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go j.startCleanupTask()

	return j, nil
}

// Seen reports whether a message id was already journaled
func (j *SQLiteJournal) Seen(ctx context.Context, messageID string) (bool, error) {
	var processedAt string

	err := j.db.QueryRowContext(ctx, `
		SELECT processed_at
		FROM processed_messages
		WHERE message_id = ?
	`, messageID).Scan(&processedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query journal: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, processedAt)
	if err != nil {
		j.logger.Error("Failed to parse processed_at timestamp", zap.Error(err))
		return false, nil
	}

	if time.Since(ts) > j.retention {
		return false, nil
	}

	return true, nil
}

// Entry returns the journal entry for a message id, for audit queries.
// Returns ErrNotFound when the message was never journaled.
func (j *SQLiteJournal) Entry(ctx context.Context, messageID string) (*core.JournalEntry, error) {
	var entry core.JournalEntry
	var strategy, processedAt string

	err := j.db.QueryRowContext(ctx, `
		SELECT message_id, case_id, category_id, strategy, processed_at
		FROM processed_messages
		WHERE message_id = ?
	`, messageID).Scan(&entry.MessageID, &entry.CaseID, &entry.CategoryID, &strategy, &processedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}

	entry.Strategy = core.ExtractionStrategy(strategy)
	entry.ProcessedAt, err = time.Parse(time.RFC3339, processedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse processed_at timestamp: %w", err)
	}

	return &entry, nil
}

// Record stores a journal entry
func (j *SQLiteJournal) Record(ctx context.Context, entry *core.JournalEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO processed_messages (message_id, case_id, category_id, strategy, processed_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.MessageID, entry.CaseID, entry.CategoryID, entry.Strategy, entry.ProcessedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	return nil
}

// Cleanup removes entries past the retention window
func (j *SQLiteJournal) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	result, err := j.db.ExecContext(ctx, `
		DELETE FROM processed_messages
		WHERE processed_at <= ?
	`, cutoff.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		j.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		j.logger.Debug("Cleaned up expired journal entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (j *SQLiteJournal) startCleanupTask() {
	ticker := time.NewTicker(j.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Cleanup(context.Background()); err != nil {
				j.logger.Error("Failed to clean up journal", zap.Error(err))
			}
		case <-j.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (j *SQLiteJournal) Stop() {
	close(j.stopCh)
	if err := j.db.Close(); err != nil {
		j.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
