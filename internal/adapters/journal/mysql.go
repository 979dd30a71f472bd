package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fruno/warranty-bot/internal/core"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const mysqlTimeFormat = "2006-01-02 15:04:05"

// MySQLJournal is a MySQL implementation of the Journal interface
type MySQLJournal struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLJournal creates a new MySQL journal
func NewMySQLJournal(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLJournal, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_messages (
			message_id VARCHAR(255) PRIMARY KEY,
			case_id VARCHAR(64),
			category_id INT,
			strategy VARCHAR(32),
			processed_at TIMESTAMP,
			INDEX idx_processed_at (processed_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	j := &MySQLJournal{
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
func (j *MySQLJournal) Seen(ctx context.Context, messageID string) (bool, error) {
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

	ts, err := time.Parse(mysqlTimeFormat, processedAt)
	if err != nil {
		return false, fmt.Errorf("failed to parse processed_at timestamp: %w", err)
	}

	if time.Since(ts) > j.retention {
		return false, nil
	}

	return true, nil
}

// Entry returns the journal entry for a message id, for audit queries.
// Returns ErrNotFound when the message was never journaled.
func (j *MySQLJournal) Entry(ctx context.Context, messageID string) (*core.JournalEntry, error) {
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
	entry.ProcessedAt, err = time.Parse(mysqlTimeFormat, processedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse processed_at timestamp: %w", err)
	}

	return &entry, nil
}

// Record stores a journal entry
func (j *MySQLJournal) Record(ctx context.Context, entry *core.JournalEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO processed_messages (message_id, case_id, category_id, strategy, processed_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			case_id = VALUES(case_id),
			category_id = VALUES(category_id),
			strategy = VALUES(strategy),
			processed_at = VALUES(processed_at)
	`, entry.MessageID, entry.CaseID, entry.CategoryID, entry.Strategy, entry.ProcessedAt.Format(mysqlTimeFormat))

	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	return nil
}

// Cleanup removes entries past the retention window
func (j *MySQLJournal) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	result, err := j.db.ExecContext(ctx, `
		DELETE FROM processed_messages
		WHERE processed_at <= ?
	`, cutoff.Format(mysqlTimeFormat))

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
func (j *MySQLJournal) startCleanupTask() {
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
func (j *MySQLJournal) Stop() {
	close(j.stopCh)
	if err := j.db.Close(); err != nil {
		j.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
