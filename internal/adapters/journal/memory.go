package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fruno/warranty-bot/internal/core"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a journal entry is not found
var ErrNotFound = errors.New("journal entry not found")

// MemoryJournal is an in-memory implementation of the Journal interface
type MemoryJournal struct {
	entries     map[string]*core.JournalEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryJournal creates a new in-memory journal
func NewMemoryJournal(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryJournal {
	j := &MemoryJournal{
		entries:     make(map[string]*core.JournalEntry),
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go j.startCleanupTask()

	return j
}

// Seen reports whether a message id was already journaled
func (j *MemoryJournal) Seen(ctx context.Context, messageID string) (bool, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entry, ok := j.entries[messageID]
	if !ok {
		return false, nil
	}

	// Treat entries past the retention window as gone
	if time.Since(entry.ProcessedAt) > j.retention {
		return false, nil
	}

	return true, nil
}

// Entry returns the journal entry for a message id, for audit queries.
// Returns ErrNotFound when the message was never journaled.
func (j *MemoryJournal) Entry(ctx context.Context, messageID string) (*core.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entry, ok := j.entries[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

// Record stores a journal entry
func (j *MemoryJournal) Record(ctx context.Context, entry *core.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries[entry.MessageID] = entry
	return nil
}

// Cleanup removes entries past the retention window
func (j *MemoryJournal) Cleanup(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := time.Now().Add(-j.retention)
	expiredCount := 0

	for id, entry := range j.entries {
		if entry.ProcessedAt.Before(cutoff) {
			delete(j.entries, id)
			expiredCount++
		}
	}

	j.logger.Debug("Cleaned up expired journal entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (j *MemoryJournal) startCleanupTask() {
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

// Stop stops the background cleanup task
func (j *MemoryJournal) Stop() {
	close(j.stopCh)
}
