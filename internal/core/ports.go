package core

import (
	"context"
)

// Extractor turns an attachment into text, reporting which strategy
// produced it. Implementations never return an error: failure is part of
// the result, so one bad attachment cannot abort the pipeline.
type Extractor interface {
	Extract(ctx context.Context, att *Attachment) *ExtractionResult
}

// CategorySource hands out the latest loaded category-table snapshot.
// Snapshots are immutable; reloads swap the whole table atomically.
type CategorySource interface {
	Snapshot() *CategoryTable
}

// Journal records processed messages for idempotence and after-the-fact
// audit.
type Journal interface {
	// Seen reports whether a message id was already journaled.
	Seen(ctx context.Context, messageID string) (bool, error)

	// Record stores a journal entry.
	Record(ctx context.Context, entry *JournalEntry) error

	// Cleanup removes entries past the retention window.
	Cleanup(ctx context.Context) error
}
