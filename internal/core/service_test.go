package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	results map[string]*ExtractionResult
}

func (f *fakeExtractor) Extract(ctx context.Context, att *Attachment) *ExtractionResult {
	if r, ok := f.results[att.Filename]; ok {
		return r
	}
	return &ExtractionResult{Strategy: StrategyNone, Success: false}
}

type staticCategories struct {
	table *CategoryTable
}

func (s *staticCategories) Snapshot() *CategoryTable { return s.table }

type fakeJournal struct {
	seen    map[string]bool
	records []*JournalEntry
}

func (f *fakeJournal) Seen(ctx context.Context, messageID string) (bool, error) {
	return f.seen[messageID], nil
}

func (f *fakeJournal) Record(ctx context.Context, entry *JournalEntry) error {
	f.records = append(f.records, entry)
	return nil
}

func (f *fakeJournal) Cleanup(ctx context.Context) error { return nil }

func testService(extractor Extractor, journal Journal) *PipelineService {
	rules := []CaseRule{
		{
			ID:               "caso1",
			Keywords:         []string{"boleta"},
			Response:         "Su boleta fue procesada.",
			FallbackResponse: "No pudimos leer su boleta.",
		},
	}
	dispatcher := NewDispatcher(rules, zap.NewNop())
	categories := &staticCategories{table: NewCategoryTable([]Category{
		{Name: "Accesorios", ID: 6, Keywords: []KeywordEntry{
			{Keyword: "CABLE USB", DeviceTypeID: 11},
		}},
	})}

	enabled := journal != nil
	return NewPipelineService(dispatcher, extractor, categories, journal, enabled, zap.NewNop())
}

// TestProcessEmail_ScannedTicket tests the full flow: dispatch, recognition
// extraction, ticket parsing, classification and reply
func TestProcessEmail_ScannedTicket(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ExtractionResult{
		"boleta.pdf": {
			Text:     "No. Boleta: 41-123456\nCódigo: 100234 CABLE USB TIPO C Serie: SN1",
			Strategy: StrategyRecognition,
			Success:  true,
			Elapsed:  120 * time.Millisecond,
		},
	}}
	service := testService(extractor, nil)

	email := &Email{
		MessageID: "<m1@example.com>",
		From:      "Ana <ana@fruno.com>",
		Subject:   "Boleta de garantía",
		Attachments: []Attachment{
			{Filename: "boleta.pdf", ContentType: "application/pdf"},
		},
	}

	outcome, err := service.ProcessEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.NotEmpty(t, outcome.ProcessingID)
	assert.Equal(t, "caso1", outcome.Dispatch.CaseID)

	require.NotNil(t, outcome.Classification)
	assert.Equal(t, "Accesorios", outcome.Classification.CategoryName)
	assert.Equal(t, 6, outcome.Classification.CategoryID)
	assert.Equal(t, 11, outcome.Classification.DeviceTypeID)

	require.NotNil(t, outcome.Ticket)
	assert.Equal(t, "41-123456", outcome.Ticket.TicketNumber)
	assert.Equal(t, "CABLE USB TIPO C", outcome.Ticket.ProductDescription)

	require.NotNil(t, outcome.Reply)
	assert.Equal(t, "ana@fruno.com", outcome.Reply.Recipient)
	assert.Equal(t, "Re: Boleta de garantía", outcome.Reply.Subject)
	assert.Equal(t, "Su boleta fue procesada.", outcome.Reply.Body)
}

// TestProcessEmail_ExtractionFailure tests that a dead attachment still
// yields the dispatch result with the fallback reply
func TestProcessEmail_ExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ExtractionResult{
		"roto.pdf": {Strategy: StrategyNone, Success: false},
	}}
	service := testService(extractor, nil)

	email := &Email{
		From:        "ana@fruno.com",
		Subject:     "boleta",
		Attachments: []Attachment{{Filename: "roto.pdf", ContentType: "application/pdf"}},
	}

	outcome, err := service.ProcessEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, "caso1", outcome.Dispatch.CaseID)
	assert.Nil(t, outcome.Classification)
	assert.Nil(t, outcome.Ticket)

	require.NotNil(t, outcome.Reply)
	assert.Equal(t, "No pudimos leer su boleta.", outcome.Reply.Body)
}

func TestProcessEmail_NoCaseMatched(t *testing.T) {
	service := testService(&fakeExtractor{}, nil)

	outcome, err := service.ProcessEmail(context.Background(), &Email{
		From:    "ana@fruno.com",
		Subject: "consulta general",
	})
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

// TestProcessEmail_JournalSkip tests that an already journaled message id
// is skipped entirely
func TestProcessEmail_JournalSkip(t *testing.T) {
	journal := &fakeJournal{seen: map[string]bool{"<m1@example.com>": true}}
	service := testService(&fakeExtractor{}, journal)

	outcome, err := service.ProcessEmail(context.Background(), &Email{
		MessageID: "<m1@example.com>",
		From:      "ana@fruno.com",
		Subject:   "boleta",
	})
	require.NoError(t, err)
	assert.Nil(t, outcome)
	assert.Empty(t, journal.records)
}

func TestProcessEmail_JournalRecord(t *testing.T) {
	journal := &fakeJournal{seen: map[string]bool{}}
	extractor := &fakeExtractor{results: map[string]*ExtractionResult{
		"boleta.pdf": {
			Text:     "CABLE USB",
			Strategy: StrategyNative,
			Success:  true,
		},
	}}
	service := testService(extractor, journal)

	outcome, err := service.ProcessEmail(context.Background(), &Email{
		MessageID:   "<m2@example.com>",
		From:        "ana@fruno.com",
		Subject:     "boleta",
		Attachments: []Attachment{{Filename: "boleta.pdf", ContentType: "application/pdf"}},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	require.Len(t, journal.records, 1)
	entry := journal.records[0]
	assert.Equal(t, "<m2@example.com>", entry.MessageID)
	assert.Equal(t, "caso1", entry.CaseID)
	assert.Equal(t, 6, entry.CategoryID)
	assert.Equal(t, StrategyNative, entry.Strategy)
	assert.False(t, entry.ProcessedAt.IsZero())
}

// TestProcessEmail_FirstSuccessfulAttachment tests that the first
// attachment with usable text drives classification
func TestProcessEmail_FirstSuccessfulAttachment(t *testing.T) {
	extractor := &fakeExtractor{results: map[string]*ExtractionResult{
		"a.pdf": {Strategy: StrategyNone, Success: false},
		"b.pdf": {Text: "CABLE USB", Strategy: StrategyRecognition, Success: true},
	}}
	service := testService(extractor, nil)

	outcome, err := service.ProcessEmail(context.Background(), &Email{
		From:    "ana@fruno.com",
		Subject: "boleta",
		Attachments: []Attachment{
			{Filename: "a.pdf", ContentType: "application/pdf"},
			{Filename: "b.pdf", ContentType: "application/pdf"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Len(t, outcome.Extractions, 2, "Every attachment is attempted and recorded")
	require.NotNil(t, outcome.Classification)
	assert.Equal(t, "Accesorios", outcome.Classification.CategoryName)
}

func TestUnwrapAddress(t *testing.T) {
	assert.Equal(t, "ana@fruno.com", unwrapAddress("Ana Pérez <ana@fruno.com>"))
	assert.Equal(t, "ana@fruno.com", unwrapAddress("ana@fruno.com"))
	assert.Equal(t, "ana@fruno.com", unwrapAddress("  ana@fruno.com  "))
}
