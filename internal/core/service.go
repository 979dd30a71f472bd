package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineService coordinates the whole per-email flow: case dispatch,
// attachment extraction, classification, reply building and journaling.
type PipelineService struct {
	dispatcher     *Dispatcher
	extractor      Extractor
	categories     CategorySource
	journal        Journal
	journalEnabled bool
	logger         *zap.Logger
}

// NewPipelineService creates the pipeline coordinator.
func NewPipelineService(
	dispatcher *Dispatcher,
	extractor Extractor,
	categories CategorySource,
	journal Journal,
	journalEnabled bool,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		dispatcher:     dispatcher,
		extractor:      extractor,
		categories:     categories,
		journal:        journal,
		journalEnabled: journalEnabled,
		logger:         logger,
	}
}

// ProcessEmail runs one email through the pipeline. A nil outcome with a
// nil error means the email was skipped: no case matched, or it was
// already processed. Extraction failure never blocks the dispatch result —
// the outcome still carries the matched case and a fallback reply.
func (s *PipelineService) ProcessEmail(ctx context.Context, email *Email) (*CaseOutcome, error) {
	if s.journalEnabled && email.MessageID != "" {
		seen, err := s.journal.Seen(ctx, email.MessageID)
		if err != nil {
			s.logger.Error("Failed to query journal", zap.Error(err))
		} else if seen {
			s.logger.Debug("Skipping already processed message",
				zap.String("message_id", email.MessageID))
			return nil, nil
		}
	}

	dispatch := s.dispatcher.Dispatch(email.Subject, email.From)
	if dispatch == nil {
		return nil, nil
	}
	rule, _ := s.dispatcher.Rule(dispatch.CaseID)

	outcome := &CaseOutcome{
		ProcessingID: uuid.NewString(),
		Email:        email,
		Dispatch:     dispatch,
	}

	text, strategy := s.extractAttachments(ctx, email, outcome)

	if text != "" {
		outcome.Ticket = ParseTicket(text)

		subject := outcome.Ticket.ProductDescription
		if subject == "" {
			subject = text
		}
		classification := s.categories.Snapshot().Classify(subject)
		outcome.Classification = &classification

		s.logger.Info("Document classified",
			zap.String("processing_id", outcome.ProcessingID),
			zap.String("category", classification.CategoryName),
			zap.Int("category_id", classification.CategoryID),
			zap.Int("device_type_id", classification.DeviceTypeID),
			zap.String("matched_keyword", classification.MatchedKeyword))

		outcome.Reply = s.buildReply(rule, email, rule.Response)
	} else {
		// Category omitted: the dispatch result is still delivered.
		outcome.Reply = s.buildReply(rule, email, rule.FallbackResponse)
	}

	if s.journalEnabled && email.MessageID != "" {
		entry := &JournalEntry{
			MessageID:   email.MessageID,
			CaseID:      dispatch.CaseID,
			Strategy:    strategy,
			ProcessedAt: time.Now(),
		}
		if outcome.Classification != nil {
			entry.CategoryID = outcome.Classification.CategoryID
		}
		if err := s.journal.Record(ctx, entry); err != nil {
			s.logger.Error("Failed to journal message", zap.Error(err))
		}
	}

	return outcome, nil
}

// extractAttachments runs every attachment through the extractor in
// arrival order and returns the first accepted text with its strategy.
func (s *PipelineService) extractAttachments(ctx context.Context, email *Email, outcome *CaseOutcome) (string, ExtractionStrategy) {
	text := ""
	strategy := StrategyNone

	for i := range email.Attachments {
		att := &email.Attachments[i]
		result := s.extractor.Extract(ctx, att)
		outcome.Extractions = append(outcome.Extractions, result)

		s.logger.Info("Attachment extracted",
			zap.String("processing_id", outcome.ProcessingID),
			zap.String("filename", att.Filename),
			zap.String("strategy", string(result.Strategy)),
			zap.Bool("success", result.Success),
			zap.Duration("elapsed", result.Elapsed),
			zap.Int("unit_failures", len(result.UnitFailures)))
		for _, failure := range result.UnitFailures {
			s.logger.Warn("Extraction unit failed",
				zap.String("processing_id", outcome.ProcessingID),
				zap.String("filename", att.Filename),
				zap.Int("unit", failure.Unit),
				zap.String("reason", failure.Reason))
		}

		if result.Success && text == "" {
			text = result.Text
			strategy = result.Strategy
		}
	}

	return text, strategy
}

func (s *PipelineService) buildReply(rule CaseRule, email *Email, body string) *Reply {
	if body == "" {
		return nil
	}
	return &Reply{
		Recipient: unwrapAddress(email.From),
		Subject:   "Re: " + email.Subject,
		Body:      body,
	}
}

// unwrapAddress strips the display name from "Name <addr>" headers.
func unwrapAddress(from string) string {
	if open := strings.Index(from, "<"); open >= 0 {
		if end := strings.Index(from[open:], ">"); end > 0 {
			return strings.TrimSpace(from[open+1 : open+end])
		}
	}
	return strings.TrimSpace(from)
}
