package core

import (
	"time"
)

// Email is the read-only view of an incoming message handed over by the
// mail transport. The core never mutates it.
type Email struct {
	MessageID   string
	From        string
	Subject     string
	Attachments []Attachment
}

// Attachment carries one attachment as received: filename, declared
// content type and raw bytes.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CaseRule is the canonical form of a configured case: the legacy
// single-string form is resolved into Keywords at load time.
type CaseRule struct {
	ID       string
	Keywords []string
	Senders  []string
	// Response is the reply body sent when the case matches and an
	// attached document was processed.
	Response string
	// FallbackResponse is sent when no attachment yielded usable text.
	FallbackResponse string
}

// Dead reports whether the rule can never match any input.
func (r CaseRule) Dead() bool {
	return len(r.Keywords) == 0 && len(r.Senders) == 0
}

// DispatchResult records which case matched an email and why.
type DispatchResult struct {
	CaseID         string
	MatchedKeyword string
	MatchedSender  string
	DispatchedAt   time.Time
}

// ExtractionStrategy tags which path produced the accepted text.
type ExtractionStrategy string

const (
	StrategyNative      ExtractionStrategy = "native"
	StrategyRecognition ExtractionStrategy = "recognition"
	StrategyNone        ExtractionStrategy = "none"
)

// UnitFailure records one page/unit that could not be read.
type UnitFailure struct {
	Unit   int
	Reason string
}

// ExtractionResult is the outcome of running one attachment through the
// extraction pipeline. Created fresh per attachment.
type ExtractionResult struct {
	Text         string
	Strategy     ExtractionStrategy
	Elapsed      time.Duration
	UnitFailures []UnitFailure
	Success      bool
}

// KeywordEntry is one configured keyword with its device-type tag.
type KeywordEntry struct {
	Keyword      string
	DeviceTypeID int
}

// Category is one product classification bucket with its stable id and
// ordered keyword entries.
type Category struct {
	Name     string
	ID       int
	Keywords []KeywordEntry
}

// ClassificationResult is the outcome of classifying extracted text.
type ClassificationResult struct {
	CategoryName   string
	CategoryID     int
	DeviceTypeID   int
	MatchedKeyword string
}

// JournalEntry records one processed email for idempotence and audit.
type JournalEntry struct {
	MessageID   string
	CaseID      string
	CategoryID  int
	Strategy    ExtractionStrategy
	ProcessedAt time.Time
}

// Reply is the outgoing reply payload for a matched case.
type Reply struct {
	Recipient string
	Subject   string
	Body      string
}

// CaseOutcome is the structured result the coordinator produces per email.
type CaseOutcome struct {
	ProcessingID   string
	Email          *Email
	Dispatch       *DispatchResult
	Extractions    []*ExtractionResult
	Ticket         *TicketData
	Classification *ClassificationResult
	Reply          *Reply
}
