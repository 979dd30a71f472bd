package ports

import (
	"context"

	"github.com/fruno/warranty-bot/internal/core"
)

// MailProcessor runs one email through the document pipeline
type MailProcessor interface {
	// ProcessEmail processes an email and returns the case outcome, or nil
	// when the email is skipped
	ProcessEmail(ctx context.Context, email *core.Email) (*core.CaseOutcome, error)
}

// Inbox defines the interface for the mailbox surface
type Inbox interface {
	// Start starts watching the mailbox
	Start() error

	// Stop stops watching the mailbox
	Stop() error
}

// ReplySender delivers case replies back to the customer
type ReplySender interface {
	// SendReply sends a reply message
	SendReply(ctx context.Context, reply *core.Reply) error
}
