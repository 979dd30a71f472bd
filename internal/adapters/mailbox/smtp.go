package mailbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/fruno/warranty-bot/internal/core"
	"go.uber.org/zap"
)

// SMTPOptions configures the reply sender.
type SMTPOptions struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// SMTPSender delivers replies over SMTP with PLAIN auth.
type SMTPSender struct {
	opts   SMTPOptions
	logger *zap.Logger
}

// NewSMTPSender creates a new reply sender.
func NewSMTPSender(opts SMTPOptions, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		opts:   opts,
		logger: logger,
	}
}

// SendReply sends a reply message.
func (s *SMTPSender) SendReply(ctx context.Context, reply *core.Reply) error {
	if reply.Recipient == "" {
		return fmt.Errorf("reply has no recipient")
	}
	// CRLF in a header would let body text smuggle extra headers in.
	if strings.ContainsAny(reply.Subject, "\r\n") {
		return fmt.Errorf("reply subject contains invalid characters")
	}
	if strings.ContainsAny(reply.Recipient, "\r\n,;") {
		return fmt.Errorf("reply recipient contains invalid characters")
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Server, s.opts.Port)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.opts.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", reply.Recipient))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", reply.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(reply.Body)

	var auth sasl.Client
	if s.opts.Username != "" {
		auth = sasl.NewPlainClient("", s.opts.Username, s.opts.Password)
	}

	var err error
	if s.opts.UseTLS {
		err = smtp.SendMailTLS(addr, auth, s.opts.From, []string{reply.Recipient}, strings.NewReader(msg.String()))
	} else {
		err = smtp.SendMail(addr, auth, s.opts.From, []string{reply.Recipient}, strings.NewReader(msg.String()))
	}
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	s.logger.Info("Reply sent",
		zap.String("recipient", reply.Recipient),
		zap.String("subject", reply.Subject))
	return nil
}
