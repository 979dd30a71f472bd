package factory

import (
	"github.com/fruno/warranty-bot/internal/adapters/mailbox"
	"github.com/fruno/warranty-bot/internal/config"
	"github.com/fruno/warranty-bot/internal/ports"
	"go.uber.org/zap"
)

// InboxFactory creates the mailbox surface
type InboxFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewInboxFactory creates a new inbox factory
func NewInboxFactory(cfg *config.Config, logger *zap.Logger) *InboxFactory {
	return &InboxFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReplySender creates the reply sender, or nil when no SMTP server
// is configured (replies are then logged and dropped).
func (f *InboxFactory) CreateReplySender() ports.ReplySender {
	smtpConfig := f.cfg.GetSMTP()
	if smtpConfig.Server == "" {
		f.logger.Warn("No SMTP server configured, replies will not be sent")
		return nil
	}

	return mailbox.NewSMTPSender(mailbox.SMTPOptions{
		Server:   smtpConfig.Server,
		Port:     smtpConfig.Port,
		Username: smtpConfig.Username,
		Password: smtpConfig.Password,
		From:     smtpConfig.From,
		UseTLS:   smtpConfig.UseTLS,
	}, f.logger)
}

// CreateInbox creates the inbox watcher wired to the pipeline
func (f *InboxFactory) CreateInbox(processor ports.MailProcessor, sender ports.ReplySender) ports.Inbox {
	imapConfig := f.cfg.GetIMAP()

	return mailbox.NewIMAPInbox(mailbox.IMAPOptions{
		Server:       imapConfig.Server,
		Port:         imapConfig.Port,
		Username:     imapConfig.Username,
		Password:     imapConfig.Password,
		Folder:       imapConfig.Folder,
		PollInterval: imapConfig.PollInterval,
		UseTLS:       imapConfig.UseTLS,
	}, processor, sender, f.logger)
}
