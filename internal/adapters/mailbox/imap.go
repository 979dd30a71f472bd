package mailbox

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/ports"
	"go.uber.org/zap"
)

// IMAPOptions configures the inbox watcher.
type IMAPOptions struct {
	Server       string
	Port         int
	Username     string
	Password     string
	Folder       string
	PollInterval time.Duration
	UseTLS       bool
}

// IMAPInbox polls an IMAP folder for unseen messages and feeds them to the
// pipeline. Processed messages are flagged seen so a restart never replays
// them; the journal covers the window between processing and flagging.
type IMAPInbox struct {
	opts      IMAPOptions
	processor ports.MailProcessor
	sender    ports.ReplySender
	logger    *zap.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewIMAPInbox creates a new inbox watcher.
func NewIMAPInbox(
	opts IMAPOptions,
	processor ports.MailProcessor,
	sender ports.ReplySender,
	logger *zap.Logger,
) *IMAPInbox {
	if opts.Folder == "" {
		opts.Folder = "INBOX"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	return &IMAPInbox{
		opts:      opts,
		processor: processor,
		sender:    sender,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the polling loop.
func (i *IMAPInbox) Start() error {
	i.logger.Info("Starting inbox watcher",
		zap.String("server", i.opts.Server),
		zap.String("folder", i.opts.Folder),
		zap.Duration("poll_interval", i.opts.PollInterval))

	i.wg.Add(1)
	go i.pollLoop()
	return nil
}

// Stop stops the polling loop and waits for the current poll to finish.
func (i *IMAPInbox) Stop() error {
	close(i.stopCh)
	i.wg.Wait()
	i.logger.Info("Inbox watcher stopped")
	return nil
}

func (i *IMAPInbox) pollLoop() {
	defer i.wg.Done()

	ticker := time.NewTicker(i.opts.PollInterval)
	defer ticker.Stop()

	// First poll happens immediately, not after one interval.
	if err := i.poll(); err != nil {
		i.logger.Error("Inbox poll failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := i.poll(); err != nil {
				i.logger.Error("Inbox poll failed", zap.Error(err))
			}
		case <-i.stopCh:
			return
		}
	}
}

// poll connects, processes every unseen message and disconnects. A fresh
// connection per poll keeps the watcher immune to dropped sessions.
func (i *IMAPInbox) poll() error {
	c, err := i.connect()
	if err != nil {
		return err
	}
	defer c.Logout()

	if _, err := c.Select(i.opts.Folder, false); err != nil {
		return fmt.Errorf("failed to select folder %s: %w", i.opts.Folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("failed to search for unseen messages: %w", err)
	}
	if len(uids) == 0 {
		return nil
	}

	i.logger.Info("Unseen messages found", zap.Int("count", len(uids)))

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	ctx := context.Background()
	var processed []uint32
	for msg := range messages {
		email, err := i.parseMessage(msg, section)
		if err != nil {
			i.logger.Warn("Failed to parse message", zap.Error(err))
			continue
		}
		if email == nil {
			continue
		}

		outcome, err := i.processor.ProcessEmail(ctx, email)
		if err != nil {
			i.logger.Error("Failed to process email",
				zap.String("message_id", email.MessageID),
				zap.Error(err))
			continue
		}

		if outcome != nil && outcome.Reply != nil && i.sender != nil {
			if err := i.sender.SendReply(ctx, outcome.Reply); err != nil {
				i.logger.Error("Failed to send reply",
					zap.String("recipient", outcome.Reply.Recipient),
					zap.Error(err))
			}
		}

		processed = append(processed, msg.Uid)
	}

	if err := <-done; err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	if len(processed) > 0 {
		if err := i.markSeen(c, processed); err != nil {
			i.logger.Error("Failed to flag messages seen", zap.Error(err))
		}
	}

	return nil
}

func (i *IMAPInbox) connect() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", i.opts.Server, i.opts.Port)

	var c *client.Client
	var err error
	if i.opts.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(i.opts.Username, i.opts.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	return c, nil
}

func (i *IMAPInbox) markSeen(c *client.Client, uids []uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	return c.UidStore(seqSet, item, []interface{}{imap.SeenFlag}, nil)
}

// parseMessage converts an IMAP message into a pipeline email, pulling
// every attachment into memory.
func (i *IMAPInbox) parseMessage(msg *imap.Message, section *imap.BodySectionName) (*core.Email, error) {
	if msg == nil || msg.Envelope == nil {
		return nil, nil
	}

	email := &core.Email{
		MessageID: msg.Envelope.MessageId,
		Subject:   msg.Envelope.Subject,
	}

	if len(msg.Envelope.From) > 0 {
		from := msg.Envelope.From[0]
		if from.PersonalName != "" {
			email.From = fmt.Sprintf("%s <%s>", from.PersonalName, from.Address())
		} else {
			email.From = from.Address()
		}
	}

	r := msg.GetBody(section)
	if r == nil {
		return email, nil
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		// Keep the envelope even when the body cannot be parsed; the
		// dispatcher only needs subject and sender.
		i.logger.Warn("Failed to read message body",
			zap.String("message_id", email.MessageID),
			zap.Error(err))
		return email, nil
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			i.logger.Warn("Failed to read message part",
				zap.String("message_id", email.MessageID),
				zap.Error(err))
			break
		}

		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, _ := h.Filename()
		contentType, _, _ := h.ContentType()
		data, err := io.ReadAll(p.Body)
		if err != nil {
			i.logger.Warn("Failed to read attachment",
				zap.String("message_id", email.MessageID),
				zap.String("filename", filename),
				zap.Error(err))
			continue
		}

		email.Attachments = append(email.Attachments, core.Attachment{
			Filename:    filename,
			ContentType: strings.ToLower(contentType),
			Data:        data,
		})
	}

	return email, nil
}
