package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/di"
	"github.com/fruno/warranty-bot/internal/extraction"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run classifies a single email from a file or stdin and prints the outcome
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.PipelineService,
	engine extraction.RecognitionEngine,
) error {
	defer logger.Sync()

	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	email, err := parseEmail(bufio.NewReader(emailReader), logger)
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Attachments: %d\n", len(email.Attachments))
	for _, att := range email.Attachments {
		fmt.Printf("  - %s (%s, %d bytes)\n", att.Filename, att.ContentType, len(att.Data))
	}
	fmt.Printf("\n")

	startTime := time.Now()
	outcome, err := service.ProcessEmail(context.Background(), email)
	if err != nil {
		logger.Fatal("Failed to process email", zap.Error(err))
	}
	duration := time.Since(startTime)

	fmt.Printf("=== Results ===\n")
	if outcome == nil {
		fmt.Printf("No case matched\n")
		fmt.Printf("Processing time: %v\n", duration)
		return closeEngine(engine, logger)
	}

	fmt.Printf("Case: %s\n", outcome.Dispatch.CaseID)
	if outcome.Dispatch.MatchedKeyword != "" {
		fmt.Printf("Matched keyword: %s\n", outcome.Dispatch.MatchedKeyword)
	}
	if outcome.Dispatch.MatchedSender != "" {
		fmt.Printf("Matched sender: %s\n", outcome.Dispatch.MatchedSender)
	}

	for _, extractionResult := range outcome.Extractions {
		fmt.Printf("Extraction: strategy=%s success=%t elapsed=%v failures=%d\n",
			extractionResult.Strategy, extractionResult.Success,
			extractionResult.Elapsed, len(extractionResult.UnitFailures))
	}

	if outcome.Classification != nil {
		fmt.Printf("Category: %s (id %d)\n", outcome.Classification.CategoryName, outcome.Classification.CategoryID)
		fmt.Printf("Device type: %s (id %d)\n",
			core.DeviceTypeName(outcome.Classification.DeviceTypeID), outcome.Classification.DeviceTypeID)
		if outcome.Classification.MatchedKeyword != "" {
			fmt.Printf("Matched category keyword: %s\n", outcome.Classification.MatchedKeyword)
		}
	} else {
		fmt.Printf("Category: none (no usable document text)\n")
	}

	if outcome.Ticket != nil && outcome.Ticket.TicketNumber != "" {
		fmt.Printf("Ticket: %s\n", outcome.Ticket.TicketNumber)
	}

	if outcome.Reply != nil {
		fmt.Printf("\n=== Reply ===\n")
		fmt.Printf("To: %s\n", outcome.Reply.Recipient)
		fmt.Printf("Subject: %s\n", outcome.Reply.Subject)
		fmt.Printf("%s\n", outcome.Reply.Body)
	}

	fmt.Printf("\nProcessing time: %v\n", duration)
	return closeEngine(engine, logger)
}

func closeEngine(engine extraction.RecognitionEngine, logger *zap.Logger) error {
	if closer, ok := engine.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close recognition engine", zap.Error(err))
		}
	}
	return nil
}

// parseEmail reads an RFC 822 message with its MIME attachments
func parseEmail(r io.Reader, logger *zap.Logger) (*core.Email, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, err
	}

	email := &core.Email{}

	if id, err := mr.Header.MessageID(); err == nil {
		email.MessageID = id
	}
	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	}
	if fromList, err := mr.Header.AddressList("From"); err == nil && len(fromList) > 0 {
		from := fromList[0]
		if from.Name != "" {
			email.From = fmt.Sprintf("%s <%s>", from.Name, from.Address)
		} else {
			email.From = from.Address
		}
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Failed to read message part", zap.Error(err))
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
			logger.Warn("Failed to read attachment", zap.String("filename", filename), zap.Error(err))
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
