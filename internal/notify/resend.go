package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

const alertSubject = "New negative review"

// emailSender is the subset of the Resend client used here.
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier e-mails alerts through Resend.
type ResendNotifier struct {
	emails emailSender
	from   string
	to     string
	logger *slog.Logger
}

func NewResendNotifier(apiKey, from, to string, logger *slog.Logger) *ResendNotifier {
	client := resend.NewClient(apiKey)
	return newResendNotifier(client.Emails, from, to, logger)
}

func newResendNotifier(emails emailSender, from, to string, logger *slog.Logger) *ResendNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResendNotifier{emails: emails, from: from, to: to, logger: logger}
}

func (n *ResendNotifier) Publish(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: alertSubject,
		Text:    message,
		Html:    htmlBody(message),
	}

	sent, err := n.emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	n.logger.InfoContext(ctx, "Alert email sent", "email_id", sent.Id, "to", n.to)
	return nil
}
