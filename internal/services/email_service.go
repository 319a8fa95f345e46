package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	pkglogger "github.com/seanmccall/folio/pkg/logger"
)

// EmailService defines the interface for delivering contact messages
type EmailService interface {
	SendContactMessage(ctx context.Context, msg ContactMessage) error
}

// ContactMessage is a visitor submission from the public contact form
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// AWSSESEmailService delivers contact messages to the owner via AWS SES
type AWSSESEmailService struct {
	sesClient      *ses.Client
	fromAddress    string
	contactAddress string
	logger         *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, contactAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:      ses.NewFromConfig(cfg),
		fromAddress:    fromAddress,
		contactAddress: contactAddress,
		logger:         logger,
	}, nil
}

// SendContactMessage forwards a visitor message to the owner's inbox.
// The visitor address goes in Reply-To so the owner can answer directly.
func (s *AWSSESEmailService) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "New message from your portfolio"
	}

	textBody := fmt.Sprintf(`New contact form submission

From:  %s <%s>

%s
`, msg.Name, msg.Email, msg.Body)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.contactAddress},
		},
		ReplyToAddresses: []string{msg.Email},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send contact message via SES",
			slog.String("from", pkglogger.SanitizedEmail(msg.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("contact message delivered",
		slog.String("from", pkglogger.SanitizedEmail(msg.Email)),
		slog.String("message_id", *result.MessageId))

	return nil
}
