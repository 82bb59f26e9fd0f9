package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"mojotix/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	Logger      *slog.Logger
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES;
// "noop" or unknown uses a no-op mailer that only logs.
func NewMailer(config MailerConfig) (domain.Mailer, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch config.Provider {
	case "ses":
		if config.SES.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES; use only in development")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: config.SES.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case "noop":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

// Send sends one email via SES. Plain messages use SendEmail; messages with
// attachments or inline images are assembled as raw MIME and sent with
// SendRawEmail, since the simple API cannot carry parts. No retry here:
// one call, one billable send attempt.
func (s *sesMailer) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.DeliveryReceipt, error) {
	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}

	var messageID string
	if len(msg.Attachments) == 0 && len(msg.Inline) == 0 {
		input := &ses.SendEmailInput{
			Source:      aws.String(source),
			Destination: &types.Destination{ToAddresses: []string{msg.To}},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    &types.Body{},
			},
		}
		if msg.HTMLBody != "" {
			input.Message.Body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
		}
		if msg.TextBody != "" {
			input.Message.Body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
		}
		result, err := s.client.SendEmail(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("send email via SES: %w", err)
		}
		messageID = aws.ToString(result.MessageId)
	} else {
		raw, err := buildRawMessage(source, msg)
		if err != nil {
			return nil, fmt.Errorf("build raw message: %w", err)
		}
		result, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
			Source:       aws.String(source),
			Destinations: []string{msg.To},
			RawMessage:   &types.RawMessage{Data: raw},
		})
		if err != nil {
			return nil, fmt.Errorf("send raw email via SES: %w", err)
		}
		messageID = aws.ToString(result.MessageId)
	}

	s.logger.Info("email sent via SES", "to", msg.To, "message_id", messageID)
	return &domain.DeliveryReceipt{MessageID: messageID, SentAt: time.Now()}, nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.DeliveryReceipt, error) {
	n.logger.Info("email would be sent (noop)",
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
		"inline_images", len(msg.Inline),
	)
	return &domain.DeliveryReceipt{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
