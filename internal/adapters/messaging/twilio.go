package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"mojotix/internal/domain"
)

// MessengerConfig holds configuration for creating a messenger.
// Provider "twilio" sends WhatsApp messages via the Twilio API; "noop" or
// unknown logs instead of sending.
type MessengerConfig struct {
	Provider   string
	AccountSID string
	AuthToken  string
	FromNumber string
	Logger     *slog.Logger
}

// NewMessenger creates a messenger from config.
func NewMessenger(config MessengerConfig) (domain.Messenger, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch config.Provider {
	case "twilio":
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: config.AccountSID,
			Password: config.AuthToken,
		})
		return &twilioMessenger{
			client: client,
			from:   config.FromNumber,
			logger: logger,
		}, nil
	case "noop":
		return &noopMessenger{logger: logger}, nil
	default:
		logger.Warn("unknown messaging provider, using noop", "provider", config.Provider)
		return &noopMessenger{logger: logger}, nil
	}
}

type twilioMessenger struct {
	client *twilio.RestClient
	from   string
	logger *slog.Logger
}

// Send sends one WhatsApp message. One call is one billable send attempt;
// the Twilio SDK applies no retries of its own.
func (m *twilioMessenger) Send(ctx context.Context, toPhone, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + m.from)
	params.SetTo("whatsapp:" + toPhone)
	params.SetBody(body)

	resp, err := m.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}
	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	m.logger.Info("whatsapp message sent", "to", toPhone, "sid", sid)
	return sid, nil
}

type noopMessenger struct {
	logger *slog.Logger
}

func (m *noopMessenger) Send(ctx context.Context, toPhone, body string) (string, error) {
	m.logger.Info("whatsapp message would be sent (noop)", "to", toPhone, "body_len", len(body))
	return fmt.Sprintf("noop-%s", toPhone), nil
}
