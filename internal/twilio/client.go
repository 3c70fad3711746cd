package twilio

import (
	"context"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client wraps the Twilio messaging operations used for reminders and bot replies.
type Client struct {
	client       *twilio.RestClient
	authToken    string
	fromWhatsApp string
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
func New(accountSID, authToken, fromWhatsApp string) *Client {
	return &Client{
		client:       twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		authToken:    authToken,
		fromWhatsApp: fromWhatsApp,
	}
}

// WebhookValidator returns a validator for webhooks signed with this account's token.
func (c *Client) WebhookValidator(publicURL string) *WebhookValidator {
	return NewWebhookValidator(c.authToken, publicURL)
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio's API. The SDK call
// itself is not cancellable, so ctx is only checked before sending.
func (c *Client) SendWhatsAppMessage(ctx context.Context, to, body string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sender := NormalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}

	recipient := NormalizeWhatsAppAddress(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}
	return nil
}

// NormalizeWhatsAppAddress turns a phone number into Twilio's whatsapp:+E164 form.
func NormalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}
