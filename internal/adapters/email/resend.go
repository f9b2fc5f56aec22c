package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrMissingAPIKey is returned by Verify when no Resend key is configured.
var ErrMissingAPIKey = errors.New("resend api key is not set")

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// ResendOption configures a ResendSender.
type ResendOption func(*resend.Client)

// WithResendEndpoint points the client at base instead of api.resend.com.
func WithResendEndpoint(base *url.URL) ResendOption {
	return func(c *resend.Client) { c.BaseURL = base }
}

// NewResendSender builds a sender for apiKey. from is used when a request
// carries no From of its own.
// PRE: from is a valid sender address
func NewResendSender(apiKey, from string, opts ...ResendOption) *ResendSender {
	client := resend.NewCustomClient(&http.Client{Timeout: 30 * time.Second}, apiKey)
	for _, opt := range opts {
		opt(client)
	}
	return &ResendSender{client: client, from: from}
}

// Send submits one message.
// POST: Returns Resend's message id, or the API error wrapped
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.emailRequest(req))
	if err != nil {
		return SendResult{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("email_sent", "provider", "resend", "message_id", sent.Id, "to", req.To)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

func (s *ResendSender) emailRequest(req SendRequest) *resend.SendEmailRequest {
	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}
	if params.From == "" {
		params.From = s.from
	}
	if req.Category != "" {
		params.Tags = []resend.Tag{{Name: "category", Value: req.Category}}
	}
	return params
}

// Verify checks that the sender has credentials and a from address.
// Resend has no handshake, so nothing is sent over the network.
func (s *ResendSender) Verify(_ context.Context) error {
	if s.client.ApiKey == "" {
		return ErrMissingAPIKey
	}
	if s.from == "" {
		return ErrMissingFrom
	}
	return nil
}
