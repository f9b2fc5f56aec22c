package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "Sports Day Team <events@example.com>")
	Subject string
	Text    string // Plain text body
	HTML    string // HTML alternative
	ReplyTo string // Reply-to address

	// Category tags the message for provider-side filtering. Letters,
	// digits, "_" and "-" only.
	Category string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// Verifier is implemented by senders that can check their configuration
// without sending a message.
type Verifier interface {
	Verify(ctx context.Context) error
}
