package email

import (
	"errors"
	"net/mail"
)

// Sender identity used when no explicit From address is configured.
const (
	DefaultSenderName   = "Sports Day Team"
	ConfirmationSubject = "🎉 DOF Registration Confirmation"
)

// Domain errors
var (
	ErrEmptySubject     = errors.New("email subject is required")
	ErrEmptyBody        = errors.New("email body is required")
	ErrNoRecipients     = errors.New("at least one recipient is required")
	ErrInvalidRecipient = errors.New("recipient address is invalid")
)

// Message is a rendered email ready to hand to a sender.
// Text and HTML are alternatives of the same content.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Validate checks that the Message can be delivered.
// PRE: Message struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return ErrInvalidRecipient
		}
	}
	if m.Subject == "" {
		return ErrEmptySubject
	}
	if m.Text == "" && m.HTML == "" {
		return ErrEmptyBody
	}
	return nil
}

// FormatFrom builds a "Name <address>" sender header.
// PRE: address may be empty
// POST: Returns "" when address is empty
func FormatFrom(name, address string) string {
	if address == "" {
		return ""
	}
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}
