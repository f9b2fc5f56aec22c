package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/wneessen/go-mail"
)

// ErrMissingFrom is returned when a sender has no default from address.
var ErrMissingFrom = errors.New("sender from address is not set")

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender sends emails through an SMTP relay using STARTTLS.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender creates a sender for the given relay.
// PRE: cfg.Host is set; credentials are optional for unauthenticated relays
// POST: Returns a sender; no connection is made until Send or Verify
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers one message with a plain text body and an HTML alternative.
// PRE: req has at least one recipient and a subject
// POST: Message accepted by the relay; returns the generated Message-ID
func (s *SMTPSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	msg, err := s.buildMessage(req)
	if err != nil {
		return SendResult{}, err
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("smtp_send_failed", "error", err, "to", req.To, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	id := msg.GetMessageID()
	slog.Info("smtp_sent", "message_id", id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

func (s *SMTPSender) buildMessage(req SendRequest) (*mail.Msg, error) {
	from := req.From
	if from == "" {
		from = s.from
	}
	if from == "" {
		return nil, ErrMissingFrom
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(req.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if req.ReplyTo != "" {
		if err := msg.ReplyTo(req.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	msg.Subject(req.Subject)
	msg.SetMessageID()
	msg.SetDate()

	switch {
	case req.Text != "" && req.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, req.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, req.HTML)
	case req.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, req.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, req.Text)
	}
	return msg, nil
}

// Verify connects and authenticates against the relay, then disconnects.
// PRE: none
// POST: Returns nil if the relay accepted the handshake and credentials
func (s *SMTPSender) Verify(ctx context.Context) error {
	if s.from == "" {
		return ErrMissingFrom
	}
	if err := s.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp verify failed: %w", err)
	}
	if err := s.client.Close(); err != nil {
		slog.Warn("smtp_close_failed", "error", err)
	}
	return nil
}
