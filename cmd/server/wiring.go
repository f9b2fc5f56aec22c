package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	emailAdapter "sportsday/internal/adapters/email"
	"sportsday/internal/adapters/storage"
	regStore "sportsday/internal/adapters/storage/registration"
	"sportsday/internal/config"
	emailDomain "sportsday/internal/domain/email"
)

// smtpTimeout bounds each SMTP dial and send.
const smtpTimeout = 30 * time.Second

// setupLogger installs the process-wide slog handler.
// Production logs are JSON; development logs are human-readable text.
func setupLogger(cfg config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore returns the registration store named by uri and a close func.
// Statements are timed with opts.
func openStore(ctx context.Context, uri string, opts ...storage.TimedOption) (regStore.Store, func() error, error) {
	if uri == storage.MemoryURI {
		slog.Warn("memory_store", "detail", "registrations are lost on restart")
		return regStore.NewMemoryStore(), func() error { return nil }, nil
	}

	db, dialect, err := storage.Open(ctx, uri)
	if err != nil {
		return nil, nil, err
	}
	timed := storage.NewTimedDB(db, opts...)
	if err := storage.InitDB(ctx, timed, dialect); err != nil {
		timed.Close()
		return nil, nil, err
	}
	slog.Info("store_opened", "dialect", dialect)
	return regStore.NewSQLStore(timed, dialect), timed.Close, nil
}

// newSender builds the confirmation email sender for the configured provider.
func newSender(cfg config.MailConfig) (emailAdapter.Sender, error) {
	switch cfg.Provider {
	case config.MailSMTP:
		return emailAdapter.NewSMTPSender(emailAdapter.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.From,
			Timeout:  smtpTimeout,
		})
	case config.MailResend:
		return emailAdapter.NewResendSender(cfg.ResendKey, cfg.From), nil
	case config.MailNoop:
		return emailAdapter.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// verifyMail checks the sender's configuration when it supports it.
func verifyMail(ctx context.Context, sender emailAdapter.Sender) error {
	v, ok := sender.(emailAdapter.Verifier)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()
	return v.Verify(ctx)
}

// eventDetails falls back to the scheduled event for unset fields.
func eventDetails(cfg config.EventConfig) emailDomain.EventDetails {
	d := cfg.Details()
	def := emailDomain.DefaultEvent()
	if d.Date == "" {
		d.Date = def.Date
	}
	if d.Time == "" {
		d.Time = def.Time
	}
	if d.Location == "" {
		d.Location = def.Location
	}
	return d
}
