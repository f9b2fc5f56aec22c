// Package config loads server settings from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	emailDomain "sportsday/internal/domain/email"
)

// Mail providers.
const (
	MailNoop   = "noop"
	MailSMTP   = "smtp"
	MailResend = "resend"
)

// Trace exporters.
const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config is the full server configuration.
type Config struct {
	Port        int           `mapstructure:"port"`
	StoreURI    string        `mapstructure:"store_uri"`
	FrontendURL string        `mapstructure:"frontend_url"`
	Env         string        `mapstructure:"env"`
	LogLevel    string        `mapstructure:"log_level"`
	SlowRequest time.Duration `mapstructure:"slow_request"`
	SlowQuery   time.Duration `mapstructure:"slow_query"`
	Mail        MailConfig    `mapstructure:"mail"`
	Event       EventConfig   `mapstructure:"event"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// MailConfig selects and configures the confirmation email sender.
type MailConfig struct {
	Provider  string `mapstructure:"provider"`
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  int    `mapstructure:"smtp_port"`
	SMTPUser  string `mapstructure:"smtp_user"`
	SMTPPass  string `mapstructure:"smtp_pass"`
	ResendKey string `mapstructure:"resend_key"`
	From      string `mapstructure:"from"`
	ReplyTo   string `mapstructure:"reply_to"`
}

// EventConfig is the event information printed in confirmations.
type EventConfig struct {
	Date     string `mapstructure:"date"`
	Time     string `mapstructure:"time"`
	Location string `mapstructure:"location"`
}

// Details converts the config into the email domain type.
func (e EventConfig) Details() emailDomain.EventDetails {
	return emailDomain.EventDetails{Date: e.Date, Time: e.Time, Location: e.Location}
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"port":             "PORT",
	"store_uri":        "STORE_URI",
	"frontend_url":     "FRONTEND_URL",
	"env":              "SPORTSDAY_ENV",
	"log_level":        "LOG_LEVEL",
	"slow_request":     "SLOW_REQUEST",
	"slow_query":       "SLOW_QUERY",
	"mail.provider":    "MAIL_PROVIDER",
	"mail.smtp_host":   "SMTP_HOST",
	"mail.smtp_port":   "SMTP_PORT",
	"mail.smtp_user":   "SMTP_USER",
	"mail.smtp_pass":   "SMTP_PASS",
	"mail.resend_key":  "RESEND_API_KEY",
	"mail.from":        "MAIL_FROM",
	"mail.reply_to":    "MAIL_REPLY_TO",
	"event.date":       "EVENT_DATE",
	"event.time":       "EVENT_TIME",
	"event.location":   "EVENT_LOCATION",
	"tracing.enabled":  "TRACING_ENABLED",
	"tracing.exporter": "TRACING_EXPORTER",
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	event := emailDomain.DefaultEvent()

	v.SetDefault("port", 3000)
	v.SetDefault("store_uri", "sqlite://sportsday.db")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("slow_request", "200ms")
	v.SetDefault("slow_query", "50ms")
	v.SetDefault("mail.provider", "")
	v.SetDefault("mail.smtp_host", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.smtp_user", "")
	v.SetDefault("mail.smtp_pass", "")
	v.SetDefault("mail.resend_key", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.reply_to", "")
	v.SetDefault("event.date", event.Date)
	v.SetDefault("event.time", event.Time)
	v.SetDefault("event.location", event.Location)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", ExporterStdout)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load reads configuration into a Config.
// PRE: v has had SetDefaults applied; file may be empty
// POST: Returns a validated Config with derived mail settings filled in
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolve fills settings that default from other settings.
func (c *Config) resolve() {
	c.Mail.Provider = strings.ToLower(strings.TrimSpace(c.Mail.Provider))
	if c.Mail.Provider == "" {
		switch {
		case c.Mail.SMTPUser != "":
			c.Mail.Provider = MailSMTP
		case c.Mail.ResendKey != "":
			c.Mail.Provider = MailResend
		default:
			c.Mail.Provider = MailNoop
		}
	}
	if c.Mail.From == "" {
		c.Mail.From = emailDomain.FormatFrom(emailDomain.DefaultSenderName, c.Mail.SMTPUser)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Tracing.Exporter = strings.ToLower(c.Tracing.Exporter)
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.StoreURI == "" {
		errs = append(errs, errors.New("store_uri is required"))
	}
	if c.SlowRequest < 0 || c.SlowQuery < 0 {
		errs = append(errs, errors.New("slow_request and slow_query must not be negative"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	switch c.Mail.Provider {
	case MailNoop:
	case MailSMTP:
		if c.Mail.SMTPUser == "" {
			errs = append(errs, errors.New("mail.smtp_user is required for the smtp provider"))
		}
	case MailResend:
		if c.Mail.ResendKey == "" {
			errs = append(errs, errors.New("mail.resend_key is required for the resend provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail.provider %q", c.Mail.Provider))
	}
	switch c.Tracing.Exporter {
	case ExporterStdout, ExporterNone:
	default:
		errs = append(errs, fmt.Errorf("unknown tracing.exporter %q", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}
