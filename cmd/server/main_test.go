package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	emailAdapter "sportsday/internal/adapters/email"
	"sportsday/internal/adapters/storage"
	regStore "sportsday/internal/adapters/storage/registration"
	"sportsday/internal/config"
	"sportsday/internal/domain/export"
	"sportsday/internal/domain/registration"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedSQLite(t *testing.T, path string, subs ...registration.Submission) {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := storage.InitDB(ctx, db, dialect); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	store := regStore.NewSQLStore(db, dialect)
	for _, sub := range subs {
		if _, err := store.Create(ctx, sub); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
}

func TestExportCommand(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "noop")
	dbPath := filepath.Join(t.TempDir(), "sportsday.db")
	seedSQLite(t, dbPath,
		registration.Submission{FullName: "Jane Doe", Email: "jane@x.com", MedicalConditions: []string{"none"}},
		registration.Submission{FullName: "Omar Ali", Email: "omar@x.com", MedicalConditions: []string{"asthma"}},
	)

	out, err := runCmd(t, "export", "--store", dbPath)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID,Full Name,Email") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Jane Doe"`) || !strings.Contains(lines[2], `"Omar Ali"`) {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestExportCommand_ToFile(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "noop")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sportsday.db")
	seedSQLite(t, dbPath, registration.Submission{FullName: "Jane Doe", Email: "jane@x.com", MedicalConditions: []string{"none"}})
	csvPath := filepath.Join(dir, "out.csv")

	out, err := runCmd(t, "export", "--store", dbPath, "-o", csvPath)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "wrote 1 registrations") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.Contains(string(data), `"jane@x.com"`) {
		t.Errorf("csv = %s", data)
	}
}

// closeFailWriter accepts writes but fails on Close.
type closeFailWriter struct {
	bytes.Buffer
	closed bool
}

func (w *closeFailWriter) Close() error {
	w.closed = true
	return errors.New("disk full")
}

func TestWriteCSV_ReportsCloseError(t *testing.T) {
	doc := export.Document{Columns: []string{"ID"}, Rows: [][]string{{"reg-1"}}}
	w := &closeFailWriter{}

	err := writeCSV(w, &doc)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("writeCSV() error = %v, want close error", err)
	}
	if !w.closed {
		t.Error("writer was not closed")
	}
	if got := w.String(); got != "ID\n\"reg-1\"" {
		t.Errorf("written = %q", got)
	}
}

func TestWriteCSV_ClosesOnEncodeError(t *testing.T) {
	w := &closeFailWriter{}
	err := writeCSV(w, &export.Document{})
	if !errors.Is(err, export.ErrNoColumns) {
		t.Fatalf("writeCSV() error = %v, want ErrNoColumns", err)
	}
	if !w.closed {
		t.Error("writer was not closed")
	}
}

func TestCheckMailCommand(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "noop")
	out, err := runCmd(t, "check-mail", "--store", "memory://")
	if err != nil {
		t.Fatalf("check-mail error = %v", err)
	}
	if !strings.Contains(out, "mail provider noop ready") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckMailCommand_Misconfigured(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "resend")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("SMTP_USER", "")
	t.Setenv("MAIL_FROM", "")

	if _, err := runCmd(t, "check-mail", "--store", "memory://"); err == nil {
		t.Error("expected error for resend without a from address")
	}
}

func TestNewSender(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MailConfig
		check   func(emailAdapter.Sender) bool
		wantErr bool
	}{
		{
			name:  "noop",
			cfg:   config.MailConfig{Provider: config.MailNoop},
			check: func(s emailAdapter.Sender) bool { _, ok := s.(*emailAdapter.NoopSender); return ok },
		},
		{
			name:  "resend",
			cfg:   config.MailConfig{Provider: config.MailResend, ResendKey: "re_123", From: "team@x.com"},
			check: func(s emailAdapter.Sender) bool { _, ok := s.(*emailAdapter.ResendSender); return ok },
		},
		{
			name:  "smtp",
			cfg:   config.MailConfig{Provider: config.MailSMTP, SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", From: "team@x.com"},
			check: func(s emailAdapter.Sender) bool { _, ok := s.(*emailAdapter.SMTPSender); return ok },
		},
		{name: "unknown", cfg: config.MailConfig{Provider: "pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newSender(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !tt.check(s) {
				t.Errorf("sender type = %T", s)
			}
		})
	}
}

func TestOpenStore_Memory(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), storage.MemoryURI)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer closeStore()
	if _, ok := store.(*regStore.MemoryStore); !ok {
		t.Errorf("store type = %T", store)
	}
}

func TestEventDetails_FallsBack(t *testing.T) {
	d := eventDetails(config.EventConfig{Location: "Hall 2"})
	if d.Location != "Hall 2" || d.Date != "17th August 2025" || d.Time == "" {
		t.Errorf("details = %+v", d)
	}
}
