package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
)

func TestNoopSender_Send(t *testing.T) {
	s := NewNoopSender()
	req := SendRequest{To: []string{"jane@x.com"}, Subject: "Hi"}

	res, err := s.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.HasPrefix(res.MessageID, "noop-") {
		t.Errorf("MessageID = %q, want noop- prefix", res.MessageID)
	}
	if res.SentAt.IsZero() {
		t.Error("SentAt should be set")
	}

	second, _ := s.Send(context.Background(), req)
	if second.MessageID == res.MessageID {
		t.Error("message ids should be unique")
	}
	if got := s.Outbox(); len(got) != 2 || got[0].Subject != "Hi" {
		t.Errorf("Outbox() = %+v", got)
	}
}

// resendAPI stands in for api.resend.com and keeps the last request body.
func resendAPI(t *testing.T, status int) (*url.URL, *resend.SendEmailRequest, *http.Header) {
	t.Helper()
	var got resend.SendEmailRequest
	var hdr http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("request = %s %s, want POST /emails", r.Method, r.URL.Path)
		}
		hdr = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(`{"id":"re-msg-1"}`))
			return
		}
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from"}`))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u, &got, &hdr
}

func TestResendSender_Send(t *testing.T) {
	base, got, hdr := resendAPI(t, http.StatusOK)
	s := NewResendSender("re_123", "team@x.com", WithResendEndpoint(base))

	res, err := s.Send(context.Background(), SendRequest{
		To:       []string{"jane@x.com"},
		Subject:  "Confirmation",
		Text:     "plain",
		HTML:     "<p>html</p>",
		Category: "registration_confirmation",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if res.MessageID != "re-msg-1" {
		t.Errorf("MessageID = %q", res.MessageID)
	}
	if got.From != "team@x.com" {
		t.Errorf("From = %q, want the default sender", got.From)
	}
	if got.Text != "plain" || got.Html != "<p>html</p>" {
		t.Errorf("bodies = %q / %q", got.Text, got.Html)
	}
	if len(got.Tags) != 1 || got.Tags[0].Value != "registration_confirmation" {
		t.Errorf("Tags = %+v", got.Tags)
	}
	if auth := hdr.Get("Authorization"); auth != "Bearer re_123" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestResendSender_SendRejected(t *testing.T) {
	base, _, _ := resendAPI(t, http.StatusUnprocessableEntity)
	s := NewResendSender("re_123", "team@x.com", WithResendEndpoint(base))

	_, err := s.Send(context.Background(), SendRequest{To: []string{"jane@x.com"}, Subject: "Hi", Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "resend send") {
		t.Fatalf("Send() error = %v, want wrapped API error", err)
	}
}

func TestResendSender_Verify(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		from   string
		want   error
	}{
		{name: "configured", apiKey: "re_123", from: "team@x.com"},
		{name: "missing key", from: "team@x.com", want: ErrMissingAPIKey},
		{name: "missing from", apiKey: "re_123", want: ErrMissingFrom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewResendSender(tt.apiKey, tt.from).Verify(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Verify() = %v, want %v", err, tt.want)
			}
		})
	}
}

func newTestSMTPSender(t *testing.T, from string) *SMTPSender {
	t.Helper()
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: from})
	if err != nil {
		t.Fatalf("NewSMTPSender() error = %v", err)
	}
	return s
}

// TestSMTPSender_BuildMessage tests that both bodies end up in the message.
func TestSMTPSender_BuildMessage(t *testing.T) {
	s := newTestSMTPSender(t, `"Sports Day Team" <team@x.com>`)

	msg, err := s.buildMessage(SendRequest{
		To:      []string{"jane@x.com"},
		Subject: "Confirmation",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		ReplyTo: "help@x.com",
	})
	if err != nil {
		t.Fatalf("buildMessage() error = %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"multipart/alternative", "text/plain", "text/html", "jane@x.com", "Sports Day Team", "help@x.com"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if msg.GetMessageID() == "" {
		t.Error("Message-ID should be set")
	}
}

func TestSMTPSender_BuildMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		from string
		req  SendRequest
	}{
		{name: "no from address", req: SendRequest{To: []string{"jane@x.com"}, Subject: "s", Text: "t"}},
		{name: "bad recipient", from: "team@x.com", req: SendRequest{To: []string{"not an address"}, Subject: "s", Text: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSMTPSender(t, tt.from)
			if _, err := s.buildMessage(tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSMTPSender_VerifyWithoutFrom(t *testing.T) {
	s := newTestSMTPSender(t, "")
	if err := s.Verify(context.Background()); !errors.Is(err, ErrMissingFrom) {
		t.Errorf("Verify() = %v, want ErrMissingFrom", err)
	}
}
