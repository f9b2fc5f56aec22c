package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	emailAdapter "sportsday/internal/adapters/email"
	emailDomain "sportsday/internal/domain/email"
	"sportsday/internal/domain/registration"
)

// --- Fake sender ---

type fakeSender struct {
	sent []emailAdapter.SendRequest
	err  error
}

// Send records the request.
// PRE: none
// POST: Request appended to sent unless err is set
func (f *fakeSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if f.err != nil {
		return emailAdapter.SendResult{}, f.err
	}
	f.sent = append(f.sent, req)
	return emailAdapter.SendResult{MessageID: "fake-1", SentAt: time.Now()}, nil
}

func confirmationSubmission() registration.Submission {
	kids := 1
	return registration.Submission{
		FullName:              "Jane Doe",
		Email:                 "jane@x.com",
		Phone:                 "0501234567",
		Department:            "Finance",
		Gender:                "female",
		ParentTshirtSize:      "M",
		BringingKids:          true,
		NumberOfKids:          &kids,
		Kids:                  []registration.Kid{{Name: "Sam", Age: 7, Gender: "male", TshirtSize: "S"}},
		InterestedInCompeting: true,
		CompetitiveSports:     []string{"Padel"},
		MedicalConditions:     []string{"none"},
	}
}

func TestExecuteSendConfirmation(t *testing.T) {
	sender := &fakeSender{}
	deps := SendConfirmationDeps{
		Sender:  sender,
		From:    `"Sports Day Team" <team@x.com>`,
		ReplyTo: "help@x.com",
		Event:   emailDomain.DefaultEvent(),
	}

	res, err := ExecuteSendConfirmation(context.Background(), confirmationSubmission(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MessageID != "fake-1" {
		t.Errorf("MessageID = %q", res.MessageID)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}

	req := sender.sent[0]
	if len(req.To) != 1 || req.To[0] != "jane@x.com" {
		t.Errorf("To = %v", req.To)
	}
	if req.Subject != emailDomain.ConfirmationSubject {
		t.Errorf("Subject = %q", req.Subject)
	}
	if req.From != deps.From || req.ReplyTo != "help@x.com" {
		t.Errorf("From/ReplyTo = %q / %q", req.From, req.ReplyTo)
	}
	if req.Category != "registration_confirmation" {
		t.Errorf("Category = %q", req.Category)
	}
	for _, want := range []string{"Jane Doe", "Sam", "Padel", "17th August 2025"} {
		if !strings.Contains(req.Text, want) {
			t.Errorf("text body missing %q", want)
		}
		if !strings.Contains(req.HTML, want) {
			t.Errorf("html body missing %q", want)
		}
	}
}

func TestExecuteSendConfirmation_SenderError(t *testing.T) {
	sendErr := errors.New("rejected")
	_, err := ExecuteSendConfirmation(context.Background(), confirmationSubmission(), SendConfirmationDeps{
		Sender: &fakeSender{err: sendErr},
		Event:  emailDomain.DefaultEvent(),
	})
	if !errors.Is(err, sendErr) {
		t.Errorf("error = %v, want %v", err, sendErr)
	}
}

func TestExecuteSendConfirmation_InvalidRecipient(t *testing.T) {
	sub := confirmationSubmission()
	sub.Email = "not an address"
	sender := &fakeSender{}

	_, err := ExecuteSendConfirmation(context.Background(), sub, SendConfirmationDeps{Sender: sender, Event: emailDomain.DefaultEvent()})
	if !errors.Is(err, emailDomain.ErrInvalidRecipient) {
		t.Errorf("error = %v, want ErrInvalidRecipient", err)
	}
	if len(sender.sent) != 0 {
		t.Error("nothing should be sent")
	}
}

func TestConfirmationNotifier(t *testing.T) {
	sender := &fakeSender{}
	var n Notifier = ConfirmationNotifier{Deps: SendConfirmationDeps{Sender: sender, Event: emailDomain.DefaultEvent()}}

	if err := n.NotifyRegistered(context.Background(), confirmationSubmission()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent %d messages, want 1", len(sender.sent))
	}
}

func TestConfirmationFor_NumberOfKids(t *testing.T) {
	sub := confirmationSubmission()
	if got := confirmationFor(sub, emailDomain.EventDetails{}).NumberOfKids; got != "1" {
		t.Errorf("NumberOfKids = %q, want \"1\"", got)
	}
	sub.NumberOfKids = nil
	if got := confirmationFor(sub, emailDomain.EventDetails{}).NumberOfKids; got != "" {
		t.Errorf("NumberOfKids = %q, want empty", got)
	}
}
