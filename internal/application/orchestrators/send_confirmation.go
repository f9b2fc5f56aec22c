package orchestrators

import (
	"context"
	"fmt"
	"strconv"

	emailAdapter "sportsday/internal/adapters/email"
	emailDomain "sportsday/internal/domain/email"
	"sportsday/internal/domain/registration"
)

// confirmationCategory tags confirmation emails at the provider.
const confirmationCategory = "registration_confirmation"

// SendConfirmationDeps holds dependencies for SendConfirmation.
type SendConfirmationDeps struct {
	Sender  emailAdapter.Sender
	From    string // "Name <address>"; empty uses the sender's default
	ReplyTo string
	Event   emailDomain.EventDetails
}

// ExecuteSendConfirmation renders and sends the confirmation email for a
// validated submission.
// PRE: sub passed registration.Parse
// POST: One message handed to the sender, addressed to sub.Email
func ExecuteSendConfirmation(ctx context.Context, sub registration.Submission, deps SendConfirmationDeps) (emailAdapter.SendResult, error) {
	msg, err := emailDomain.RenderConfirmation(confirmationFor(sub, deps.Event))
	if err != nil {
		return emailAdapter.SendResult{}, err
	}
	if err := msg.Validate(); err != nil {
		return emailAdapter.SendResult{}, fmt.Errorf("confirmation for %s: %w", sub.Email, err)
	}

	return deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:       msg.To,
		From:     deps.From,
		Subject:  msg.Subject,
		Text:     msg.Text,
		HTML:     msg.HTML,
		ReplyTo:  deps.ReplyTo,
		Category: confirmationCategory,
	})
}

// confirmationFor flattens a submission into the fields the email shows.
func confirmationFor(sub registration.Submission, event emailDomain.EventDetails) emailDomain.Confirmation {
	c := emailDomain.Confirmation{
		FullName:              sub.FullName,
		Email:                 sub.Email,
		Phone:                 sub.Phone,
		Department:            sub.Department,
		Gender:                sub.Gender,
		TshirtSize:            sub.ParentTshirtSize,
		BringingKids:          sub.BringingKids,
		EntertainmentSports:   sub.EntertainmentSports,
		InterestedInCompeting: sub.InterestedInCompeting,
		CompetitiveSports:     sub.CompetitiveSports,
		LastExercise:          sub.LastExercise,
		MedicalConditions:     sub.MedicalConditions,
		Event:                 event,
	}
	if sub.NumberOfKids != nil {
		c.NumberOfKids = strconv.Itoa(*sub.NumberOfKids)
	}
	for _, k := range sub.Kids {
		c.Kids = append(c.Kids, emailDomain.KidLine{Name: k.Name, Age: k.Age, Gender: k.Gender, TshirtSize: k.TshirtSize})
	}
	return c
}

// ConfirmationNotifier sends the confirmation email as the pipeline's Notifier.
type ConfirmationNotifier struct {
	Deps SendConfirmationDeps
}

// NotifyRegistered implements Notifier.
func (n ConfirmationNotifier) NotifyRegistered(ctx context.Context, sub registration.Submission) error {
	_, err := ExecuteSendConfirmation(ctx, sub, n.Deps)
	return err
}
