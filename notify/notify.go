// Package notify delivers voter credentials over email or SMS. Delivery is
// best-effort: callers decide whether a failure aborts the request, and
// nothing here is retried or rolled back.
package notify

import (
	"context"

	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type Notifier interface {
	SendVoterCredentials(ctx context.Context, voter *storage.Voter) error
}

type EmailSender interface {
	Send(ctx context.Context, subject, htmlBody, recipient string) error
}

type SMSSender interface {
	Send(ctx context.Context, message, phoneNumber string) error
}

// CredentialNotifier picks the channel from the voter's available contact
// details: email first, SMS as fallback. A voter without contact details is
// not an error, there is simply nothing to deliver.
type CredentialNotifier struct {
	Email EmailSender
	SMS   SMSSender
}

func (n *CredentialNotifier) SendVoterCredentials(ctx context.Context, voter *storage.Voter) error {
	if voter.Email != "" && n.Email != nil {
		return n.Email.Send(ctx, credentialSubject, credentialEmailHTML(voter), voter.Email)
	}
	if voter.Phone != "" && n.SMS != nil {
		return n.SMS.Send(ctx, credentialSMS(voter), voter.Phone)
	}
	return nil
}
