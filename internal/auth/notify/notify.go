// Package notify delivers out-of-band messages to users: invitation links
// and generated credentials. Delivery is best effort; callers log failures
// rather than failing the operation that triggered the message.
package notify

import (
	"context"
	"fmt"
	"net/url"
)

// Message is a single outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier sends messages. Implementations must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// InvitationMessage builds the email carrying an invitation link.
func InvitationMessage(to, orgName, acceptURL, token string) Message {
	link := fmt.Sprintf("%s?token=%s", acceptURL, url.QueryEscape(token))
	return Message{
		To:      to,
		Subject: fmt.Sprintf("You have been invited to join %s", orgName),
		Body: fmt.Sprintf(
			"You have been invited to join the organization %q.\n\n"+
				"Follow this link to accept the invitation:\n\n    %s\n\n"+
				"The link expires in 24 hours.\n",
			orgName, link,
		),
	}
}

// CredentialsMessage builds the email carrying a generated password for a
// user account provisioned during invitation redemption.
func CredentialsMessage(to, orgName, password string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your account for %s", orgName),
		Body: fmt.Sprintf(
			"An account was created for you when you joined %q.\n\n"+
				"Your temporary password is:\n\n    %s\n\n"+
				"Please sign in and change it.\n",
			orgName, password,
		),
	}
}
