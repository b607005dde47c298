// Package messaging provides the outbound email and SMS send clients used by
// workflow actions.
package messaging

import (
	"context"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

// EmailMessage is one outbound email.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

// EmailSender dispatches an email with the given credential.
type EmailSender interface {
	Send(ctx context.Context, cred *models.SMTPCredential, msg EmailMessage) error
}

// SMSSender dispatches a text message with the given credential.
type SMSSender interface {
	Send(ctx context.Context, cred *models.TwilioCredential, to, body string) error
}
