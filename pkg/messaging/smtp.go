package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"gopkg.in/gomail.v2"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

const defaultSendTimeout = 30 * time.Second

// SMTPSender sends email over SMTP with per-organization credentials.
type SMTPSender struct {
	Timeout time.Duration
}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{Timeout: defaultSendTimeout}
}

// Send validates the recipient, builds the message and dials the credential's
// SMTP host. The dial-and-send runs under a bounded timeout so a hung
// provider fails the action instead of stalling the run.
func (s *SMTPSender) Send(ctx context.Context, cred *models.SMTPCredential, msg EmailMessage) error {
	if cred == nil {
		return fmt.Errorf("no SMTP credential configured")
	}

	err := checkmail.ValidateFormat(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", cred.FromName, cred.FromEmail))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	d := gomail.NewDialer(cred.Host, cred.Port, cred.Username, cred.Password)

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- d.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}

		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send timed out: %w", ctx.Err())
	}
}

func (s *SMTPSender) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}

	return defaultSendTimeout
}
