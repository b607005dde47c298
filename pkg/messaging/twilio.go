package messaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSender sends SMS through the Twilio Messages REST endpoint.
type TwilioSender struct {
	BaseURL string
	Client  *http.Client
}

func NewTwilioSender() *TwilioSender {
	return &TwilioSender{
		BaseURL: twilioAPIBase,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts one message. Twilio responds 201 on success; any other status is
// an error carrying the response body.
func (s *TwilioSender) Send(ctx context.Context, cred *models.TwilioCredential, to, body string) error {
	if cred == nil {
		return fmt.Errorf("no Twilio credential configured")
	}

	if to == "" {
		return fmt.Errorf("sms recipient is empty")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", cred.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.BaseURL, cred.AccountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create sms request: %w", err)
	}

	req.SetBasicAuth(cred.AccountSID, cred.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client().Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("sms send failed with status %d: %s", resp.StatusCode, string(payload))
	}

	return nil
}

func (s *TwilioSender) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}

	return http.DefaultClient
}
