package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdaniel1925/clientflow/pkg/models"
)

func TestTwilioSenderSend(t *testing.T) {
	var got *http.Request

	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.PostFormValue("To"),
			"From": r.PostFormValue("From"),
			"Body": r.PostFormValue("Body"),
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sender := NewTwilioSender()
	sender.BaseURL = server.URL

	cred := &models.TwilioCredential{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+15550001111"}

	err := sender.Send(context.Background(), cred, "+15552223333", "Follow up on your call")
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/AC123/Messages.json", got.URL.Path)
	assert.Equal(t, "+15552223333", gotForm["To"])
	assert.Equal(t, "+15550001111", gotForm["From"])
	assert.Equal(t, "Follow up on your call", gotForm["Body"])

	user, pass, ok := got.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "secret", pass)
}

func TestTwilioSenderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "authentication failed"}`))
	}))
	defer server.Close()

	sender := NewTwilioSender()
	sender.BaseURL = server.URL

	err := sender.Send(context.Background(), &models.TwilioCredential{AccountSID: "AC123"}, "+15552223333", "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestTwilioSenderRequiresRecipient(t *testing.T) {
	sender := NewTwilioSender()

	err := sender.Send(context.Background(), &models.TwilioCredential{AccountSID: "AC123"}, "", "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
}

func TestTwilioSenderRequiresCredential(t *testing.T) {
	sender := NewTwilioSender()

	err := sender.Send(context.Background(), nil, "+15552223333", "hi")

	require.Error(t, err)
}
