package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdaniel1925/clientflow/pkg/config"
)

func writeCredentialsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadPlatformCredentials(t *testing.T) {
	t.Parallel()

	path := writeCredentialsFile(t, `
smtp:
  host: smtp.platform.example.com
  port: 587
  username: platform
  password: hunter2
  from_email: no-reply@platform.example.com
twilio:
  account_sid: AC999
  auth_token: token
  from_number: "+15550000000"
`)

	creds, err := config.LoadPlatformCredentials(path)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.True(t, creds.UsingPlatformCredentials)

	require.NotNil(t, creds.SMTP)
	assert.Equal(t, "smtp.platform.example.com", creds.SMTP.Host)
	assert.Equal(t, 587, creds.SMTP.Port)
	assert.Equal(t, "hunter2", creds.SMTP.Password)

	require.NotNil(t, creds.Twilio)
	assert.Equal(t, "AC999", creds.Twilio.AccountSID)
	assert.Equal(t, "+15550000000", creds.Twilio.FromNumber)
}

func TestLoadPlatformCredentials_SMTPOnly(t *testing.T) {
	t.Parallel()

	path := writeCredentialsFile(t, `
smtp:
  host: smtp.platform.example.com
  port: 25
`)

	creds, err := config.LoadPlatformCredentials(path)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.NotNil(t, creds.SMTP)
	assert.Nil(t, creds.Twilio)
}

func TestLoadPlatformCredentials_EmptyPath(t *testing.T) {
	t.Parallel()

	creds, err := config.LoadPlatformCredentials("")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestLoadPlatformCredentials_EmptyFile(t *testing.T) {
	t.Parallel()

	creds, err := config.LoadPlatformCredentials(writeCredentialsFile(t, "{}"))
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestLoadPlatformCredentials_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadPlatformCredentials("/nonexistent/credentials.yaml")
	require.Error(t, err)
}

func TestLoadPlatformCredentials_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadPlatformCredentials(writeCredentialsFile(t, "smtp: [not a map"))
	require.Error(t, err)
}
