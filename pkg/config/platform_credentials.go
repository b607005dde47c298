// Package config provides configuration file loading for the binaries.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

// PlatformCredentialsFile is the YAML shape of the platform-level messaging
// credentials, used when an organization has none of its own.
type PlatformCredentialsFile struct {
	SMTP *struct {
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		Username  string `yaml:"username"`
		Password  string `yaml:"password"`
		FromName  string `yaml:"from_name"`
		FromEmail string `yaml:"from_email"`
	} `yaml:"smtp"`
	Twilio *struct {
		AccountSID string `yaml:"account_sid"`
		AuthToken  string `yaml:"auth_token"`
		FromNumber string `yaml:"from_number"`
	} `yaml:"twilio"`
}

// LoadPlatformCredentials reads platform messaging credentials from a YAML
// file. An empty path means the platform has no fallback credentials and
// returns nil without error.
func LoadPlatformCredentials(path string) (*models.MessagingCredentials, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var file PlatformCredentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	creds := &models.MessagingCredentials{UsingPlatformCredentials: true}

	if file.SMTP != nil {
		creds.SMTP = &models.SMTPCredential{
			Host:      file.SMTP.Host,
			Port:      file.SMTP.Port,
			Username:  file.SMTP.Username,
			Password:  file.SMTP.Password,
			FromName:  file.SMTP.FromName,
			FromEmail: file.SMTP.FromEmail,
		}
	}

	if file.Twilio != nil {
		creds.Twilio = &models.TwilioCredential{
			AccountSID: file.Twilio.AccountSID,
			AuthToken:  file.Twilio.AuthToken,
			FromNumber: file.Twilio.FromNumber,
		}
	}

	if creds.SMTP == nil && creds.Twilio == nil {
		return nil, nil
	}

	return creds, nil
}
