package models

// SMTPCredential configures outbound email for an organization.
type SMTPCredential struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
}

// TwilioCredential configures outbound SMS for an organization.
type TwilioCredential struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"-"`
	FromNumber string `json:"from_number"`
}

// MessagingCredentials is the resolved send configuration for the organization
// owning a project. When the organization has none of its own, the platform
// level credentials are returned with UsingPlatformCredentials set.
type MessagingCredentials struct {
	OrganizationID           string            `json:"organization_id"`
	SMTP                     *SMTPCredential   `json:"smtp,omitempty"`
	Twilio                   *TwilioCredential `json:"twilio,omitempty"`
	UsingPlatformCredentials bool              `json:"using_platform_credentials"`
}
