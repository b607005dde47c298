package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// CredentialRepository resolves messaging credentials for the organization
// owning a project, falling back to the platform credentials when the
// organization has none of its own.
type CredentialRepository struct {
	db       *sql.DB
	logger   *slog.Logger
	platform *models.MessagingCredentials
}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository(db *sql.DB, logger *slog.Logger, platform *models.MessagingCredentials) *CredentialRepository {
	return &CredentialRepository{db: db, logger: logger, platform: platform}
}

func (r *CredentialRepository) ForProject(ctx context.Context, projectID string) (*models.MessagingCredentials, error) {
	query := `
		SELECT
			p.organization_id
		  , c.smtp_host
		  , c.smtp_port
		  , c.smtp_username
		  , c.smtp_password
		  , c.smtp_from_name
		  , c.smtp_from_email
		  , c.twilio_account_sid
		  , c.twilio_auth_token
		  , c.twilio_from_number
		FROM projects p
		LEFT JOIN organization_credentials c ON c.organization_id = p.organization_id
		WHERE p.id = $1
	`

	var (
		organizationID                                                    string
		smtpHost, smtpUsername, smtpPassword, smtpFromName, smtpFromEmail sql.NullString
		smtpPort                                                          sql.NullInt64
		twilioSID, twilioToken, twilioFrom                                sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&organizationID,
		&smtpHost,
		&smtpPort,
		&smtpUsername,
		&smtpPassword,
		&smtpFromName,
		&smtpFromEmail,
		&twilioSID,
		&twilioToken,
		&twilioFrom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.fallback(projectID)
		}

		return nil, persistence.NewStoreError("get", "credentials", projectID, err)
	}

	creds := &models.MessagingCredentials{OrganizationID: organizationID}

	if smtpHost.Valid && smtpHost.String != "" {
		creds.SMTP = &models.SMTPCredential{
			Host:      smtpHost.String,
			Port:      int(smtpPort.Int64),
			Username:  smtpUsername.String,
			Password:  smtpPassword.String,
			FromName:  smtpFromName.String,
			FromEmail: smtpFromEmail.String,
		}
	}

	if twilioSID.Valid && twilioSID.String != "" {
		creds.Twilio = &models.TwilioCredential{
			AccountSID: twilioSID.String,
			AuthToken:  twilioToken.String,
			FromNumber: twilioFrom.String,
		}
	}

	if creds.SMTP == nil && creds.Twilio == nil {
		return r.fallback(projectID)
	}

	return creds, nil
}

func (r *CredentialRepository) fallback(projectID string) (*models.MessagingCredentials, error) {
	if r.platform == nil {
		return nil, persistence.NewStoreError("get", "credentials", projectID, persistence.ErrCredentialsNotFound)
	}

	cp := *r.platform
	cp.UsingPlatformCredentials = true

	return &cp, nil
}
