package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// TemplateRepository resolves email and SMS templates by ID.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

func (r *TemplateRepository) EmailTemplate(ctx context.Context, id string) (*models.EmailTemplate, error) {
	query := `
		SELECT
			id
		  , organization_id
		  , name
		  , subject
		  , body
		  , created_at
		  , updated_at
		FROM email_templates
		WHERE id = $1
	`

	var tmpl models.EmailTemplate

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tmpl.ID,
		&tmpl.OrganizationID,
		&tmpl.Name,
		&tmpl.Subject,
		&tmpl.Body,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("get", "email_template", id, persistence.ErrTemplateNotFound)
		}

		return nil, persistence.NewStoreError("get", "email_template", id, err)
	}

	return &tmpl, nil
}

func (r *TemplateRepository) SMSTemplate(ctx context.Context, id string) (*models.SMSTemplate, error) {
	query := `
		SELECT
			id
		  , organization_id
		  , name
		  , body
		  , created_at
		  , updated_at
		FROM sms_templates
		WHERE id = $1
	`

	var tmpl models.SMSTemplate

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tmpl.ID,
		&tmpl.OrganizationID,
		&tmpl.Name,
		&tmpl.Body,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("get", "sms_template", id, persistence.ErrTemplateNotFound)
		}

		return nil, persistence.NewStoreError("get", "sms_template", id, err)
	}

	return &tmpl, nil
}
