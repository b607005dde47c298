package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// EmailRepository handles email-related database operations.
type EmailRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEmailRepository creates a new email repository.
func NewEmailRepository(db *sql.DB, logger *slog.Logger) *EmailRepository {
	return &EmailRepository{db: db, logger: logger}
}

func (r *EmailRepository) Create(ctx context.Context, email *models.Email) error {
	if email.ID == "" {
		email.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = now
	}

	email.UpdatedAt = now

	toJSON, err := json.Marshal(email.ToAddresses)
	if err != nil {
		return persistence.NewStoreError("create", "email", email.ID, err)
	}

	labelsJSON, err := json.Marshal(email.Labels)
	if err != nil {
		return persistence.NewStoreError("create", "email", email.ID, err)
	}

	query := `
		INSERT INTO emails (id, account_id, from_address, to_addresses, subject,
			body_text, body_html, has_attachments, is_read, is_starred,
			is_important, is_archived, is_spam, is_trashed, folder, labels,
			received_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = r.db.ExecContext(ctx, query,
		email.ID,
		email.AccountID,
		email.FromAddress,
		toJSON,
		email.Subject,
		email.BodyText,
		email.BodyHTML,
		email.HasAttachments,
		email.IsRead,
		email.IsStarred,
		email.IsImportant,
		email.IsArchived,
		email.IsSpam,
		email.IsTrashed,
		email.Folder,
		labelsJSON,
		email.ReceivedAt,
		email.UpdatedAt,
		email.DeletedAt,
	)
	if err != nil {
		return persistence.NewStoreError("create", "email", email.ID, err)
	}

	return nil
}

func (r *EmailRepository) GetByID(ctx context.Context, id string) (*models.Email, error) {
	query := `
		SELECT
			id
		  , account_id
		  , from_address
		  , to_addresses
		  , subject
		  , body_text
		  , body_html
		  , has_attachments
		  , is_read
		  , is_starred
		  , is_important
		  , is_archived
		  , is_spam
		  , is_trashed
		  , folder
		  , labels
		  , received_at
		  , updated_at
		  , deleted_at
		FROM emails
		WHERE id = $1 AND deleted_at IS NULL
	`

	var (
		email              models.Email
		toJSON, labelsJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&email.ID,
		&email.AccountID,
		&email.FromAddress,
		&toJSON,
		&email.Subject,
		&email.BodyText,
		&email.BodyHTML,
		&email.HasAttachments,
		&email.IsRead,
		&email.IsStarred,
		&email.IsImportant,
		&email.IsArchived,
		&email.IsSpam,
		&email.IsTrashed,
		&email.Folder,
		&labelsJSON,
		&email.ReceivedAt,
		&email.UpdatedAt,
		&email.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("get", "email", id, persistence.ErrEmailNotFound)
		}

		return nil, persistence.NewStoreError("get", "email", id, err)
	}

	if err := json.Unmarshal(toJSON, &email.ToAddresses); err != nil {
		return nil, persistence.NewStoreError("get", "email", id, err)
	}

	if err := json.Unmarshal(labelsJSON, &email.Labels); err != nil {
		return nil, persistence.NewStoreError("get", "email", id, err)
	}

	return &email, nil
}

// Update applies a partial update; nil fields are left untouched.
func (r *EmailRepository) Update(ctx context.Context, id string, update models.EmailUpdate) error {
	if update.IsZero() {
		return nil
	}

	sets := []string{}
	args := []any{}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.IsRead != nil {
		addSet("is_read", *update.IsRead)
	}

	if update.IsStarred != nil {
		addSet("is_starred", *update.IsStarred)
	}

	if update.IsImportant != nil {
		addSet("is_important", *update.IsImportant)
	}

	if update.IsArchived != nil {
		addSet("is_archived", *update.IsArchived)
	}

	if update.IsSpam != nil {
		addSet("is_spam", *update.IsSpam)
	}

	if update.IsTrashed != nil {
		addSet("is_trashed", *update.IsTrashed)
	}

	if update.Folder != nil {
		addSet("folder", *update.Folder)
	}

	if update.Labels != nil {
		labelsJSON, err := json.Marshal(*update.Labels)
		if err != nil {
			return persistence.NewStoreError("update", "email", id, err)
		}

		addSet("labels", labelsJSON)
	}

	if update.DeletedAt != nil {
		addSet("deleted_at", *update.DeletedAt)
	}

	addSet("updated_at", time.Now().UTC())

	args = append(args, id)
	query := "UPDATE emails SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewStoreError("update", "email", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("update", "email", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("update", "email", id, persistence.ErrEmailNotFound)
	}

	return nil
}
