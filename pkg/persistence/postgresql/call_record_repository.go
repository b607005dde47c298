package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// CallRecordRepository handles call-record database operations.
type CallRecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCallRecordRepository creates a new call record repository.
func NewCallRecordRepository(db *sql.DB, logger *slog.Logger) *CallRecordRepository {
	return &CallRecordRepository{db: db, logger: logger}
}

func (r *CallRecordRepository) Create(ctx context.Context, record *models.CallRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	if record.AnalyzedAt.IsZero() {
		record.AnalyzedAt = now
	}

	triggeredJSON, err := json.Marshal(record.TriggeredWorkflowIDs)
	if err != nil {
		return persistence.NewStoreError("create", "call_record", record.ID, err)
	}

	query := `
		INSERT INTO call_records (id, project_id, caller_name, caller_phone,
			topic, summary, sentiment, quality_rating, follow_up_needed,
			follow_up_reason, duration_seconds, triggered_workflow_ids,
			analyzed_at, created_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.ProjectID,
		record.CallerName,
		record.CallerPhone,
		record.Topic,
		record.Summary,
		record.Sentiment,
		record.QualityRating,
		record.FollowUpNeeded,
		record.FollowUpReason,
		record.DurationSeconds,
		triggeredJSON,
		record.AnalyzedAt,
		record.CreatedAt,
		record.DeletedAt,
	)
	if err != nil {
		return persistence.NewStoreError("create", "call_record", record.ID, err)
	}

	return nil
}

func (r *CallRecordRepository) GetByID(ctx context.Context, id string) (*models.CallRecord, error) {
	query := `
		SELECT
			id
		  , project_id
		  , caller_name
		  , caller_phone
		  , topic
		  , summary
		  , sentiment
		  , quality_rating
		  , follow_up_needed
		  , follow_up_reason
		  , duration_seconds
		  , triggered_workflow_ids
		  , analyzed_at
		  , created_at
		  , deleted_at
		FROM call_records
		WHERE id = $1 AND deleted_at IS NULL
	`

	var (
		record        models.CallRecord
		triggeredJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.ProjectID,
		&record.CallerName,
		&record.CallerPhone,
		&record.Topic,
		&record.Summary,
		&record.Sentiment,
		&record.QualityRating,
		&record.FollowUpNeeded,
		&record.FollowUpReason,
		&record.DurationSeconds,
		&triggeredJSON,
		&record.AnalyzedAt,
		&record.CreatedAt,
		&record.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("get", "call_record", id, persistence.ErrCallRecordNotFound)
		}

		return nil, persistence.NewStoreError("get", "call_record", id, err)
	}

	if err := json.Unmarshal(triggeredJSON, &record.TriggeredWorkflowIDs); err != nil {
		return nil, persistence.NewStoreError("get", "call_record", id, err)
	}

	return &record, nil
}

func (r *CallRecordRepository) SetTriggeredWorkflows(ctx context.Context, id string, workflowIDs []string) error {
	triggeredJSON, err := json.Marshal(workflowIDs)
	if err != nil {
		return persistence.NewStoreError("update", "call_record", id, err)
	}

	query := `UPDATE call_records SET triggered_workflow_ids = $1 WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, triggeredJSON, id)
	if err != nil {
		return persistence.NewStoreError("update", "call_record", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("update", "call_record", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("update", "call_record", id, persistence.ErrCallRecordNotFound)
	}

	return nil
}
