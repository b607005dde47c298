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

// WorkflowRepository handles call-workflow database operations, including the
// append-only execution log.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		workflow.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	conditionsJSON, actionsJSON, err := marshalWorkflowPayload(workflow)
	if err != nil {
		return persistence.NewStoreError("create", "workflow", workflow.ID, err)
	}

	query := `
		INSERT INTO call_workflows (id, project_id, name, active,
			trigger_conditions, actions, total_executions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.ProjectID,
		workflow.Name,
		workflow.Active,
		conditionsJSON,
		actionsJSON,
		workflow.TotalExecutions,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("create", "workflow", workflow.ID, err)
	}

	return nil
}

// Update replaces the user-editable fields. TotalExecutions is only written
// through IncrementExecutionCount.
func (r *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	workflow.UpdatedAt = time.Now().UTC()

	conditionsJSON, actionsJSON, err := marshalWorkflowPayload(workflow)
	if err != nil {
		return persistence.NewStoreError("update", "workflow", workflow.ID, err)
	}

	query := `
		UPDATE call_workflows SET
			name = $1,
			active = $2,
			trigger_conditions = $3,
			actions = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		workflow.Name,
		workflow.Active,
		conditionsJSON,
		actionsJSON,
		workflow.UpdatedAt,
		workflow.ID,
	)
	if err != nil {
		return persistence.NewStoreError("update", "workflow", workflow.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("update", "workflow", workflow.ID, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("update", "workflow", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM call_workflows WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("delete", "workflow", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("delete", "workflow", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := workflowSelect + ` WHERE id = $1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("get", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewStoreError("get", "workflow", id, err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	return r.list(ctx, projectID, false)
}

func (r *WorkflowRepository) ListActiveByProject(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	return r.list(ctx, projectID, true)
}

func (r *WorkflowRepository) list(ctx context.Context, projectID string, activeOnly bool) ([]*models.Workflow, error) {
	query := workflowSelect + ` WHERE project_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}

	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, persistence.NewStoreError("list", "workflow", projectID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, persistence.NewStoreError("list", "workflow", projectID, err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("list", "workflow", projectID, err)
	}

	return workflows, nil
}

// IncrementExecutionCount bumps the counter in one statement, safe under
// concurrent dispatches.
func (r *WorkflowRepository) IncrementExecutionCount(ctx context.Context, id string) error {
	query := `UPDATE call_workflows SET total_executions = total_executions + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("increment", "workflow", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("increment", "workflow", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("increment", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) AppendExecutionLog(ctx context.Context, entry *models.ExecutionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	actionsJSON, err := json.Marshal(entry.ActionsExecuted)
	if err != nil {
		return persistence.NewStoreError("create", "execution_log", entry.ID, err)
	}

	query := `
		INSERT INTO workflow_execution_logs (id, workflow_id, call_record_id,
			status, actions_executed, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.WorkflowID,
		entry.CallRecordID,
		entry.Status,
		actionsJSON,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("create", "execution_log", entry.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) ExecutionLogs(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , call_record_id
		  , status
		  , actions_executed
		  , error_message
		  , created_at
		FROM workflow_execution_logs
		WHERE workflow_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, persistence.NewStoreError("list", "execution_log", workflowID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	entries := make([]*models.ExecutionLog, 0)

	for rows.Next() {
		var (
			entry        models.ExecutionLog
			actionsJSON  []byte
			errorMessage sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&entry.WorkflowID,
			&entry.CallRecordID,
			&entry.Status,
			&actionsJSON,
			&errorMessage,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError("list", "execution_log", workflowID, err)
		}

		if err := json.Unmarshal(actionsJSON, &entry.ActionsExecuted); err != nil {
			return nil, persistence.NewStoreError("list", "execution_log", workflowID, err)
		}

		entry.ErrorMessage = errorMessage.String
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("list", "execution_log", workflowID, err)
	}

	return entries, nil
}

const workflowSelect = `
	SELECT
		id
	  , project_id
	  , name
	  , active
	  , trigger_conditions
	  , actions
	  , total_executions
	  , created_at
	  , updated_at
	FROM call_workflows
`

func marshalWorkflowPayload(workflow *models.Workflow) ([]byte, []byte, error) {
	conditionsJSON, err := json.Marshal(workflow.TriggerConditions)
	if err != nil {
		return nil, nil, err
	}

	actionsJSON, err := json.Marshal(workflow.Actions)
	if err != nil {
		return nil, nil, err
	}

	return conditionsJSON, actionsJSON, nil
}

func scanWorkflow(scanner interface{ Scan(dest ...any) error }) (*models.Workflow, error) {
	var (
		workflow                    models.Workflow
		conditionsJSON, actionsJSON []byte
	)

	err := scanner.Scan(
		&workflow.ID,
		&workflow.ProjectID,
		&workflow.Name,
		&workflow.Active,
		&conditionsJSON,
		&actionsJSON,
		&workflow.TotalExecutions,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditionsJSON, &workflow.TriggerConditions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(actionsJSON, &workflow.Actions); err != nil {
		return nil, err
	}

	return &workflow, nil
}
