package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// TaskRepository creates project tasks.
type TaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB, logger *slog.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}

	metadataJSON, err := json.Marshal(task.Metadata)
	if err != nil {
		return persistence.NewStoreError("create", "task", task.ID, err)
	}

	query := `
		INSERT INTO tasks (id, project_id, title, description, status,
			assigned_to, due_at, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.AssignedTo,
		task.DueAt,
		metadataJSON,
		task.CreatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("create", "task", task.ID, err)
	}

	return nil
}
