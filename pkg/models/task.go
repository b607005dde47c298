package models

import "time"

// TaskStatusTodo is the status new tasks are created with.
const TaskStatusTodo = "todo"

// Task is a project task created by a workflow action.
type Task struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id" validate:"required"`
	Title       string         `json:"title"      validate:"required"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	DueAt       *time.Time     `json:"due_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
