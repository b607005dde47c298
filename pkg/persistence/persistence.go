// Package persistence provides the data storage abstraction for the
// automation engine.
package persistence

import (
	"context"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

// EmailRepository reads and mutates inbox emails.
type EmailRepository interface {
	Create(ctx context.Context, email *models.Email) error
	GetByID(ctx context.Context, id string) (*models.Email, error)
	Update(ctx context.Context, id string, update models.EmailUpdate) error
}

// CallRecordRepository reads call analysis records.
type CallRecordRepository interface {
	Create(ctx context.Context, record *models.CallRecord) error
	GetByID(ctx context.Context, id string) (*models.CallRecord, error)
	SetTriggeredWorkflows(ctx context.Context, id string, workflowIDs []string) error
}

// RuleRepository stores inbox rules. ListEnabledByAccount returns rules in
// ascending priority order; IncrementMatchCount is an atomic increment that
// also stamps last_triggered_at.
type RuleRepository interface {
	Create(ctx context.Context, rule *models.Rule) error
	Update(ctx context.Context, rule *models.Rule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Rule, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Rule, error)
	ListEnabledByAccount(ctx context.Context, accountID string) ([]*models.Rule, error)
	IncrementMatchCount(ctx context.Context, id string) error
}

// WorkflowRepository stores call workflows and their execution logs.
// IncrementExecutionCount is an atomic increment; AppendExecutionLog writes
// exactly one immutable row per execution.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *models.Workflow) error
	Update(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Workflow, error)
	ListActiveByProject(ctx context.Context, projectID string) ([]*models.Workflow, error)
	IncrementExecutionCount(ctx context.Context, id string) error
	AppendExecutionLog(ctx context.Context, entry *models.ExecutionLog) error
	ExecutionLogs(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error)
}

// TemplateRepository resolves named message templates.
type TemplateRepository interface {
	EmailTemplate(ctx context.Context, id string) (*models.EmailTemplate, error)
	SMSTemplate(ctx context.Context, id string) (*models.SMSTemplate, error)
}

// CredentialResolver resolves messaging credentials for the organization
// owning a project, falling back to platform-level credentials.
type CredentialResolver interface {
	ForProject(ctx context.Context, projectID string) (*models.MessagingCredentials, error)
}

// TaskRepository creates project tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
}

// Persistence aggregates the repositories behind one connection.
type Persistence interface {
	Emails() EmailRepository
	CallRecords() CallRecordRepository
	Rules() RuleRepository
	Workflows() WorkflowRepository
	Templates() TemplateRepository
	Credentials() CredentialResolver
	Tasks() TaskRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
