// Package postgresql provides the PostgreSQL persistence implementation for
// the automation engine.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	emails      *EmailRepository
	callRecords *CallRecordRepository
	rules       *RuleRepository
	workflows   *WorkflowRepository
	templates   *TemplateRepository
	credentials *CredentialRepository
	tasks       *TaskRepository
}

// NewPersistence connects, runs migrations and wires the repositories. The
// platform credentials are the fallback returned for organizations without
// their own messaging configuration; nil disables the fallback.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string, platform *models.MessagingCredentials) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:          database,
		logger:      logger,
		emails:      NewEmailRepository(database, logger),
		callRecords: NewCallRecordRepository(database, logger),
		rules:       NewRuleRepository(database, logger),
		workflows:   NewWorkflowRepository(database, logger),
		templates:   NewTemplateRepository(database, logger),
		credentials: NewCredentialRepository(database, logger, platform),
		tasks:       NewTaskRepository(database, logger),
	}, nil
}

func (p *Persistence) Emails() persistence.EmailRepository           { return p.emails }
func (p *Persistence) CallRecords() persistence.CallRecordRepository { return p.callRecords }
func (p *Persistence) Rules() persistence.RuleRepository             { return p.rules }
func (p *Persistence) Workflows() persistence.WorkflowRepository     { return p.workflows }
func (p *Persistence) Templates() persistence.TemplateRepository     { return p.templates }
func (p *Persistence) Credentials() persistence.CredentialResolver   { return p.credentials }
func (p *Persistence) Tasks() persistence.TaskRepository             { return p.tasks }

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
