package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/persistence/memory"
)

func TestEmailRepository_SoftDelete(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)
	ctx := context.Background()

	require.NoError(t, store.Emails().Create(ctx, &models.Email{ID: "email-1", AccountID: "acct-1"}))

	now := time.Now().UTC()
	require.NoError(t, store.Emails().Update(ctx, "email-1", models.EmailUpdate{DeletedAt: &now}))

	_, err := store.Emails().GetByID(ctx, "email-1")
	assert.True(t, persistence.IsEmailNotFound(err))
}

func TestEmailRepository_UpdateFlags(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)
	ctx := context.Background()

	require.NoError(t, store.Emails().Create(ctx, &models.Email{ID: "email-1", AccountID: "acct-1"}))

	read := true
	folder := "archive"
	labels := []string{"billing"}
	require.NoError(t, store.Emails().Update(ctx, "email-1", models.EmailUpdate{
		IsRead: &read,
		Folder: &folder,
		Labels: &labels,
	}))

	email, err := store.Emails().GetByID(ctx, "email-1")
	require.NoError(t, err)
	assert.True(t, email.IsRead)
	assert.Equal(t, "archive", email.Folder)
	assert.Equal(t, []string{"billing"}, email.Labels)
	assert.False(t, email.UpdatedAt.IsZero())
}

func TestRuleRepository_PriorityOrderAndCounter(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)
	ctx := context.Background()

	require.NoError(t, store.Rules().Create(ctx, &models.Rule{
		ID: "rule-low", AccountID: "acct-1", Name: "Low priority", Enabled: true, Priority: 10,
	}))
	require.NoError(t, store.Rules().Create(ctx, &models.Rule{
		ID: "rule-high", AccountID: "acct-1", Name: "High priority", Enabled: true, Priority: 1,
	}))
	require.NoError(t, store.Rules().Create(ctx, &models.Rule{
		ID: "rule-off", AccountID: "acct-1", Name: "Disabled rule", Enabled: false, Priority: 0,
	}))

	enabled, err := store.Rules().ListEnabledByAccount(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, enabled, 2)
	assert.Equal(t, "rule-high", enabled[0].ID)
	assert.Equal(t, "rule-low", enabled[1].ID)

	all, err := store.Rules().ListByAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Rules().IncrementMatchCount(ctx, "rule-high"))
	require.NoError(t, store.Rules().IncrementMatchCount(ctx, "rule-high"))

	rule, err := store.Rules().GetByID(ctx, "rule-high")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rule.MatchCount)
	require.NotNil(t, rule.LastTriggeredAt)

	// Update must not clobber the engine-owned counter.
	rule.Name = "Renamed rule"
	rule.MatchCount = 0
	require.NoError(t, store.Rules().Update(ctx, rule))

	updated, err := store.Rules().GetByID(ctx, "rule-high")
	require.NoError(t, err)
	assert.Equal(t, "Renamed rule", updated.Name)
	assert.Equal(t, int64(2), updated.MatchCount)
}

func TestWorkflowRepository_ActiveFilterAndLogs(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)
	ctx := context.Background()

	require.NoError(t, store.Workflows().Create(ctx, &models.Workflow{
		ID: "wf-1", ProjectID: "project-1", Name: "Active workflow", Active: true,
	}))
	require.NoError(t, store.Workflows().Create(ctx, &models.Workflow{
		ID: "wf-2", ProjectID: "project-1", Name: "Paused workflow", Active: false,
	}))

	active, err := store.Workflows().ListActiveByProject(ctx, "project-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "wf-1", active[0].ID)

	require.NoError(t, store.Workflows().IncrementExecutionCount(ctx, "wf-1"))

	workflow, err := store.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), workflow.TotalExecutions)

	require.NoError(t, store.Workflows().AppendExecutionLog(ctx, &models.ExecutionLog{
		WorkflowID:   "wf-1",
		CallRecordID: "call-1",
		Status:       models.ExecutionStatusSuccess,
	}))

	logs, err := store.Workflows().ExecutionLogs(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, logs[0].CreatedAt.IsZero())
}

func TestCallRecordRepository_TriggeredWorkflows(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)
	ctx := context.Background()

	require.NoError(t, store.CallRecords().Create(ctx, &models.CallRecord{
		ID: "call-1", ProjectID: "project-1",
	}))
	require.NoError(t, store.CallRecords().SetTriggeredWorkflows(ctx, "call-1", []string{"wf-1", "wf-2"}))

	record, err := store.CallRecords().GetByID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-1", "wf-2"}, record.TriggeredWorkflowIDs)

	err = store.CallRecords().SetTriggeredWorkflows(ctx, "missing", nil)
	assert.True(t, persistence.IsCallRecordNotFound(err))
}

func TestCredentialResolver_PlatformFallback(t *testing.T) {
	t.Parallel()

	platform := &models.MessagingCredentials{
		SMTP: &models.SMTPCredential{Host: "smtp.platform.example.com"},
	}
	store := memory.NewPersistence(platform)
	ctx := context.Background()

	store.SetCredentials("project-1", &models.MessagingCredentials{
		OrganizationID: "org-1",
		SMTP:           &models.SMTPCredential{Host: "smtp.org.example.com"},
	})

	org, err := store.Credentials().ForProject(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, "smtp.org.example.com", org.SMTP.Host)
	assert.False(t, org.UsingPlatformCredentials)

	fallback, err := store.Credentials().ForProject(ctx, "project-2")
	require.NoError(t, err)
	assert.Equal(t, "smtp.platform.example.com", fallback.SMTP.Host)
	assert.True(t, fallback.UsingPlatformCredentials)
}

func TestCredentialResolver_NoPlatform(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)

	_, err := store.Credentials().ForProject(context.Background(), "project-1")
	assert.True(t, persistence.IsCredentialsNotFound(err))
}

func TestTaskRepository_DefaultsAndOrder(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence(nil)
	ctx := context.Background()

	require.NoError(t, store.Tasks().Create(ctx, &models.Task{Title: "First"}))
	require.NoError(t, store.Tasks().Create(ctx, &models.Task{Title: "Second"}))

	tasks := store.CreatedTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "First", tasks[0].Title)
	assert.NotEmpty(t, tasks[0].ID)
	assert.False(t, tasks[0].CreatedAt.IsZero())
}
