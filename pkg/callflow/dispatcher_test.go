package callflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdaniel1925/clientflow/pkg/messaging"
	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence/memory"
	"github.com/tdaniel1925/clientflow/pkg/registry"
)

type fakeEmailSender struct {
	sent []messaging.EmailMessage
	err  error
}

func (s *fakeEmailSender) Send(_ context.Context, _ *models.SMTPCredential, msg messaging.EmailMessage) error {
	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, msg)

	return nil
}

type fakeSMSSender struct {
	to   []string
	body []string
	err  error
}

func (s *fakeSMSSender) Send(_ context.Context, _ *models.TwilioCredential, to, body string) error {
	if s.err != nil {
		return s.err
	}

	s.to = append(s.to, to)
	s.body = append(s.body, body)

	return nil
}

type dispatcherFixture struct {
	store      *memory.Persistence
	emails     *fakeEmailSender
	sms        *fakeSMSSender
	dispatcher *Dispatcher
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	store := memory.NewPersistence(nil)
	store.SetCredentials("project-1", &models.MessagingCredentials{
		OrganizationID: "org-1",
		SMTP:           &models.SMTPCredential{Host: "smtp.example.com", Port: 587, FromEmail: "ops@example.com"},
		Twilio:         &models.TwilioCredential{AccountSID: "AC1", FromNumber: "+15557778888"},
	})
	store.AddEmailTemplate(&models.EmailTemplate{
		ID:      "tmpl-email",
		Subject: "Follow up with {{caller_name}}",
		Body:    "<p>{{caller_name}} called about {{call_topic}}.</p>",
	})
	store.AddSMSTemplate(&models.SMSTemplate{
		ID:   "tmpl-sms",
		Body: "Thanks for calling about {{call_topic}}, {{caller_name}}!",
	})

	emails := &fakeEmailSender{}
	sms := &fakeSMSSender{}

	logger := slog.Default()
	reg := registry.NewRegistry(logger)
	reg.RegisterAction(NewSendEmailActionFactory(store.Templates(), store.Credentials(), emails))
	reg.RegisterAction(NewSendSMSActionFactory(store.Templates(), store.Credentials(), sms))
	reg.RegisterAction(NewCreateTaskActionFactory(store.Tasks()))

	return &dispatcherFixture{
		store:      store,
		emails:     emails,
		sms:        sms,
		dispatcher: NewDispatcher(store, reg, nil, logger),
	}
}

func (f *dispatcherFixture) addRecord(t *testing.T, record *models.CallRecord) {
	t.Helper()
	require.NoError(t, f.store.CallRecords().Create(context.Background(), record))
}

func (f *dispatcherFixture) addWorkflow(t *testing.T, workflow *models.Workflow) {
	t.Helper()
	require.NoError(t, f.store.Workflows().Create(context.Background(), workflow))
}

func negativeCallWorkflow(actions ...models.WorkflowAction) *models.Workflow {
	return &models.Workflow{
		ID:        "wf-1",
		ProjectID: "project-1",
		Name:      "Negative call follow-up",
		Active:    true,
		TriggerConditions: models.TriggerConditions{
			TriggerCondition: models.TriggerCondition{
				Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "negative",
			},
		},
		Actions: actions,
	}
}

func TestDispatcher_TriggersMatchingWorkflow(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.addRecord(t, testRecord())
	f.addWorkflow(t, negativeCallWorkflow(
		models.WorkflowAction{
			Type:   "send_email",
			Config: map[string]any{"template_id": "tmpl-email", "to": "manager@example.com"},
		},
		models.WorkflowAction{
			Type:   "send_sms",
			Config: map[string]any{"template_id": "tmpl-sms", "to": "{{caller_phone}}"},
		},
	))

	triggered := f.dispatcher.CheckAndExecute(ctx, "call-1")
	require.Equal(t, []string{"wf-1"}, triggered)

	require.Len(t, f.emails.sent, 1)
	assert.Equal(t, "manager@example.com", f.emails.sent[0].To)
	assert.Equal(t, "Follow up with Dana Reyes", f.emails.sent[0].Subject)

	require.Len(t, f.sms.to, 1)
	assert.Equal(t, "+15550001111", f.sms.to[0])
	assert.Equal(t, "Thanks for calling about billing dispute, Dana Reyes!", f.sms.body[0])

	record, err := f.store.CallRecords().GetByID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-1"}, record.TriggeredWorkflowIDs)

	workflow, err := f.store.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), workflow.TotalExecutions)

	logs, err := f.store.Workflows().ExecutionLogs(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ExecutionStatusSuccess, logs[0].Status)
	require.Len(t, logs[0].ActionsExecuted, 2)
	assert.Equal(t, models.ActionResultCompleted, logs[0].ActionsExecuted[0].Status)
	assert.Equal(t, models.ActionResultCompleted, logs[0].ActionsExecuted[1].Status)
}

func TestDispatcher_NonMatchingWorkflowSkipped(t *testing.T) {
	f := newDispatcherFixture(t)
	record := testRecord()
	record.Sentiment = "positive"
	f.addRecord(t, record)
	f.addWorkflow(t, negativeCallWorkflow(models.WorkflowAction{
		Type:   "create_task",
		Config: map[string]any{"title": "Call back {{caller_name}}"},
	}))

	triggered := f.dispatcher.CheckAndExecute(context.Background(), "call-1")
	assert.Empty(t, triggered)
	assert.Empty(t, f.store.CreatedTasks())

	logs, err := f.store.Workflows().ExecutionLogs(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDispatcher_InactiveWorkflowIgnored(t *testing.T) {
	f := newDispatcherFixture(t)
	f.addRecord(t, testRecord())

	workflow := negativeCallWorkflow(models.WorkflowAction{
		Type:   "create_task",
		Config: map[string]any{"title": "Call back"},
	})
	workflow.Active = false
	f.addWorkflow(t, workflow)

	assert.Empty(t, f.dispatcher.CheckAndExecute(context.Background(), "call-1"))
}

func TestDispatcher_PartialFailureIsolatesActions(t *testing.T) {
	f := newDispatcherFixture(t)
	f.emails.err = errors.New("smtp connection refused")

	f.addRecord(t, testRecord())
	f.addWorkflow(t, negativeCallWorkflow(
		models.WorkflowAction{
			Type:   "send_email",
			Config: map[string]any{"template_id": "tmpl-email", "to": "manager@example.com"},
		},
		models.WorkflowAction{
			Type:   "create_task",
			Config: map[string]any{"title": "Call back {{caller_name}}", "due_days": 2},
		},
	))

	triggered := f.dispatcher.CheckAndExecute(context.Background(), "call-1")
	require.Equal(t, []string{"wf-1"}, triggered, "a failing action still counts the workflow as triggered")

	tasks := f.store.CreatedTasks()
	require.Len(t, tasks, 1, "second action runs despite the first failing")
	assert.Equal(t, "Call back Dana Reyes", tasks[0].Title)
	assert.Equal(t, models.TaskStatusTodo, tasks[0].Status)
	require.NotNil(t, tasks[0].DueAt)
	assert.Equal(t, "call-1", tasks[0].Metadata["call_record_id"])

	logs, err := f.store.Workflows().ExecutionLogs(context.Background(), "wf-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ExecutionStatusPartial, logs[0].Status)
	require.Len(t, logs[0].ActionsExecuted, 2)
	assert.Equal(t, models.ActionResultFailed, logs[0].ActionsExecuted[0].Status)
	assert.Contains(t, logs[0].ActionsExecuted[0].Error, "smtp connection refused")
	assert.Equal(t, models.ActionResultCompleted, logs[0].ActionsExecuted[1].Status)
}

func TestDispatcher_MissingSMSCredentialFailsFast(t *testing.T) {
	f := newDispatcherFixture(t)
	f.store.SetCredentials("project-1", &models.MessagingCredentials{
		OrganizationID: "org-1",
		SMTP:           &models.SMTPCredential{Host: "smtp.example.com"},
	})

	f.addRecord(t, testRecord())
	f.addWorkflow(t, negativeCallWorkflow(models.WorkflowAction{
		Type:   "send_sms",
		Config: map[string]any{"template_id": "tmpl-sms", "to": "{{caller_phone}}"},
	}))

	f.dispatcher.CheckAndExecute(context.Background(), "call-1")

	assert.Empty(t, f.sms.to)

	logs, err := f.store.Workflows().ExecutionLogs(context.Background(), "wf-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ExecutionStatusPartial, logs[0].Status)
	assert.Contains(t, logs[0].ActionsExecuted[0].Error, "no SMS credential")
}

func TestDispatcher_EmptyRecipientAfterInterpolation(t *testing.T) {
	f := newDispatcherFixture(t)

	record := testRecord()
	record.CallerPhone = ""
	f.addRecord(t, record)
	f.addWorkflow(t, negativeCallWorkflow(models.WorkflowAction{
		Type:   "send_sms",
		Config: map[string]any{"template_id": "tmpl-sms", "to": "{{caller_phone}}"},
	}))

	f.dispatcher.CheckAndExecute(context.Background(), "call-1")

	assert.Empty(t, f.sms.to)

	logs, err := f.store.Workflows().ExecutionLogs(context.Background(), "wf-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].ActionsExecuted[0].Error, "empty after interpolation")
}

func TestDispatcher_InvalidActionConfig(t *testing.T) {
	f := newDispatcherFixture(t)
	f.addRecord(t, testRecord())
	f.addWorkflow(t, negativeCallWorkflow(models.WorkflowAction{
		Type:   "send_email",
		Config: map[string]any{"to": "manager@example.com"},
	}))

	f.dispatcher.CheckAndExecute(context.Background(), "call-1")

	logs, err := f.store.Workflows().ExecutionLogs(context.Background(), "wf-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ExecutionStatusPartial, logs[0].Status)
	assert.Equal(t, models.ActionResultFailed, logs[0].ActionsExecuted[0].Status)
}

func TestDispatcher_UnknownCallRecord(t *testing.T) {
	f := newDispatcherFixture(t)
	assert.Nil(t, f.dispatcher.CheckAndExecute(context.Background(), "missing"))
}

func TestDispatcher_MultipleWorkflows(t *testing.T) {
	f := newDispatcherFixture(t)
	f.addRecord(t, testRecord())

	first := negativeCallWorkflow(models.WorkflowAction{
		Type:   "create_task",
		Config: map[string]any{"title": "First"},
	})
	f.addWorkflow(t, first)

	second := &models.Workflow{
		ID:        "wf-2",
		ProjectID: "project-1",
		Name:      "Low rating alert",
		Active:    true,
		TriggerConditions: models.TriggerConditions{
			TriggerCondition: models.TriggerCondition{
				Field: "callQualityRating", Operator: models.TriggerOpLessThanOrEqual, Value: 2,
			},
		},
		Actions: []models.WorkflowAction{{
			Type:   "create_task",
			Config: map[string]any{"title": "Second"},
		}},
	}
	f.addWorkflow(t, second)

	triggered := f.dispatcher.CheckAndExecute(context.Background(), "call-1")
	assert.ElementsMatch(t, []string{"wf-1", "wf-2"}, triggered)
	assert.Len(t, f.store.CreatedTasks(), 2)

	record, err := f.store.CallRecords().GetByID(context.Background(), "call-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wf-1", "wf-2"}, record.TriggeredWorkflowIDs)
}
