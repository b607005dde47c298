package callflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tdaniel1925/clientflow/pkg/messaging"
	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/protocol"
	"github.com/tdaniel1925/clientflow/pkg/template"
)

func configString(config map[string]any, key string) string {
	s, _ := config[key].(string)

	return s
}

// SendEmailActionFactory builds send_email actions.
type SendEmailActionFactory struct {
	templates   persistence.TemplateRepository
	credentials persistence.CredentialResolver
	sender      messaging.EmailSender
}

func NewSendEmailActionFactory(templates persistence.TemplateRepository, credentials persistence.CredentialResolver, sender messaging.EmailSender) *SendEmailActionFactory {
	return &SendEmailActionFactory{templates: templates, credentials: credentials, sender: sender}
}

func (f *SendEmailActionFactory) ID() string   { return string(models.WorkflowActionSendEmail) }
func (f *SendEmailActionFactory) Name() string { return "Send Email" }

func (f *SendEmailActionFactory) Description() string {
	return "Sends an email rendered from a stored template, with call details interpolated"
}

func (f *SendEmailActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template_id": map[string]any{
				"type":        "string",
				"description": "ID of the email template to render",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address, may contain placeholders",
			},
		},
		"required": []string{"template_id", "to"},
	}
}

func (f *SendEmailActionFactory) Create(config map[string]any) (protocol.Action, error) {
	action := &SendEmailAction{
		TemplateID:  configString(config, "template_id"),
		To:          configString(config, "to"),
		templates:   f.templates,
		credentials: f.credentials,
		sender:      f.sender,
	}

	if action.TemplateID == "" {
		return nil, errors.New("send_email: template_id is required")
	}

	if action.To == "" {
		return nil, errors.New("send_email: to is required")
	}

	return action, nil
}

// SendEmailAction renders an email template against the call record and sends
// it through the organization's SMTP credential.
type SendEmailAction struct {
	TemplateID string
	To         string

	templates   persistence.TemplateRepository
	credentials persistence.CredentialResolver
	sender      messaging.EmailSender
}

func (a *SendEmailAction) Execute(ctx context.Context, record *models.CallRecord, logger *slog.Logger) (map[string]any, error) {
	creds, err := a.credentials.ForProject(ctx, record.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}

	if creds.SMTP == nil {
		return nil, errors.New("no email credential configured for organization")
	}

	tmpl, err := a.templates.EmailTemplate(ctx, a.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("loading email template %s: %w", a.TemplateID, err)
	}

	msg := messaging.EmailMessage{
		To:      template.Interpolate(a.To, record),
		Subject: template.Interpolate(tmpl.Subject, record),
		HTML:    template.Interpolate(tmpl.Body, record),
	}

	if err := a.sender.Send(ctx, creds.SMTP, msg); err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}

	logger.Info("sent workflow email", "to", msg.To, "template_id", a.TemplateID)

	return map[string]any{
		"to":                        msg.To,
		"subject":                   msg.Subject,
		"template_id":               a.TemplateID,
		"used_platform_credentials": creds.UsingPlatformCredentials,
	}, nil
}

// SendSMSActionFactory builds send_sms actions.
type SendSMSActionFactory struct {
	templates   persistence.TemplateRepository
	credentials persistence.CredentialResolver
	sender      messaging.SMSSender
}

func NewSendSMSActionFactory(templates persistence.TemplateRepository, credentials persistence.CredentialResolver, sender messaging.SMSSender) *SendSMSActionFactory {
	return &SendSMSActionFactory{templates: templates, credentials: credentials, sender: sender}
}

func (f *SendSMSActionFactory) ID() string   { return string(models.WorkflowActionSendSMS) }
func (f *SendSMSActionFactory) Name() string { return "Send SMS" }

func (f *SendSMSActionFactory) Description() string {
	return "Sends a text message rendered from a stored template via the organization's Twilio number"
}

func (f *SendSMSActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template_id": map[string]any{
				"type":        "string",
				"description": "ID of the SMS template to render",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient phone number, may contain placeholders",
			},
		},
		"required": []string{"template_id", "to"},
	}
}

func (f *SendSMSActionFactory) Create(config map[string]any) (protocol.Action, error) {
	action := &SendSMSAction{
		TemplateID:  configString(config, "template_id"),
		To:          configString(config, "to"),
		templates:   f.templates,
		credentials: f.credentials,
		sender:      f.sender,
	}

	if action.TemplateID == "" {
		return nil, errors.New("send_sms: template_id is required")
	}

	if action.To == "" {
		return nil, errors.New("send_sms: to is required")
	}

	return action, nil
}

// SendSMSAction renders an SMS template against the call record and sends it.
// It fails fast when the organization has no Twilio credential or the
// interpolated recipient comes out empty.
type SendSMSAction struct {
	TemplateID string
	To         string

	templates   persistence.TemplateRepository
	credentials persistence.CredentialResolver
	sender      messaging.SMSSender
}

func (a *SendSMSAction) Execute(ctx context.Context, record *models.CallRecord, logger *slog.Logger) (map[string]any, error) {
	creds, err := a.credentials.ForProject(ctx, record.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}

	if creds.Twilio == nil {
		return nil, errors.New("no SMS credential configured for organization")
	}

	to := strings.TrimSpace(template.Interpolate(a.To, record))
	if to == "" {
		return nil, errors.New("recipient phone number is empty after interpolation")
	}

	tmpl, err := a.templates.SMSTemplate(ctx, a.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("loading sms template %s: %w", a.TemplateID, err)
	}

	body := template.Interpolate(tmpl.Body, record)

	if err := a.sender.Send(ctx, creds.Twilio, to, body); err != nil {
		return nil, fmt.Errorf("sending sms: %w", err)
	}

	logger.Info("sent workflow sms", "to", to, "template_id", a.TemplateID)

	return map[string]any{
		"to":                        to,
		"template_id":               a.TemplateID,
		"used_platform_credentials": creds.UsingPlatformCredentials,
	}, nil
}

// CreateTaskActionFactory builds create_task actions.
type CreateTaskActionFactory struct {
	tasks persistence.TaskRepository
}

func NewCreateTaskActionFactory(tasks persistence.TaskRepository) *CreateTaskActionFactory {
	return &CreateTaskActionFactory{tasks: tasks}
}

func (f *CreateTaskActionFactory) ID() string   { return string(models.WorkflowActionCreateTask) }
func (f *CreateTaskActionFactory) Name() string { return "Create Task" }

func (f *CreateTaskActionFactory) Description() string {
	return "Creates a project task linked to the triggering call record"
}

func (f *CreateTaskActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title, may contain placeholders",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Task description, may contain placeholders",
			},
			"due_days": map[string]any{
				"type":        "number",
				"description": "Days from now until the task is due",
				"minimum":     0,
			},
			"assigned_to": map[string]any{
				"type":        "string",
				"description": "User the task is assigned to",
			},
		},
		"required": []string{"title"},
	}
}

func (f *CreateTaskActionFactory) Create(config map[string]any) (protocol.Action, error) {
	action := &CreateTaskAction{
		Title:       configString(config, "title"),
		Description: configString(config, "description"),
		AssignedTo:  configString(config, "assigned_to"),
		tasks:       f.tasks,
	}

	if action.Title == "" {
		return nil, errors.New("create_task: title is required")
	}

	if days, ok := toFloat(config["due_days"]); ok && days > 0 {
		action.DueDays = int(days)
	}

	return action, nil
}

// CreateTaskAction records a follow-up task for the project team.
type CreateTaskAction struct {
	Title       string
	Description string
	AssignedTo  string
	DueDays     int

	tasks persistence.TaskRepository
}

func (a *CreateTaskAction) Execute(ctx context.Context, record *models.CallRecord, logger *slog.Logger) (map[string]any, error) {
	task := &models.Task{
		ID:          uuid.New().String(),
		ProjectID:   record.ProjectID,
		Title:       template.Interpolate(a.Title, record),
		Description: template.Interpolate(a.Description, record),
		Status:      models.TaskStatusTodo,
		AssignedTo:  a.AssignedTo,
		Metadata: map[string]any{
			"call_record_id": record.ID,
			"caller_phone":   record.CallerPhone,
			"source":         "call_workflow",
		},
		CreatedAt: time.Now().UTC(),
	}

	if a.DueDays > 0 {
		due := task.CreatedAt.AddDate(0, 0, a.DueDays)
		task.DueAt = &due
	}

	if err := a.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("created workflow task", "task_id", task.ID, "title", task.Title)

	return map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
	}, nil
}
