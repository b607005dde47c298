// Package memory provides an in-memory persistence implementation used by
// tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
)

// Persistence keeps every entity in maps guarded by a single mutex. Reads
// return copies so callers can mutate results freely.
type Persistence struct {
	mu sync.RWMutex

	emails      map[string]*models.Email
	callRecords map[string]*models.CallRecord
	rules       map[string]*models.Rule
	workflows   map[string]*models.Workflow
	logs        map[string][]*models.ExecutionLog
	emailTmpls  map[string]*models.EmailTemplate
	smsTmpls    map[string]*models.SMSTemplate
	credentials map[string]*models.MessagingCredentials // keyed by project ID
	platform    *models.MessagingCredentials
	tasks       []*models.Task
}

// NewPersistence creates an empty in-memory store. The platform credentials
// are returned for any project without organization-level credentials; pass
// nil to make credential resolution fail.
func NewPersistence(platform *models.MessagingCredentials) *Persistence {
	return &Persistence{
		emails:      make(map[string]*models.Email),
		callRecords: make(map[string]*models.CallRecord),
		rules:       make(map[string]*models.Rule),
		workflows:   make(map[string]*models.Workflow),
		logs:        make(map[string][]*models.ExecutionLog),
		emailTmpls:  make(map[string]*models.EmailTemplate),
		smsTmpls:    make(map[string]*models.SMSTemplate),
		credentials: make(map[string]*models.MessagingCredentials),
		platform:    platform,
	}
}

func (p *Persistence) Emails() persistence.EmailRepository           { return (*emailRepo)(p) }
func (p *Persistence) CallRecords() persistence.CallRecordRepository { return (*callRecordRepo)(p) }
func (p *Persistence) Rules() persistence.RuleRepository             { return (*ruleRepo)(p) }
func (p *Persistence) Workflows() persistence.WorkflowRepository     { return (*workflowRepo)(p) }
func (p *Persistence) Templates() persistence.TemplateRepository     { return (*templateRepo)(p) }
func (p *Persistence) Credentials() persistence.CredentialResolver   { return (*credentialRepo)(p) }
func (p *Persistence) Tasks() persistence.TaskRepository             { return (*taskRepo)(p) }

func (p *Persistence) HealthCheck(_ context.Context) error { return nil }
func (p *Persistence) Close(_ context.Context) error       { return nil }

// SetCredentials registers organization credentials for a project.
func (p *Persistence) SetCredentials(projectID string, creds *models.MessagingCredentials) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credentials[projectID] = creds
}

// AddEmailTemplate stores a template for lookup by ID.
func (p *Persistence) AddEmailTemplate(tmpl *models.EmailTemplate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emailTmpls[tmpl.ID] = tmpl
}

// AddSMSTemplate stores a template for lookup by ID.
func (p *Persistence) AddSMSTemplate(tmpl *models.SMSTemplate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.smsTmpls[tmpl.ID] = tmpl
}

// CreatedTasks returns the tasks created so far, in creation order.
func (p *Persistence) CreatedTasks() []*models.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*models.Task, len(p.tasks))
	copy(out, p.tasks)

	return out
}

type emailRepo Persistence

func (r *emailRepo) Create(_ context.Context, email *models.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if email.ID == "" {
		email.ID = uuid.NewString()
	}

	cp := *email
	r.emails[email.ID] = &cp

	return nil
}

func (r *emailRepo) GetByID(_ context.Context, id string) (*models.Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.emails[id]
	if !ok || email.DeletedAt != nil {
		return nil, persistence.ErrEmailNotFound
	}

	cp := *email
	cp.Labels = append([]string(nil), email.Labels...)
	cp.ToAddresses = append([]string(nil), email.ToAddresses...)

	return &cp, nil
}

func (r *emailRepo) Update(_ context.Context, id string, update models.EmailUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email, ok := r.emails[id]
	if !ok {
		return persistence.ErrEmailNotFound
	}

	if update.IsRead != nil {
		email.IsRead = *update.IsRead
	}

	if update.IsStarred != nil {
		email.IsStarred = *update.IsStarred
	}

	if update.IsImportant != nil {
		email.IsImportant = *update.IsImportant
	}

	if update.IsArchived != nil {
		email.IsArchived = *update.IsArchived
	}

	if update.IsSpam != nil {
		email.IsSpam = *update.IsSpam
	}

	if update.IsTrashed != nil {
		email.IsTrashed = *update.IsTrashed
	}

	if update.Folder != nil {
		email.Folder = *update.Folder
	}

	if update.Labels != nil {
		email.Labels = append([]string(nil), (*update.Labels)...)
	}

	if update.DeletedAt != nil {
		email.DeletedAt = update.DeletedAt
	}

	email.UpdatedAt = time.Now().UTC()

	return nil
}

type callRecordRepo Persistence

func (r *callRecordRepo) Create(_ context.Context, record *models.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	cp := *record
	r.callRecords[record.ID] = &cp

	return nil
}

func (r *callRecordRepo) GetByID(_ context.Context, id string) (*models.CallRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.callRecords[id]
	if !ok || record.DeletedAt != nil {
		return nil, persistence.ErrCallRecordNotFound
	}

	cp := *record
	cp.TriggeredWorkflowIDs = append([]string(nil), record.TriggeredWorkflowIDs...)

	return &cp, nil
}

func (r *callRecordRepo) SetTriggeredWorkflows(_ context.Context, id string, workflowIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.callRecords[id]
	if !ok {
		return persistence.ErrCallRecordNotFound
	}

	record.TriggeredWorkflowIDs = append([]string(nil), workflowIDs...)

	return nil
}

type ruleRepo Persistence

func (r *ruleRepo) Create(_ context.Context, rule *models.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	cp := *rule
	r.rules[rule.ID] = &cp

	return nil
}

func (r *ruleRepo) Update(_ context.Context, rule *models.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rules[rule.ID]
	if !ok {
		return persistence.ErrRuleNotFound
	}

	rule.CreatedAt = existing.CreatedAt
	rule.MatchCount = existing.MatchCount
	rule.LastTriggeredAt = existing.LastTriggeredAt
	rule.UpdatedAt = time.Now().UTC()

	cp := *rule
	r.rules[rule.ID] = &cp

	return nil
}

func (r *ruleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[id]; !ok {
		return persistence.ErrRuleNotFound
	}

	delete(r.rules, id)

	return nil
}

func (r *ruleRepo) GetByID(_ context.Context, id string) (*models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, persistence.ErrRuleNotFound
	}

	cp := *rule

	return &cp, nil
}

func (r *ruleRepo) ListByAccount(_ context.Context, accountID string) ([]*models.Rule, error) {
	return r.list(accountID, false), nil
}

func (r *ruleRepo) ListEnabledByAccount(_ context.Context, accountID string) ([]*models.Rule, error) {
	return r.list(accountID, true), nil
}

func (r *ruleRepo) list(accountID string, enabledOnly bool) []*models.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Rule, 0)

	for _, rule := range r.rules {
		if rule.AccountID != accountID {
			continue
		}

		if enabledOnly && !rule.Enabled {
			continue
		}

		cp := *rule
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})

	return out
}

func (r *ruleRepo) IncrementMatchCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return persistence.ErrRuleNotFound
	}

	rule.MatchCount++
	now := time.Now().UTC()
	rule.LastTriggeredAt = &now

	return nil
}

type workflowRepo Persistence

func (r *workflowRepo) Create(_ context.Context, workflow *models.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if workflow.ID == "" {
		workflow.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	cp := *workflow
	r.workflows[workflow.ID] = &cp

	return nil
}

func (r *workflowRepo) Update(_ context.Context, workflow *models.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.workflows[workflow.ID]
	if !ok {
		return persistence.ErrWorkflowNotFound
	}

	workflow.CreatedAt = existing.CreatedAt
	workflow.TotalExecutions = existing.TotalExecutions
	workflow.UpdatedAt = time.Now().UTC()

	cp := *workflow
	r.workflows[workflow.ID] = &cp

	return nil
}

func (r *workflowRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workflows[id]; !ok {
		return persistence.ErrWorkflowNotFound
	}

	delete(r.workflows, id)

	return nil
}

func (r *workflowRepo) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflow, ok := r.workflows[id]
	if !ok {
		return nil, persistence.ErrWorkflowNotFound
	}

	cp := *workflow

	return &cp, nil
}

func (r *workflowRepo) ListByProject(_ context.Context, projectID string) ([]*models.Workflow, error) {
	return r.list(projectID, false), nil
}

func (r *workflowRepo) ListActiveByProject(_ context.Context, projectID string) ([]*models.Workflow, error) {
	return r.list(projectID, true), nil
}

func (r *workflowRepo) list(projectID string, activeOnly bool) []*models.Workflow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Workflow, 0)

	for _, workflow := range r.workflows {
		if workflow.ProjectID != projectID {
			continue
		}

		if activeOnly && !workflow.Active {
			continue
		}

		cp := *workflow
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

func (r *workflowRepo) IncrementExecutionCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	workflow, ok := r.workflows[id]
	if !ok {
		return persistence.ErrWorkflowNotFound
	}

	workflow.TotalExecutions++

	return nil
}

func (r *workflowRepo) AppendExecutionLog(_ context.Context, entry *models.ExecutionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	cp := *entry
	r.logs[entry.WorkflowID] = append(r.logs[entry.WorkflowID], &cp)

	return nil
}

func (r *workflowRepo) ExecutionLogs(_ context.Context, workflowID string) ([]*models.ExecutionLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.logs[workflowID]
	out := make([]*models.ExecutionLog, 0, len(entries))

	for _, entry := range entries {
		cp := *entry
		out = append(out, &cp)
	}

	return out, nil
}

type templateRepo Persistence

func (r *templateRepo) EmailTemplate(_ context.Context, id string) (*models.EmailTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.emailTmpls[id]
	if !ok {
		return nil, persistence.ErrTemplateNotFound
	}

	cp := *tmpl

	return &cp, nil
}

func (r *templateRepo) SMSTemplate(_ context.Context, id string) (*models.SMSTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.smsTmpls[id]
	if !ok {
		return nil, persistence.ErrTemplateNotFound
	}

	cp := *tmpl

	return &cp, nil
}

type credentialRepo Persistence

func (r *credentialRepo) ForProject(_ context.Context, projectID string) (*models.MessagingCredentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if creds, ok := r.credentials[projectID]; ok {
		cp := *creds

		return &cp, nil
	}

	if r.platform != nil {
		cp := *r.platform
		cp.UsingPlatformCredentials = true

		return &cp, nil
	}

	return nil, persistence.ErrCredentialsNotFound
}

type taskRepo Persistence

func (r *taskRepo) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	cp := *task
	r.tasks = append(r.tasks, &cp)

	return nil
}
