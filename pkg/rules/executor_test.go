package rules

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdaniel1925/clientflow/pkg/models"
	"github.com/tdaniel1925/clientflow/pkg/persistence/memory"
)

func newExecutorFixture(t *testing.T) (*Executor, *memory.Persistence) {
	t.Helper()

	store := memory.NewPersistence(nil)

	return NewExecutor(store, slog.Default()), store
}

func createRule(t *testing.T, store *memory.Persistence, rule *models.Rule) *models.Rule {
	t.Helper()
	require.NoError(t, store.Rules().Create(context.Background(), rule))

	return rule
}

func TestExecuteForEmailMissingEmail(t *testing.T) {
	executor, _ := newExecutorFixture(t)

	summary := executor.ExecuteForEmail(context.Background(), "no-such-email")

	assert.Equal(t, Summary{}, summary)
}

func TestExecuteForEmailMatchAndStatistics(t *testing.T) {
	executor, store := newExecutorFixture(t)
	ctx := context.Background()

	email := testEmail()
	require.NoError(t, store.Emails().Create(ctx, email))

	rule := createRule(t, store, &models.Rule{
		AccountID: email.AccountID,
		Name:      "label invoices",
		Enabled:   true,
		Priority:  1,
		Conditions: models.ConditionGroup{
			Logic: models.GroupLogicAnd,
			Rules: []models.RuleCondition{
				{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "invoice"},
			},
		},
		Actions: []models.RuleAction{
			{Type: models.RuleActionApplyLabel, Value: "receipts"},
		},
	})

	summary := executor.ExecuteForEmail(ctx, email.ID)

	assert.Equal(t, Summary{ExecutedRules: 1, MatchedRules: 1, ActionsExecuted: 1}, summary)

	stored, err := store.Emails().GetByID(ctx, email.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Labels, "receipts")

	updated, err := store.Rules().GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.MatchCount)
	assert.NotNil(t, updated.LastTriggeredAt)
}

func TestExecuteForEmailCountsAllRules(t *testing.T) {
	executor, store := newExecutorFixture(t)
	ctx := context.Background()

	email := testEmail()
	require.NoError(t, store.Emails().Create(ctx, email))

	match := models.ConditionGroup{Logic: models.GroupLogicAnd, Rules: []models.RuleCondition{
		{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "invoice"},
	}}
	miss := models.ConditionGroup{Logic: models.GroupLogicAnd, Rules: []models.RuleCondition{
		{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "newsletter"},
	}}

	createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "rule one", Enabled: true, Priority: 1, Conditions: match,
		Actions: []models.RuleAction{{Type: models.RuleActionMarkAsRead}}})
	createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "rule two", Enabled: true, Priority: 2, Conditions: miss,
		Actions: []models.RuleAction{{Type: models.RuleActionMarkAsStarred}}})
	createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "rule three", Enabled: true, Priority: 3, Conditions: match,
		Actions: []models.RuleAction{{Type: models.RuleActionMarkAsImportant}}})

	summary := executor.ExecuteForEmail(ctx, email.ID)

	assert.Equal(t, 3, summary.ExecutedRules)
	assert.Equal(t, 2, summary.MatchedRules)
	assert.Equal(t, 2, summary.ActionsExecuted)
}

func TestExecuteForEmailSkipsDisabledRules(t *testing.T) {
	executor, store := newExecutorFixture(t)
	ctx := context.Background()

	email := testEmail()
	require.NoError(t, store.Emails().Create(ctx, email))

	createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "disabled rule", Enabled: false, Priority: 1,
		Conditions: models.ConditionGroup{Logic: models.GroupLogicAnd, Rules: []models.RuleCondition{
			{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "invoice"},
		}},
		Actions: []models.RuleAction{{Type: models.RuleActionMarkAsRead}}})

	summary := executor.ExecuteForEmail(ctx, email.ID)

	assert.Equal(t, Summary{}, summary)
}

// Rules run in ascending priority order against cumulative state: a later
// rule's condition can depend on a flag an earlier rule just set.
func TestExecuteForEmailCumulativeState(t *testing.T) {
	executor, store := newExecutorFixture(t)
	ctx := context.Background()

	email := testEmail()
	require.NoError(t, store.Emails().Create(ctx, email))

	createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "mark invoices read", Enabled: true, Priority: 1,
		Conditions: models.ConditionGroup{Logic: models.GroupLogicAnd, Rules: []models.RuleCondition{
			{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "invoice"},
		}},
		Actions: []models.RuleAction{{Type: models.RuleActionMarkAsRead}}})

	createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "archive read mail", Enabled: true, Priority: 2,
		Conditions: models.ConditionGroup{Logic: models.GroupLogicAnd, Rules: []models.RuleCondition{
			{Field: models.RuleFieldIsRead, Operator: models.RuleOperatorIs, Value: true},
		}},
		Actions: []models.RuleAction{{Type: models.RuleActionMoveToFolder, Value: "archive"}}})

	summary := executor.ExecuteForEmail(ctx, email.ID)

	assert.Equal(t, 2, summary.MatchedRules)

	stored, err := store.Emails().GetByID(ctx, email.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
	assert.True(t, stored.IsArchived)
}

// A matched rule increments its counter even when every action fails.
func TestExecuteForEmailFailingActionStillCountsMatch(t *testing.T) {
	executor, store := newExecutorFixture(t)
	ctx := context.Background()

	email := testEmail()
	require.NoError(t, store.Emails().Create(ctx, email))

	rule := createRule(t, store, &models.Rule{AccountID: email.AccountID, Name: "broken actions", Enabled: true, Priority: 1,
		Conditions: models.ConditionGroup{Logic: models.GroupLogicAnd, Rules: []models.RuleCondition{
			{Field: models.RuleFieldSubject, Operator: models.RuleOperatorContains, Value: "invoice"},
		}},
		Actions: []models.RuleAction{{Type: "bogus"}}})

	summary := executor.ExecuteForEmail(ctx, email.ID)

	assert.Equal(t, Summary{ExecutedRules: 1, MatchedRules: 1, ActionsExecuted: 0}, summary)

	updated, err := store.Rules().GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.MatchCount)
}
