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

// RuleRepository handles inbox-rule database operations.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRuleRepository creates a new rule repository.
func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	conditionsJSON, actionsJSON, err := marshalRulePayload(rule)
	if err != nil {
		return persistence.NewStoreError("create", "rule", rule.ID, err)
	}

	query := `
		INSERT INTO email_rules (id, account_id, name, enabled, priority,
			conditions, actions, match_count, last_triggered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.AccountID,
		rule.Name,
		rule.Enabled,
		rule.Priority,
		conditionsJSON,
		actionsJSON,
		rule.MatchCount,
		rule.LastTriggeredAt,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("create", "rule", rule.ID, err)
	}

	return nil
}

// Update replaces the user-editable fields. MatchCount and LastTriggeredAt are
// only written through IncrementMatchCount.
func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	rule.UpdatedAt = time.Now().UTC()

	conditionsJSON, actionsJSON, err := marshalRulePayload(rule)
	if err != nil {
		return persistence.NewStoreError("update", "rule", rule.ID, err)
	}

	query := `
		UPDATE email_rules SET
			name = $1,
			enabled = $2,
			priority = $3,
			conditions = $4,
			actions = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		rule.Name,
		rule.Enabled,
		rule.Priority,
		conditionsJSON,
		actionsJSON,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return persistence.NewStoreError("update", "rule", rule.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("update", "rule", rule.ID, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("update", "rule", rule.ID, persistence.ErrRuleNotFound)
	}

	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM email_rules WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("delete", "rule", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("delete", "rule", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("delete", "rule", id, persistence.ErrRuleNotFound)
	}

	return nil
}

func (r *RuleRepository) GetByID(ctx context.Context, id string) (*models.Rule, error) {
	query := ruleSelect + ` WHERE id = $1`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("get", "rule", id, persistence.ErrRuleNotFound)
		}

		return nil, persistence.NewStoreError("get", "rule", id, err)
	}

	return rule, nil
}

func (r *RuleRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Rule, error) {
	return r.list(ctx, accountID, false)
}

// ListEnabledByAccount returns enabled rules in ascending priority order, the
// order the engine evaluates them in.
func (r *RuleRepository) ListEnabledByAccount(ctx context.Context, accountID string) ([]*models.Rule, error) {
	return r.list(ctx, accountID, true)
}

func (r *RuleRepository) list(ctx context.Context, accountID string, enabledOnly bool) ([]*models.Rule, error) {
	query := ruleSelect + ` WHERE account_id = $1`
	if enabledOnly {
		query += ` AND enabled = TRUE`
	}

	query += ` ORDER BY priority ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, persistence.NewStoreError("list", "rule", accountID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	rules := make([]*models.Rule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, persistence.NewStoreError("list", "rule", accountID, err)
		}

		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("list", "rule", accountID, err)
	}

	return rules, nil
}

// IncrementMatchCount bumps the counter and stamps last_triggered_at in one
// statement, safe under concurrent engine runs.
func (r *RuleRepository) IncrementMatchCount(ctx context.Context, id string) error {
	query := `
		UPDATE email_rules SET
			match_count = match_count + 1,
			last_triggered_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("increment", "rule", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("increment", "rule", id, err)
	}

	if rowsAffected == 0 {
		return persistence.NewStoreError("increment", "rule", id, persistence.ErrRuleNotFound)
	}

	return nil
}

const ruleSelect = `
	SELECT
		id
	  , account_id
	  , name
	  , enabled
	  , priority
	  , conditions
	  , actions
	  , match_count
	  , last_triggered_at
	  , created_at
	  , updated_at
	FROM email_rules
`

func marshalRulePayload(rule *models.Rule) ([]byte, []byte, error) {
	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, err
	}

	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return nil, nil, err
	}

	return conditionsJSON, actionsJSON, nil
}

func scanRule(scanner interface{ Scan(dest ...any) error }) (*models.Rule, error) {
	var (
		rule                        models.Rule
		conditionsJSON, actionsJSON []byte
	)

	err := scanner.Scan(
		&rule.ID,
		&rule.AccountID,
		&rule.Name,
		&rule.Enabled,
		&rule.Priority,
		&conditionsJSON,
		&actionsJSON,
		&rule.MatchCount,
		&rule.LastTriggeredAt,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
		return nil, err
	}

	return &rule, nil
}
