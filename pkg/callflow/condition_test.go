package callflow

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

func testRecord() *models.CallRecord {
	return &models.CallRecord{
		ID:              "call-1",
		ProjectID:       "project-1",
		CallerName:      "Dana Reyes",
		CallerPhone:     "+15550001111",
		Topic:           "billing dispute",
		Summary:         "Customer disputes last invoice",
		Sentiment:       "negative",
		QualityRating:   2,
		FollowUpNeeded:  true,
		FollowUpReason:  "promised a callback",
		DurationSeconds: 420,
	}
}

func TestEvaluateTrigger_SingleCondition(t *testing.T) {
	logger := slog.Default()
	record := testRecord()

	tests := []struct {
		name string
		cond models.TriggerCondition
		want bool
	}{
		{
			name: "equals matches",
			cond: models.TriggerCondition{Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "negative"},
			want: true,
		},
		{
			name: "equals compares numbers loosely",
			cond: models.TriggerCondition{Field: "callQualityRating", Operator: models.TriggerOpEquals, Value: "2"},
			want: true,
		},
		{
			name: "not_equals",
			cond: models.TriggerCondition{Field: "callSentiment", Operator: models.TriggerOpNotEquals, Value: "positive"},
			want: true,
		},
		{
			name: "less_than on rating",
			cond: models.TriggerCondition{Field: "callQualityRating", Operator: models.TriggerOpLessThan, Value: 3},
			want: true,
		},
		{
			name: "greater_than on rating fails",
			cond: models.TriggerCondition{Field: "callQualityRating", Operator: models.TriggerOpGreaterThan, Value: 3},
			want: false,
		},
		{
			name: "greater_than_or_equal on duration",
			cond: models.TriggerCondition{Field: "callDurationSeconds", Operator: models.TriggerOpGreaterThanOrEqual, Value: 420},
			want: true,
		},
		{
			name: "numeric operator on string field",
			cond: models.TriggerCondition{Field: "callerName", Operator: models.TriggerOpGreaterThan, Value: 3},
			want: false,
		},
		{
			name: "contains",
			cond: models.TriggerCondition{Field: "callTopic", Operator: models.TriggerOpContains, Value: "billing"},
			want: true,
		},
		{
			name: "not_contains",
			cond: models.TriggerCondition{Field: "callTopic", Operator: models.TriggerOpNotContains, Value: "sales"},
			want: true,
		},
		{
			name: "contains on non-string field",
			cond: models.TriggerCondition{Field: "callQualityRating", Operator: models.TriggerOpContains, Value: "2"},
			want: false,
		},
		{
			name: "is_true on boolean",
			cond: models.TriggerCondition{Field: "followUpNeeded", Operator: models.TriggerOpIsTrue},
			want: true,
		},
		{
			name: "is_false on boolean",
			cond: models.TriggerCondition{Field: "followUpNeeded", Operator: models.TriggerOpIsFalse},
			want: false,
		},
		{
			name: "is_true on non-boolean field",
			cond: models.TriggerCondition{Field: "callTopic", Operator: models.TriggerOpIsTrue},
			want: false,
		},
		{
			name: "unknown field",
			cond: models.TriggerCondition{Field: "callerEmail", Operator: models.TriggerOpEquals, Value: "x"},
			want: false,
		},
		{
			name: "unknown operator",
			cond: models.TriggerCondition{Field: "callTopic", Operator: "matches", Value: "billing"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateTrigger(models.TriggerConditions{TriggerCondition: tt.cond}, record, logger)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateTrigger_Groups(t *testing.T) {
	logger := slog.Default()
	record := testRecord()

	t.Run("all requires every condition", func(t *testing.T) {
		conds := models.TriggerConditions{All: []models.TriggerCondition{
			{Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "negative"},
			{Field: "callQualityRating", Operator: models.TriggerOpLessThan, Value: 3},
		}}
		assert.True(t, EvaluateTrigger(conds, record, logger))

		conds.All = append(conds.All, models.TriggerCondition{
			Field: "followUpNeeded", Operator: models.TriggerOpIsFalse,
		})
		assert.False(t, EvaluateTrigger(conds, record, logger))
	})

	t.Run("any requires one condition", func(t *testing.T) {
		conds := models.TriggerConditions{Any: []models.TriggerCondition{
			{Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "positive"},
			{Field: "followUpNeeded", Operator: models.TriggerOpIsTrue},
		}}
		assert.True(t, EvaluateTrigger(conds, record, logger))

		conds.Any = []models.TriggerCondition{
			{Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "positive"},
			{Field: "callQualityRating", Operator: models.TriggerOpGreaterThan, Value: 4},
		}
		assert.False(t, EvaluateTrigger(conds, record, logger))
	})

	t.Run("all wins over any when both are set", func(t *testing.T) {
		conds := models.TriggerConditions{
			All: []models.TriggerCondition{
				{Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "positive"},
			},
			Any: []models.TriggerCondition{
				{Field: "followUpNeeded", Operator: models.TriggerOpIsTrue},
			},
		}
		assert.False(t, EvaluateTrigger(conds, record, logger))
	})

	t.Run("empty conditions never fire", func(t *testing.T) {
		assert.False(t, EvaluateTrigger(models.TriggerConditions{}, record, logger))
	})
}

func TestValidateTriggerConditions(t *testing.T) {
	require.NoError(t, ValidateTriggerConditions(models.TriggerConditions{
		All: []models.TriggerCondition{
			{Field: "callSentiment", Operator: models.TriggerOpEquals, Value: "negative"},
		},
	}))

	err := ValidateTriggerConditions(models.TriggerConditions{
		TriggerCondition: models.TriggerCondition{Field: "callerEmail", Operator: models.TriggerOpEquals},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown call record field")

	err = ValidateTriggerConditions(models.TriggerConditions{
		Any: []models.TriggerCondition{
			{Field: "callTopic", Operator: "matches"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trigger operator")
}
