// Package callflow implements the call-record workflow engine: trigger
// evaluation and workflow dispatch after call analysis completes.
package callflow

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

var triggerOperators = map[models.TriggerOperator]struct{}{
	models.TriggerOpEquals:             {},
	models.TriggerOpNotEquals:          {},
	models.TriggerOpGreaterThan:        {},
	models.TriggerOpLessThan:           {},
	models.TriggerOpGreaterThanOrEqual: {},
	models.TriggerOpLessThanOrEqual:    {},
	models.TriggerOpContains:           {},
	models.TriggerOpNotContains:        {},
	models.TriggerOpIsTrue:             {},
	models.TriggerOpIsFalse:            {},
}

// ValidateTriggerConditions rejects unknown fields and operators when a
// workflow is created, so evaluation never meets a key outside the accessor
// table.
func ValidateTriggerConditions(conds models.TriggerConditions) error {
	all := make([]models.TriggerCondition, 0, len(conds.All)+len(conds.Any)+1)
	all = append(all, conds.All...)
	all = append(all, conds.Any...)

	if len(conds.All) == 0 && len(conds.Any) == 0 {
		all = append(all, conds.TriggerCondition)
	}

	for _, cond := range all {
		if !models.KnownCallRecordField(cond.Field) {
			return fmt.Errorf("unknown call record field %q", cond.Field)
		}

		if _, ok := triggerOperators[cond.Operator]; !ok {
			return fmt.Errorf("unknown trigger operator %q", cond.Operator)
		}
	}

	return nil
}

// EvaluateTrigger decides whether a workflow fires for a call record. An
// all-group requires every condition, an any-group requires at least one,
// and a bare condition stands alone.
func EvaluateTrigger(conds models.TriggerConditions, record *models.CallRecord, logger *slog.Logger) bool {
	if len(conds.All) > 0 {
		for _, cond := range conds.All {
			if !evaluateSingle(cond, record, logger) {
				return false
			}
		}

		return true
	}

	if len(conds.Any) > 0 {
		for _, cond := range conds.Any {
			if evaluateSingle(cond, record, logger) {
				return true
			}
		}

		return false
	}

	return evaluateSingle(conds.TriggerCondition, record, logger)
}

// evaluateSingle applies one operator. Numeric operators require a numeric
// field value, string operators a string value, is_true/is_false a strict
// boolean; anything else yields false.
func evaluateSingle(cond models.TriggerCondition, record *models.CallRecord, logger *slog.Logger) bool {
	value, ok := record.Field(cond.Field)
	if !ok {
		logger.Warn("trigger condition references unknown field", "field", cond.Field)

		return false
	}

	switch cond.Operator {
	case models.TriggerOpEquals:
		return stringify(value) == stringify(cond.Value)
	case models.TriggerOpNotEquals:
		return stringify(value) != stringify(cond.Value)
	case models.TriggerOpGreaterThan, models.TriggerOpLessThan,
		models.TriggerOpGreaterThanOrEqual, models.TriggerOpLessThanOrEqual:
		return compareNumeric(cond.Operator, value, cond.Value)
	case models.TriggerOpContains, models.TriggerOpNotContains:
		field, isString := value.(string)
		if !isString {
			return false
		}

		contained := strings.Contains(field, stringify(cond.Value))
		if cond.Operator == models.TriggerOpNotContains {
			return !contained
		}

		return contained
	case models.TriggerOpIsTrue:
		b, isBool := value.(bool)

		return isBool && b
	case models.TriggerOpIsFalse:
		b, isBool := value.(bool)

		return isBool && !b
	default:
		logger.Warn("unknown trigger operator", "operator", cond.Operator)

		return false
	}
}

func compareNumeric(op models.TriggerOperator, field, target any) bool {
	fieldNum, ok := toFloat(field)
	if !ok {
		return false
	}

	targetNum, ok := toFloat(target)
	if !ok {
		return false
	}

	switch op {
	case models.TriggerOpGreaterThan:
		return fieldNum > targetNum
	case models.TriggerOpLessThan:
		return fieldNum < targetNum
	case models.TriggerOpGreaterThanOrEqual:
		return fieldNum >= targetNum
	case models.TriggerOpLessThanOrEqual:
		return fieldNum <= targetNum
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
