// Package rules implements the inbox rule engine: condition evaluation,
// action execution and per-email orchestration.
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

// Outcome is the tagged result of evaluating one condition. Anything other
// than OutcomeMatched counts as no-match, but the tags let callers and tests
// tell a correct miss apart from a silently ignored type error.
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeNoMatch
	OutcomeTypeMismatch
	OutcomeFieldMissing
)

// Matched reports whether the condition held.
func (o Outcome) Matched() bool { return o == OutcomeMatched }

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeTypeMismatch:
		return "type_mismatch"
	case OutcomeFieldMissing:
		return "field_missing"
	default:
		return "unknown"
	}
}

// emailFields is the closed extraction table mapping condition fields to
// email values. Values are string or bool.
var emailFields = map[models.RuleField]func(*models.Email) any{
	models.RuleFieldSender:    func(e *models.Email) any { return e.FromAddress },
	models.RuleFieldRecipient: func(e *models.Email) any { return strings.Join(e.ToAddresses, " ") },
	models.RuleFieldSubject:   func(e *models.Email) any { return e.Subject },
	models.RuleFieldBody: func(e *models.Email) any {
		if e.BodyText != "" {
			return e.BodyText
		}

		return e.BodyHTML
	},
	models.RuleFieldHasAttachment: func(e *models.Email) any { return e.HasAttachments },
	models.RuleFieldIsImportant:   func(e *models.Email) any { return e.IsImportant },
	models.RuleFieldIsRead:        func(e *models.Email) any { return e.IsRead },
	models.RuleFieldLabel:         func(e *models.Email) any { return strings.Join(e.Labels, " ") },
	models.RuleFieldReceivedAt:    func(e *models.Email) any { return e.ReceivedAt.UTC().Format(time.RFC3339) },
}

// KnownRuleField reports whether rules may reference the field.
func KnownRuleField(field models.RuleField) bool {
	_, ok := emailFields[field]

	return ok
}

var ruleOperators = map[models.RuleOperator]struct{}{
	models.RuleOperatorContains:   {},
	models.RuleOperatorEquals:     {},
	models.RuleOperatorStartsWith: {},
	models.RuleOperatorEndsWith:   {},
	models.RuleOperatorIs:         {},
	models.RuleOperatorIsNot:      {},
	models.RuleOperatorRegex:      {},
}

// ValidateGroup rejects unknown fields and operators when a rule is created
// or updated. Evaluation stays lenient; this keeps garbage out up front.
func ValidateGroup(group models.ConditionGroup) error {
	if group.Logic != models.GroupLogicAnd && group.Logic != models.GroupLogicOr {
		return fmt.Errorf("unknown group logic %q", group.Logic)
	}

	for _, cond := range group.Rules {
		if !KnownRuleField(cond.Field) {
			return fmt.Errorf("unknown rule field %q", cond.Field)
		}

		if _, ok := ruleOperators[cond.Operator]; !ok {
			return fmt.Errorf("unknown rule operator %q", cond.Operator)
		}
	}

	return nil
}

// EvaluateCondition applies one predicate to an email. It never fails: an
// unknown field, an operator invalid for the field's type, or a malformed
// regex all collapse to a non-matched outcome.
func EvaluateCondition(email *models.Email, cond models.RuleCondition) Outcome {
	extract, ok := emailFields[cond.Field]
	if !ok {
		return OutcomeFieldMissing
	}

	value := extract(email)

	if b, isBool := value.(bool); isBool {
		return evaluateBool(b, cond)
	}

	return evaluateString(value.(string), cond)
}

// evaluateBool handles the boolean-valued fields. Only equality-style
// operators make sense here; substring and regex operators are a type
// mismatch and never match.
func evaluateBool(value bool, cond models.RuleCondition) Outcome {
	var target bool

	switch v := cond.Value.(type) {
	case bool:
		target = v
	case string:
		parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return OutcomeTypeMismatch
		}

		target = parsed
	default:
		return OutcomeTypeMismatch
	}

	switch cond.Operator {
	case models.RuleOperatorIs, models.RuleOperatorEquals:
		return outcomeOf(value == target)
	case models.RuleOperatorIsNot:
		return outcomeOf(value != target)
	default:
		return OutcomeTypeMismatch
	}
}

func evaluateString(value string, cond models.RuleCondition) Outcome {
	field := strings.ToLower(value)
	target := strings.ToLower(stringify(cond.Value))

	switch cond.Operator {
	case models.RuleOperatorContains:
		return outcomeOf(strings.Contains(field, target))
	case models.RuleOperatorStartsWith:
		return outcomeOf(strings.HasPrefix(field, target))
	case models.RuleOperatorEndsWith:
		return outcomeOf(strings.HasSuffix(field, target))
	case models.RuleOperatorEquals, models.RuleOperatorIs:
		return outcomeOf(field == target)
	case models.RuleOperatorIsNot:
		return outcomeOf(field != target)
	case models.RuleOperatorRegex:
		re, err := regexp.Compile("(?i)" + stringify(cond.Value))
		if err != nil {
			return OutcomeNoMatch
		}

		return outcomeOf(re.MatchString(value))
	default:
		return OutcomeNoMatch
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
		return ""
	}
}

func outcomeOf(matched bool) Outcome {
	if matched {
		return OutcomeMatched
	}

	return OutcomeNoMatch
}

// EvaluateGroup combines the group's conditions with its logic. An empty
// group never matches, so a rule without conditions cannot become match-all.
func EvaluateGroup(email *models.Email, group models.ConditionGroup) bool {
	if len(group.Rules) == 0 {
		return false
	}

	if group.Logic == models.GroupLogicOr {
		for _, cond := range group.Rules {
			if EvaluateCondition(email, cond).Matched() {
				return true
			}
		}

		return false
	}

	for _, cond := range group.Rules {
		if !EvaluateCondition(email, cond).Matched() {
			return false
		}
	}

	return true
}
