// Package template renders caller-derived placeholders into message templates.
package template

import (
	"math"
	"strconv"
	"strings"

	"github.com/tdaniel1925/clientflow/pkg/models"
)

// Placeholders recognized in email/SMS templates and task fields. Unknown
// tokens are left intact so a misconfigured template is visible in the output
// instead of silently dropped.
func placeholderValues(record *models.CallRecord) map[string]string {
	return map[string]string{
		"caller_name":      record.CallerName,
		"caller_phone":     record.CallerPhone,
		"call_topic":       record.Topic,
		"call_summary":     record.Summary,
		"call_rating":      strconv.Itoa(record.QualityRating),
		"call_sentiment":   record.Sentiment,
		"follow_up_reason": record.FollowUpReason,
		"call_duration":    strconv.Itoa(durationMinutes(record.DurationSeconds)),
	}
}

// durationMinutes converts seconds to whole minutes, rounded.
func durationMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60.0))
}

// Interpolate replaces every {{placeholder}} token in s with the corresponding
// value from the call record.
func Interpolate(s string, record *models.CallRecord) string {
	if s == "" || record == nil {
		return s
	}

	pairs := make([]string, 0, 16)
	for name, value := range placeholderValues(record) {
		pairs = append(pairs, "{{"+name+"}}", value)
	}

	return strings.NewReplacer(pairs...).Replace(s)
}
