// Package validation turns validator tag failures into messages a frontend
// can show directly, instead of leaking Go struct field names.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the names clients know them by.
var FieldLabels = map[string]string{
	"CandidateID":    "candidate_id",
	"SearchQuery":    "search_query",
	"FeedbackType":   "feedback_type",
	"ResultPosition": "result_position",
	"RelevanceScore": "relevance_score",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly
// messages, one per failed field.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must not exceed %s characters", label, e.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", label, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Split(e.Param(), " "), ", "))
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}
