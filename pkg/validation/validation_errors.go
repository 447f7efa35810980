package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels shown on the site
var FieldLabels = map[string]string{
	// Support form fields
	"Name":    "姓名",
	"Email":   "邮箱",
	"Subject": "问题类型",
	"Message": "详细描述",

	// Tracking event fields
	"Category": "事件类别",
	"Action":   "事件动作",
	"Label":    "事件标签",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
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

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s: 必填", label)

	case "max":
		return fmt.Sprintf("%s: 最多%s个字符", label, param)

	case "min", "min_trimmed":
		return fmt.Sprintf("%s: 至少%s个字符", label, param)

	case "support_email", "email":
		return fmt.Sprintf("%s: 格式无效", label)

	case "support_subject", "oneof":
		return fmt.Sprintf("%s: 请选择有效的选项", label)

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s: 校验失败 (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
