package httpx

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidatorFields converts go-playground validation errors into the
// field error list the dashboard renders inline. The second return is
// false when err is not a validation error.
func ValidatorFields(err error) ([]FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   lowerFirst(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return fields, true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short (minimum " + fe.Param() + ")"
	case "max":
		return "is too long (maximum " + fe.Param() + ")"
	case "gt", "gte":
		return "must be at least " + fe.Param()
	case "lt", "lte":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "hexcolor":
		return "must be a hex color code"
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
