package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// MsgInvalidInput prefixes every request validation failure.
const MsgInvalidInput = "Invalid input data."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks req against its validate tags. Failures become a ValidationFailed error
// with one detail per offending field, keyed by its JSON name.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(MsgInvalidInput, nil)
	}

	details := make(map[string]any, len(fieldErrs))
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fieldMessage(fe)
		details[fe.Field()] = msg
		msgs = append(msgs, msg)
	}
	return apperrors.NewValidationError(MsgInvalidInput+" "+strings.Join(msgs, " "), details)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please provide %s.", field)
	case "email":
		return "Please provide a valid email."
	case "eqfield":
		return "Passwords are not the same!"
	case "oneof":
		return fmt.Sprintf("%s is either: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at most %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be above %s.", field, fe.Param())
	default:
		return fmt.Sprintf("Invalid %s.", field)
	}
}
