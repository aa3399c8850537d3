package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Struct validates s and converts failures into a validation error whose
// details map each offending field to a readable message.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error())
	}

	fields := make(map[string]interface{}, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := FormatFieldError(fe)
		fields[fe.Field()] = msg
		messages = append(messages, msg)
	}

	return apperrors.NewCustomError(apperrors.ErrValidationFailed, strings.Join(messages, "; ")).
		WithDetails(fields)
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "gte":
		return e.Field() + " must be " + e.Param() + " or later"
	case "lte":
		return e.Field() + " must be " + e.Param() + " or earlier"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "dive":
		return e.Field() + " contains an invalid entry"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
