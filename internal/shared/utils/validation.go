package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/antrian-kiosk/antrian/internal/shared/errors"
)

var (
	validate         *validator.Validate
	settingsValidate *validator.Validate
)

func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	// Settings structs report their dotted config key.
	settingsValidate = validator.New()
	settingsValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("setting"); name != "" {
			return name
		}
		return fld.Name
	})
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

// MissingSettings validates a settings struct whose fields carry
// `setting:"dotted.key" validate:"required"` tags and returns the keys that
// failed, in declaration order.
func MissingSettings(s interface{}) []string {
	err := settingsValidate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	missing := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		missing = append(missing, fieldError.Field())
	}
	return missing
}

func getFieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation for '%s'", fe.Field(), fe.Tag())
	}
}
