// Package validator adapts go-playground/validator to echo and maps field
// failures onto the domain validation errors.
package validator

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	domainerrors "devconnect/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

// Validate checks the struct tags of i.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}

	return translate(fieldErrs)
}

// translate picks the error to report. Missing fields win over length checks,
// which win over the role check, matching the order clients have always seen.
func translate(fieldErrs validator.ValidationErrors) error {
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return errors.WithStack(domainerrors.ErrMissingFields)
		}
	}

	for _, fe := range fieldErrs {
		if fe.Field() != "password" {
			continue
		}
		switch fe.Tag() {
		case "min":
			return errors.WithStack(domainerrors.ErrPasswordTooShort)
		case "max":
			return errors.WithStack(domainerrors.ErrPasswordTooLong)
		}
	}

	for _, fe := range fieldErrs {
		if fe.Field() == "userType" && fe.Tag() == "oneof" {
			return errors.WithStack(domainerrors.ErrInvalidUserType)
		}
	}

	fe := fieldErrs[0]

	return domainerrors.NewBaseError(http.StatusBadRequest, domainerrors.ErrValidationFailed.ErrorCode(), fieldMessage(fe), fe.Namespace())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "dive":
		return fmt.Sprintf("%s contains an invalid entry", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
