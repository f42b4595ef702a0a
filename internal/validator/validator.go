// Package validator runs the declarative field rules on domain entities and turns
// failures into a domainerrors.ValidationError listing every violated field.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
)

// Validator wraps go-playground/validator with the rules used by the entities.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with json field names and the notblank rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	// notblank rejects empty and whitespace-only strings.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(errors.Wrap(err, "register notblank validation"))
	}

	return &Validator{validate: v}
}

// Struct validates any tagged struct.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Wrap(err, "failed to validate")
	}

	violations := make([]domainerrors.FieldViolation, 0, len(validationErrors))
	for _, fe := range validationErrors {
		violations = append(violations, domainerrors.FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}

	return domainerrors.NewValidationError(violations...)
}

// ValidateUser checks a user before it is saved or updated.
func (v *Validator) ValidateUser(user *entity.User) error {
	if user == nil {
		return domainerrors.NewValidationError(domainerrors.FieldViolation{
			Field:   "user",
			Rule:    "required",
			Message: "is required",
		})
	}

	return v.Struct(user)
}

// ValidateSex checks a sex used as a query filter, where absence is not allowed.
func (v *Validator) ValidateSex(sex entity.Sex) error {
	err := v.validate.Var(sex.String(), "required,oneof=FEMALE MALE")
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errors.Wrap(err, "failed to validate")
	}
	fe := validationErrors[0]

	return domainerrors.NewValidationError(domainerrors.FieldViolation{
		Field:   "sex",
		Rule:    fe.Tag(),
		Message: describe(fe),
	})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}

		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}

		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %s rule", fe.Tag())
	}
}
