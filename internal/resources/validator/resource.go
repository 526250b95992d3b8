package validator

import (
	"errors"
	"fmt"
	"strings"

	"hopper/pkg/logger"
	"hopper/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// ResourceValidator enforces the per-type pricing rules the struct tags
// cannot express: flex desks need a capacity and a daily rate, meeting rooms
// need an hourly rate.
type ResourceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResourceValidator(log *logger.Logger) *ResourceValidator {
	return &ResourceValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ResourceValidator) Validate(resource *model.Resource) error {
	if err := v.validate.Struct(resource); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	switch resource.Type {
	case model.ResourceTypeFlexDesk:
		if resource.Capacity == nil || *resource.Capacity < 1 {
			return ValidationErrors{
				ValidationError{Field: "Capacity", Message: "flex desks require a capacity of at least 1"},
			}
		}
		if resource.DailyCreditRate < 1 {
			return ValidationErrors{
				ValidationError{Field: "DailyCreditRate", Message: "flex desks require a daily credit rate of at least 1"},
			}
		}
	case model.ResourceTypeMeetingRoom:
		if resource.HourlyCreditRate < 1 {
			return ValidationErrors{
				ValidationError{Field: "HourlyCreditRate", Message: "meeting rooms require an hourly credit rate of at least 1"},
			}
		}
	}

	return nil
}

func (v *ResourceValidator) ValidateUpdate(update *model.ResourceUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ResourceValidator) ValidateSite(site *model.Site) error {
	if err := v.validate.Struct(site); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ResourceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA time zone", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
