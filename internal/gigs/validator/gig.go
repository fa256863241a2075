package validator

import (
	"errors"
	"fmt"
	"strings"

	"gigstage/pkg/logger"
	"gigstage/pkg/model"
	"gigstage/pkg/sanitizer"

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

type GigValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewGigValidator(log *logger.Logger) *GigValidator {
	v := validator.New()

	log.Info("Gig validator initialized successfully")

	return &GigValidator{
		validate: v,
		logger:   log,
	}
}

func (v *GigValidator) Validate(gig *model.Gig) error {
	if err := v.validate.Struct(gig); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if gig.IsClientBand {
		return v.validateBandShape(gig)
	}
	return v.validateRegularShape(gig)
}

func (v *GigValidator) ValidateUpdate(update *model.GigUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *GigValidator) validateBandShape(gig *model.Gig) error {
	if len(gig.BandCategory) == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "BandCategory",
				Message: "band gigs must declare at least one role",
			},
		}
	}

	seen := map[string]bool{}
	for i, role := range gig.BandCategory {
		normalized := sanitizer.NormalizeRole(role.Role)
		if normalized == "" {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("BandCategory[%d].Role", i),
					Message: "role name cannot be empty",
				},
			}
		}
		if seen[normalized] {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("BandCategory[%d].Role", i),
					Message: fmt.Sprintf("duplicate role %q", normalized),
				},
			}
		}
		seen[normalized] = true

		if role.FilledSlots > role.MaxSlots {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("BandCategory[%d].FilledSlots", i),
					Message: fmt.Sprintf("filled slots (%d) exceeds max slots (%d)", role.FilledSlots, role.MaxSlots),
				},
			}
		}
		if len(role.BookedUsers) != role.FilledSlots {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("BandCategory[%d].BookedUsers", i),
					Message: fmt.Sprintf("booked users count (%d) must equal filled slots (%d)", len(role.BookedUsers), role.FilledSlots),
				},
			}
		}
	}

	if gig.MaxSlots != 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "MaxSlots",
				Message: "band gigs use per-role slots, not gig-level max_slots",
			},
		}
	}

	return nil
}

func (v *GigValidator) validateRegularShape(gig *model.Gig) error {
	if len(gig.BandCategory) > 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "BandCategory",
				Message: "regular gigs cannot declare band roles",
			},
		}
	}
	if gig.BookCount > gig.MaxSlots {
		return ValidationErrors{
			ValidationError{
				Field:   "BookCount",
				Message: fmt.Sprintf("book count (%d) exceeds max slots (%d)", gig.BookCount, gig.MaxSlots),
			},
		}
	}
	return nil
}

func (v *GigValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
