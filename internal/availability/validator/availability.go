package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"

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

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("date_ymd", validateDateYMD); err != nil {
		log.Fatal("Failed to register 'date_ymd' validator", "error", err)
	}

	log.Info("Availability validator initialized successfully")

	return &AvailabilityValidator{
		validate: v,
		logger:   log,
	}
}

// validateClockTime accepts wall-clock strings in HH:MM or HH:MM:SS form.
func validateClockTime(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}

	if _, err := time.Parse("15:04:05", value); err == nil {
		return true
	}
	if _, err := time.Parse("15:04", value); err == nil {
		return true
	}
	return false
}

func validateDateYMD(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}

	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func (v *AvailabilityValidator) ValidateRule(rule *model.RecurringRule) error {
	if err := v.validate.Struct(rule); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return v.validateWindow(rule.StartTime, rule.EndTime)
}

func (v *AvailabilityValidator) ValidateOverride(override *model.AvailabilityOverride) error {
	if err := v.validate.Struct(override); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return v.validateWindow(override.StartTime, override.EndTime)
}

// validateWindow rejects degenerate windows where the end does not come
// after the start. Struct tags cannot express this cross-field rule for
// clock strings.
func (v *AvailabilityValidator) validateWindow(start, end string) error {
	startSec, err := ParseClockSeconds(start)
	if err != nil {
		return ValidationErrors{{Field: "StartTime", Message: err.Error()}}
	}
	endSec, err := ParseClockSeconds(end)
	if err != nil {
		return ValidationErrors{{Field: "EndTime", Message: err.Error()}}
	}
	if endSec <= startSec {
		return ValidationErrors{{
			Field:   "EndTime",
			Message: "end_time must be after start_time",
		}}
	}
	return nil
}

// ParseClockSeconds converts HH:MM or HH:MM:SS into seconds since midnight.
func ParseClockSeconds(value string) (int, error) {
	value = strings.TrimSpace(value)

	t, err := time.Parse("15:04:05", value)
	if err != nil {
		t, err = time.Parse("15:04", value)
		if err != nil {
			return 0, fmt.Errorf("time must be in HH:MM or HH:MM:SS 24-hour format, got: %s", value)
		}
	}

	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

func (v *AvailabilityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "clock_time":
			message = fmt.Sprintf("%s must be in HH:MM or HH:MM:SS 24-hour format", err.Field())
		case "date_ymd":
			message = fmt.Sprintf("%s must be in YYYY-MM-DD format", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
