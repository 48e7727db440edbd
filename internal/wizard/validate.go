package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/stwalsh4118/agrireg/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports the required fields of a step that are missing or
// out of range. Field names use their JSON form.
type ValidationError struct {
	Step   Step
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field())
	}
	return fmt.Sprintf("step %s is incomplete: %s", e.Step, strings.Join(names, ", "))
}

// Unwrap exposes the underlying validator errors.
func (e *ValidationError) Unwrap() error {
	return e.Fields
}

// ValidateStep checks the required fields of one step of the draft.
func ValidateStep(step Step, draft models.FarmerProfileDraft) error {
	var section interface{}
	switch step {
	case StepPersonalInfo:
		section = draft.PersonalInfo
	case StepLandInfo:
		section = draft.LandInfo
	case StepSoilProperties:
		section = draft.SoilProperties
	case StepEnvironmental:
		section = draft.EnvironmentalConditions
	default:
		return fmt.Errorf("unknown step %d", step)
	}

	err := validate.Struct(section)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return &ValidationError{Step: step, Fields: fields}
	}
	return err
}

// ValidateDraft checks every step in order and returns the first failure.
func ValidateDraft(draft models.FarmerProfileDraft) error {
	for step := StepPersonalInfo; step <= StepEnvironmental; step++ {
		if err := ValidateStep(step, draft); err != nil {
			return err
		}
	}
	return nil
}
