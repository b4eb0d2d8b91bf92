package validator

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/models"
)

// Validator combines struct-tag validation with the per-type structural
// validation of activities and lessons.
type Validator struct {
	structValidator   *validator.Validate
	activityValidator *ActivityValidator
}

// New creates a validator backed by the given activity registry.
func New(registry *activities.Registry) *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator, registry)

	return &Validator{
		structValidator:   structValidator,
		activityValidator: NewActivityValidator(registry),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Activity returns the structural activity/lesson validator.
func (v *Validator) Activity() *ActivityValidator {
	return v.activityValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate, registry *activities.Registry) {
	validate.RegisterValidation("activity_type", validateActivityType(registry))
	validate.RegisterValidation("cefr_level", validateCEFRLevel)
	validate.RegisterValidation("lesson_status", validateLessonStatus)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions

func validateActivityType(registry *activities.Registry) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, ok := registry.Resolve(fl.Field().String())
		return ok
	}
}

func validateCEFRLevel(fl validator.FieldLevel) bool {
	return slices.Contains(models.CEFRLevels, fl.Field().String())
}

func validateLessonStatus(fl validator.FieldLevel) bool {
	switch models.LessonStatus(fl.Field().String()) {
	case models.LessonStatusDraft, models.LessonStatusActive, models.LessonStatusInactive:
		return true
	}
	return false
}
