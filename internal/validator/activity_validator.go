package validator

import (
	"fmt"
	"strings"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/models"
)

// ActivityValidator performs the structural checks the struct tags cannot
// express: per-type content/answer shape rules and whole-lesson rules. It is
// used before save and defensively when stored activities are rehydrated.
type ActivityValidator struct {
	registry *activities.Registry
}

func NewActivityValidator(registry *activities.Registry) *ActivityValidator {
	return &ActivityValidator{registry: registry}
}

// ValidateActivity returns one human-readable error per violated invariant.
// An empty slice means the activity is structurally valid for its type.
func (v *ActivityValidator) ValidateActivity(a *models.Activity) []string {
	mgr, ok := v.registry.ManagerFor(a)
	if !ok {
		return []string{fmt.Sprintf("unknown activity type %q", a.Type)}
	}
	return mgr.Validate(a)
}

// ValidateLesson checks a lesson draft. Draft saves run the partial rules
// only; publish runs everything, including the media requirement and the
// minimum content length.
func (v *ActivityValidator) ValidateLesson(lesson *models.LessonDraft, publish bool) []string {
	var errs []string

	if strings.TrimSpace(lesson.Title) == "" {
		errs = append(errs, "lesson title is required")
	}
	if strings.TrimSpace(lesson.Description) == "" {
		errs = append(errs, "lesson description is required")
	}
	if strings.TrimSpace(lesson.Level) == "" {
		errs = append(errs, "CEFR level is required")
	}
	if strings.TrimSpace(lesson.Language) == "" {
		errs = append(errs, "teaching language is required")
	}

	if len(lesson.Activities) == 0 {
		errs = append(errs, "at least one activity is required")
	}
	for i, a := range lesson.Activities {
		for _, msg := range v.ValidateActivity(a) {
			errs = append(errs, fmt.Sprintf("activity %d: %s", i+1, msg))
		}
	}

	if publish {
		if len(strings.TrimSpace(lesson.Content)) < 50 {
			errs = append(errs, "lesson content must be at least 50 characters")
		}
		if len(lesson.Media) == 0 {
			errs = append(errs, "at least one media file is required")
		}
	}

	return errs
}
