package activities

import (
	"strings"

	"github.com/speaklexi/lesson-service/internal/models"
)

// Manager is the behaviour every activity type provides: fresh defaults and
// structural validation. Mutators are type-specific and live as concrete
// methods on each manager. Managers never render and never trigger re-render;
// their side effects are confined to the activity instance they are handed.
type Manager interface {
	Type() models.ActivityType

	// CreateDefault returns a fresh activity with type-correct default
	// content and answer. ID and Order are left to the caller.
	CreateDefault() *models.Activity

	// Validate reports structural violations as human-readable strings.
	// An empty slice means the activity satisfies its type invariant.
	Validate(a *models.Activity) []string
}

const (
	defaultPoints          = 10
	defaultAllowedAttempts = 1
)

func defaultConfig() models.ActivityConfig {
	return models.ActivityConfig{
		TimeLimitSeconds: nil,
		AllowedAttempts:  defaultAllowedAttempts,
		ShowExplanation:  true,
	}
}

func validateCommon(a *models.Activity) []string {
	var errs []string
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, "title is required")
	}
	if a.Points < 1 || a.Points > 100 {
		errs = append(errs, "points must be between 1 and 100")
	}
	if a.Config.AllowedAttempts < 0 {
		errs = append(errs, "allowed attempts cannot be negative")
	}
	return errs
}
