package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/speaklexi/lesson-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type LessonFilters struct {
	Nivel     *string              `json:"nivel"`
	Idioma    *string              `json:"idioma"`
	Estado    *models.LessonStatus `json:"estado"`
	CreadoPor *uint                `json:"creado_por"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "titulo", "orden"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

// LessonRepository covers persistence for lessons and their activities.
type LessonRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetByIDWithActivities(ctx context.Context, id uint) (*models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters LessonFilters) ([]*models.Lesson, int64, error)
	GetByCreator(ctx context.Context, creatorID uint, filters LessonFilters) ([]*models.Lesson, int64, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.LessonStatus) error

	// Activity management
	ReplaceActivities(ctx context.Context, lessonID uint, acts []models.LessonActivity) error

	// Validation helpers
	IsOwner(ctx context.Context, lessonID, userID uint) (bool, error)
}

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
