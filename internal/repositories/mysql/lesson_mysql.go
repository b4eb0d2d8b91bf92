package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/repositories"
)

type LessonMySQL struct {
	db *gorm.DB
}

func NewLessonMySQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonMySQL{db: db}
}

// Create creates a lesson together with its activity rows.
func (l *LessonMySQL) Create(ctx context.Context, lesson *models.Lesson) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lesson.Estado == "" {
			lesson.Estado = models.LessonStatusDraft
		}
		if err := tx.Create(lesson).Error; err != nil {
			return fmt.Errorf("failed to create lesson: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a lesson by ID without its activities.
func (l *LessonMySQL) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := l.db.WithContext(ctx).First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetByIDWithActivities retrieves a lesson with its activities in display order.
func (l *LessonMySQL) GetByIDWithActivities(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := l.db.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden ASC")
		}).
		First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Update updates the lesson row. Activities are managed through
// ReplaceActivities so partial activity writes never happen.
func (l *LessonMySQL) Update(ctx context.Context, lesson *models.Lesson) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Lesson
		if err := tx.First(&current, lesson.ID).Error; err != nil {
			return fmt.Errorf("lesson not found: %w", err)
		}
		if err := tx.Omit("Activities").Save(lesson).Error; err != nil {
			return fmt.Errorf("failed to update lesson: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a lesson.
func (l *LessonMySQL) Delete(ctx context.Context, id uint) error {
	result := l.db.WithContext(ctx).Delete(&models.Lesson{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns lessons matching the filters plus the unpaginated total.
func (l *LessonMySQL) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	query := l.db.WithContext(ctx).Model(&models.Lesson{})
	query = applyLessonFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	query = applyLessonSorting(query, filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var lessons []*models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, total, nil
}

// GetByCreator lists lessons created by a given user.
func (l *LessonMySQL) GetByCreator(ctx context.Context, creatorID uint, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	filters.CreadoPor = &creatorID
	return l.List(ctx, filters)
}

// UpdateStatus changes a lesson's estado.
func (l *LessonMySQL) UpdateStatus(ctx context.Context, id uint, status models.LessonStatus) error {
	result := l.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", id).
		Update("estado", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update lesson status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceActivities swaps a lesson's activity rows for the given set in one
// transaction, so readers never see a half-written lesson.
func (l *LessonMySQL) ReplaceActivities(ctx context.Context, lessonID uint, acts []models.LessonActivity) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.First(&lesson, lessonID).Error; err != nil {
			return fmt.Errorf("lesson not found: %w", err)
		}

		if err := tx.Where("lesson_id = ?", lessonID).
			Delete(&models.LessonActivity{}).Error; err != nil {
			return fmt.Errorf("failed to clear activities: %w", err)
		}

		for i := range acts {
			acts[i].ID = 0
			acts[i].LessonID = lessonID
		}
		if len(acts) > 0 {
			if err := tx.Create(&acts).Error; err != nil {
				return fmt.Errorf("failed to insert activities: %w", err)
			}
		}
		return nil
	})
}

// IsOwner reports whether the lesson was created by the given user.
func (l *LessonMySQL) IsOwner(ctx context.Context, lessonID, userID uint) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ? AND creado_por = ?", lessonID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyLessonFilters(query *gorm.DB, filters repositories.LessonFilters) *gorm.DB {
	if filters.Nivel != nil {
		query = query.Where("nivel = ?", *filters.Nivel)
	}
	if filters.Idioma != nil {
		query = query.Where("idioma = ?", *filters.Idioma)
	}
	if filters.Estado != nil {
		query = query.Where("estado = ?", *filters.Estado)
	}
	if filters.CreadoPor != nil {
		query = query.Where("creado_por = ?", *filters.CreadoPor)
	}
	return query
}

func applyLessonSorting(query *gorm.DB, filters repositories.LessonFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "titulo", "orden", "created_at", "updated_at", "nivel":
	default:
		sortBy = "created_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", sortBy, order))
}
