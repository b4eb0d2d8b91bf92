package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/cache"
	apperrors "github.com/speaklexi/lesson-service/internal/errors"
	"github.com/speaklexi/lesson-service/internal/events"
	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/repositories"
	"github.com/speaklexi/lesson-service/internal/validator"
)

const lessonCacheTTL = 10 * time.Minute

// ===== REQUEST / RESPONSE DTOS =====

type CreateLessonRequest struct {
	Titulo             string                      `json:"titulo" validate:"required,min=1,max=200"`
	Descripcion        string                      `json:"descripcion" validate:"required,max=2000"`
	Contenido          string                      `json:"contenido"`
	Nivel              string                      `json:"nivel" validate:"required,cefr_level"`
	Idioma             string                      `json:"idioma" validate:"required"`
	DuracionMinutos    int                         `json:"duracion_minutos" validate:"omitempty,min=1,max=300"`
	Orden              int                         `json:"orden"`
	Estado             models.LessonStatus         `json:"estado" validate:"omitempty,lesson_status"`
	Actividades        []adapter.CanonicalActivity `json:"actividades"`
	ArchivosMultimedia []models.MediaRef           `json:"archivos_multimedia"`
}

type UpdateLessonRequest = CreateLessonRequest

type LessonResponse struct {
	*models.Lesson
	ActivityCount int `json:"activity_count"`
}

type LessonListResponse struct {
	Lessons []*models.Lesson `json:"lessons"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// LessonService is the serving-side counterpart of the editor: it persists
// lessons whose activities already travel in canonical wire shape.
type LessonService interface {
	Create(ctx context.Context, req *CreateLessonRequest, creatorID uint) (*LessonResponse, error)
	GetByID(ctx context.Context, id uint) (*LessonResponse, error)
	Update(ctx context.Context, id uint, req *UpdateLessonRequest, userID uint) (*LessonResponse, error)
	Publish(ctx context.Context, id uint, userID uint) (*LessonResponse, error)
	Archive(ctx context.Context, id uint, userID uint) error
	Delete(ctx context.Context, id uint, userID uint) error
	List(ctx context.Context, filters repositories.LessonFilters) (*LessonListResponse, error)
}

type lessonService struct {
	repo      repositories.LessonRepository
	adapter   *adapter.Adapter
	validator *validator.Validator
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewLessonService(repo repositories.LessonRepository, ad *adapter.Adapter, v *validator.Validator, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger) LessonService {
	return &lessonService{
		repo:      repo,
		adapter:   ad,
		validator: v,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *lessonService) Create(ctx context.Context, req *CreateLessonRequest, creatorID uint) (*LessonResponse, error) {
	s.logger.Info("Creating lesson", "creator_id", creatorID, "titulo", req.Titulo)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	estado := req.Estado
	if estado == "" {
		estado = models.LessonStatusDraft
	}

	canon, err := s.normalizeActivities(req, estado == models.LessonStatusActive)
	if err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		Titulo:          req.Titulo,
		Descripcion:     req.Descripcion,
		Contenido:       req.Contenido,
		Nivel:           req.Nivel,
		Idioma:          req.Idioma,
		DuracionMinutos: defaultDuration(req.DuracionMinutos),
		Orden:           req.Orden,
		Estado:          estado,
		MediaRefs:       mustMediaJSON(req.ArchivosMultimedia),
		CreadoPor:       creatorID,
	}

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	rows := activityRows(canon)
	if err := s.repo.ReplaceActivities(ctx, lesson.ID, rows); err != nil {
		return nil, fmt.Errorf("failed to store activities: %w", err)
	}
	lesson.Activities = rows

	s.invalidateCache(ctx, lesson.ID)
	s.publishEvent(ctx, events.NewLessonCreatedEvent(lesson.ID, lesson.Titulo, lesson.Nivel, lesson.Idioma, creatorID, len(rows)))

	return &LessonResponse{Lesson: lesson, ActivityCount: len(rows)}, nil
}

func (s *lessonService) GetByID(ctx context.Context, id uint) (*LessonResponse, error) {
	key := lessonCacheKey(id)

	var cached models.Lesson
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &LessonResponse{Lesson: &cached, ActivityCount: len(cached.Activities)}, nil
	}

	lesson, err := s.repo.GetByIDWithActivities(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	if err := s.cache.Set(ctx, key, lesson, lessonCacheTTL); err != nil {
		s.logger.Warn("failed to cache lesson", "lesson_id", id, "error", err)
	}

	return &LessonResponse{Lesson: lesson, ActivityCount: len(lesson.Activities)}, nil
}

func (s *lessonService) Update(ctx context.Context, id uint, req *UpdateLessonRequest, userID uint) (*LessonResponse, error) {
	s.logger.Info("Updating lesson", "lesson_id", id, "user_id", userID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	lesson, err := s.ownedLesson(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	estado := req.Estado
	if estado == "" {
		estado = lesson.Estado
	}

	canon, err := s.normalizeActivities(req, estado == models.LessonStatusActive)
	if err != nil {
		return nil, err
	}

	lesson.Titulo = req.Titulo
	lesson.Descripcion = req.Descripcion
	lesson.Contenido = req.Contenido
	lesson.Nivel = req.Nivel
	lesson.Idioma = req.Idioma
	lesson.DuracionMinutos = defaultDuration(req.DuracionMinutos)
	lesson.Orden = req.Orden
	lesson.Estado = estado
	lesson.MediaRefs = mustMediaJSON(req.ArchivosMultimedia)

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	rows := activityRows(canon)
	if err := s.repo.ReplaceActivities(ctx, lesson.ID, rows); err != nil {
		return nil, fmt.Errorf("failed to store activities: %w", err)
	}
	lesson.Activities = rows

	s.invalidateCache(ctx, id)
	s.publishEvent(ctx, events.NewLessonUpdatedEvent(id, lesson.Titulo, len(rows)))

	return &LessonResponse{Lesson: lesson, ActivityCount: len(rows)}, nil
}

// Publish validates the stored lesson against the full publish rules and,
// when it passes, flips it to activa.
func (s *lessonService) Publish(ctx context.Context, id uint, userID uint) (*LessonResponse, error) {
	s.logger.Info("Publishing lesson", "lesson_id", id, "user_id", userID)

	if _, err := s.ownedLesson(ctx, id, userID, "publish"); err != nil {
		return nil, err
	}

	lesson, err := s.repo.GetByIDWithActivities(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load lesson: %w", err)
	}

	draft := s.draftFromLesson(lesson)
	if msgs := s.validator.Activity().ValidateLesson(draft, true); len(msgs) > 0 {
		return nil, apperrors.FromStrings(msgs)
	}

	if err := s.repo.UpdateStatus(ctx, id, models.LessonStatusActive); err != nil {
		return nil, fmt.Errorf("failed to publish lesson: %w", err)
	}
	lesson.Estado = models.LessonStatusActive

	s.invalidateCache(ctx, id)
	s.publishEvent(ctx, events.NewLessonPublishedEvent(id, lesson.Titulo, lesson.Nivel, lesson.Idioma, lesson.CreadoPor, len(lesson.Activities)))

	return &LessonResponse{Lesson: lesson, ActivityCount: len(lesson.Activities)}, nil
}

func (s *lessonService) Archive(ctx context.Context, id uint, userID uint) error {
	s.logger.Info("Archiving lesson", "lesson_id", id, "user_id", userID)

	lesson, err := s.ownedLesson(ctx, id, userID, "archive")
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, models.LessonStatusInactive); err != nil {
		return fmt.Errorf("failed to archive lesson: %w", err)
	}

	s.invalidateCache(ctx, id)
	s.publishEvent(ctx, events.NewLessonArchivedEvent(id, lesson.Titulo))
	return nil
}

func (s *lessonService) Delete(ctx context.Context, id uint, userID uint) error {
	s.logger.Info("Deleting lesson", "lesson_id", id, "user_id", userID)

	if _, err := s.ownedLesson(ctx, id, userID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *lessonService) List(ctx context.Context, filters repositories.LessonFilters) (*LessonListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	lessons, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	return &LessonListResponse{
		Lessons: lessons,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// ===== HELPERS =====

// normalizeActivities runs incoming activity payloads through the adapter
// round trip. Legacy field names and malformed payloads come out canonical;
// the structural validator then decides whether the result can be saved.
func (s *lessonService) normalizeActivities(req *CreateLessonRequest, publish bool) ([]adapter.CanonicalActivity, error) {
	acts := s.adapter.FromCanonicalAll(req.Actividades)

	draft := &models.LessonDraft{
		Title:           req.Titulo,
		Description:     req.Descripcion,
		Content:         req.Contenido,
		Level:           req.Nivel,
		Language:        req.Idioma,
		DurationMinutes: req.DuracionMinutos,
		Activities:      acts,
		Media:           req.ArchivosMultimedia,
	}

	if msgs := s.validator.Activity().ValidateLesson(draft, publish); len(msgs) > 0 {
		return nil, apperrors.FromStrings(msgs)
	}

	return s.adapter.ToCanonicalAll(acts), nil
}

// draftFromLesson rebuilds the in-memory draft from stored rows so the full
// publish validation can run against it.
func (s *lessonService) draftFromLesson(lesson *models.Lesson) *models.LessonDraft {
	canon := make([]adapter.CanonicalActivity, 0, len(lesson.Activities))
	for _, row := range lesson.Activities {
		canon = append(canon, adapter.CanonicalActivity{
			ID:                row.ActivityID,
			Tipo:              row.Tipo,
			Titulo:            row.Titulo,
			Descripcion:       row.Descripcion,
			Contenido:         json.RawMessage(row.Contenido),
			RespuestaCorrecta: json.RawMessage(row.RespuestaCorrecta),
			PuntosMaximos:     row.PuntosMaximos,
			Orden:             row.Orden,
			Estado:            row.Estado,
			Config:            json.RawMessage(row.Config),
		})
	}

	var media []models.MediaRef
	if len(lesson.MediaRefs) > 0 {
		if err := json.Unmarshal(lesson.MediaRefs, &media); err != nil {
			s.logger.Warn("malformed media refs on lesson", "lesson_id", lesson.ID, "error", err)
		}
	}

	return &models.LessonDraft{
		Title:           lesson.Titulo,
		Description:     lesson.Descripcion,
		Content:         lesson.Contenido,
		Level:           lesson.Nivel,
		Language:        lesson.Idioma,
		DurationMinutes: lesson.DuracionMinutos,
		Activities:      s.adapter.FromCanonicalAll(canon),
		Media:           media,
	}
}

func (s *lessonService) ownedLesson(ctx context.Context, id, userID uint, action string) (*models.Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to load lesson: %w", err)
	}
	if lesson.CreadoPor != userID {
		return nil, NewPermissionError(userID, id, "lesson", action, "not the lesson creator")
	}
	return lesson, nil
}

func (s *lessonService) invalidateCache(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, lessonCacheKey(id)); err != nil {
		s.logger.Warn("failed to invalidate lesson cache", "lesson_id", id, "error", err)
	}
	if err := s.cache.DeletePattern(ctx, "lessons:list:*"); err != nil {
		s.logger.Warn("failed to invalidate lesson list cache", "error", err)
	}
}

func (s *lessonService) publishEvent(ctx context.Context, event *events.LessonEvent) {
	if err := s.publisher.PublishLessonEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish lesson event", "event_type", event.Type, "error", err)
	}
}

func lessonCacheKey(id uint) string {
	return fmt.Sprintf("lessons:id:%d", id)
}

func activityRows(canon []adapter.CanonicalActivity) []models.LessonActivity {
	rows := make([]models.LessonActivity, 0, len(canon))
	for _, c := range canon {
		rows = append(rows, models.LessonActivity{
			ActivityID:        c.ID,
			Tipo:              c.Tipo,
			Titulo:            c.Titulo,
			Descripcion:       c.Descripcion,
			Contenido:         datatypes.JSON(c.Contenido),
			RespuestaCorrecta: datatypes.JSON(c.RespuestaCorrecta),
			PuntosMaximos:     c.PuntosMaximos,
			Orden:             c.Orden,
			Estado:            c.Estado,
			Config:            datatypes.JSON(c.Config),
		})
	}
	return rows
}

func defaultDuration(minutes int) int {
	if minutes <= 0 {
		return 30
	}
	return minutes
}

func mustMediaJSON(media []models.MediaRef) datatypes.JSON {
	if len(media) == 0 {
		return nil
	}
	data, err := json.Marshal(media)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
