package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/gateway"
	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/validator"
)

// Status tracks where a lesson sits in the editing lifecycle.
type Status string

const (
	// StatusEditing means the lesson has unsaved local changes.
	StatusEditing Status = "editing"
	// StatusDraft means the current state is persisted as borrador.
	StatusDraft Status = "draft"
	// StatusPublished means the lesson was published as activa.
	StatusPublished Status = "published"
)

var (
	// ErrSaveInFlight is returned by Publish while a draft save is running.
	// The caller should retry once the save settles.
	ErrSaveInFlight = errors.New("a save is in progress, try again")

	// ErrActivityNotFound is returned when an activity ID is not in the lesson.
	ErrActivityNotFound = errors.New("activity not found in lesson")

	// ErrUnknownActivityType is returned when a type name resolves to nothing.
	ErrUnknownActivityType = errors.New("unknown activity type")
)

// ValidationFailedError carries the messages that blocked a publish. The
// lesson stays editable; nothing is sent to the server.
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("lesson validation failed with %d errors", len(e.Errors))
}

// Gateway is the persistence surface the session saves through.
type Gateway interface {
	CreateLesson(ctx context.Context, payload *gateway.LessonPayload) (string, error)
	UpdateLesson(ctx context.Context, id string, payload *gateway.LessonPayload) error
}

// Session owns one lesson draft being edited. All mutations go through the
// session so ordering and save coalescing stay consistent. Safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	lesson   *models.LessonDraft
	lessonID string
	status   Status

	registry  *activities.Registry
	adapter   *adapter.Adapter
	validator *validator.ActivityValidator
	gw        Gateway
	logger    *slog.Logger

	saving      bool
	pendingSave bool
	lastSaved   time.Time
}

// NewSession starts an editing session. lessonID is empty for a lesson that
// has never been saved.
func NewSession(lesson *models.LessonDraft, lessonID string, registry *activities.Registry, ad *adapter.Adapter, v *validator.ActivityValidator, gw Gateway, logger *slog.Logger) *Session {
	s := &Session{
		lesson:    lesson,
		lessonID:  lessonID,
		status:    StatusEditing,
		registry:  registry,
		adapter:   ad,
		validator: v,
		gw:        gw,
		logger:    logger,
	}
	s.renumber()
	return s
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LessonID returns the server-assigned lesson ID, empty until the first save.
func (s *Session) LessonID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lessonID
}

// Lesson returns a deep copy of the draft for inspection.
func (s *Session) Lesson() *models.LessonDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lesson.Clone()
}

// AddActivity appends a new activity of the given type, built from the
// type's defaults. Accepts canonical names and legacy aliases.
func (s *Session) AddActivity(typeName string) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.registry.Resolve(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActivityType, typeName)
	}

	a := def.Manager.CreateDefault()
	a.ID = uuid.NewString()
	s.lesson.Activities = append(s.lesson.Activities, a)
	s.renumber()
	s.status = StatusEditing

	return a.Clone(), nil
}

// RemoveActivity deletes the activity with the given ID and closes the
// ordering gap.
func (s *Session) RemoveActivity(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	s.lesson.Activities = append(s.lesson.Activities[:idx], s.lesson.Activities[idx+1:]...)
	s.renumber()
	s.status = StatusEditing
	return nil
}

// DuplicateActivity deep-copies an activity, gives the copy a fresh ID and
// inserts it right after the original.
func (s *Session) DuplicateActivity(id string) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	dup := s.lesson.Activities[idx].Clone()
	dup.ID = uuid.NewString()

	s.lesson.Activities = append(s.lesson.Activities, nil)
	copy(s.lesson.Activities[idx+2:], s.lesson.Activities[idx+1:])
	s.lesson.Activities[idx+1] = dup
	s.renumber()
	s.status = StatusEditing

	return dup.Clone(), nil
}

// MoveActivity moves the activity with the given ID to position pos
// (1-based) and renumbers the rest.
func (s *Session) MoveActivity(id string, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	if pos < 1 {
		pos = 1
	}
	if pos > len(s.lesson.Activities) {
		pos = len(s.lesson.Activities)
	}

	a := s.lesson.Activities[idx]
	rest := append(s.lesson.Activities[:idx], s.lesson.Activities[idx+1:]...)
	target := pos - 1
	rest = append(rest, nil)
	copy(rest[target+1:], rest[target:])
	rest[target] = a
	s.lesson.Activities = rest
	s.renumber()
	s.status = StatusEditing
	return nil
}

// UpdateActivity applies fn to the activity with the given ID while holding
// the session lock. fn must not retain the activity past the call.
func (s *Session) UpdateActivity(id string, fn func(*models.Activity) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	if err := fn(s.lesson.Activities[idx]); err != nil {
		return err
	}
	s.status = StatusEditing
	return nil
}

// SetMetadata updates the lesson's descriptive fields.
func (s *Session) SetMetadata(fn func(*models.LessonDraft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.lesson)
	s.status = StatusEditing
}

// SaveDraft persists the current state as borrador. Concurrent calls
// coalesce: if a save is already running the change is noted and the running
// save performs one more round trip once it finishes, so the final state
// always reaches the server exactly once per burst.
func (s *Session) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.pendingSave = true
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		s.pendingSave = false
		payload := s.snapshot(string(models.LessonStatusDraft))
		id := s.lessonID
		s.mu.Unlock()

		if err := s.persist(ctx, id, payload); err != nil {
			return err
		}

		s.mu.Lock()
		s.lastSaved = time.Now()
		if s.status == StatusEditing {
			s.status = StatusDraft
		}
		again := s.pendingSave
		s.mu.Unlock()

		if !again {
			return nil
		}
	}
}

// Publish validates the full lesson and, when it passes, persists it as
// activa. A failed validation leaves the session editing and returns the
// collected messages without touching the server.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	errs := s.validator.ValidateLesson(s.lesson, true)
	if len(errs) > 0 {
		s.status = StatusEditing
		s.mu.Unlock()
		return &ValidationFailedError{Errors: errs}
	}
	s.saving = true
	payload := s.snapshot(string(models.LessonStatusActive))
	id := s.lessonID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	if err := s.persist(ctx, id, payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.status = StatusPublished
	s.lastSaved = time.Now()
	s.mu.Unlock()
	return nil
}

// AutoSave saves the draft at the given interval until ctx is cancelled.
// Save failures are logged and the ticker keeps running.
func (s *Session) AutoSave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			dirty := s.status == StatusEditing
			s.mu.Unlock()
			if !dirty {
				continue
			}
			if err := s.SaveDraft(ctx); err != nil {
				s.logger.Warn("auto-save failed", "lesson_id", s.LessonID(), "error", err)
			}
		}
	}
}

// LastSaved reports when the lesson last reached the server.
func (s *Session) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

func (s *Session) persist(ctx context.Context, id string, payload *gateway.LessonPayload) error {
	if id == "" {
		newID, err := s.gw.CreateLesson(ctx, payload)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.lessonID = newID
		s.mu.Unlock()
		return nil
	}
	return s.gw.UpdateLesson(ctx, id, payload)
}

// snapshot builds the wire payload for the current draft. Caller holds mu.
func (s *Session) snapshot(estado string) *gateway.LessonPayload {
	return &gateway.LessonPayload{
		Titulo:             s.lesson.Title,
		Descripcion:        s.lesson.Description,
		Contenido:          s.lesson.Content,
		Nivel:              s.lesson.Level,
		Idioma:             s.lesson.Language,
		DuracionMinutos:    s.lesson.DurationMinutes,
		Estado:             estado,
		Actividades:        s.adapter.ToCanonicalAll(s.lesson.Activities),
		ArchivosMultimedia: s.lesson.Media,
	}
}

// indexOf returns the position of the activity with the given ID, -1 when
// absent. Caller holds mu.
func (s *Session) indexOf(id string) int {
	for i, a := range s.lesson.Activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// renumber assigns dense 1..N order values in slice order. Caller holds mu.
func (s *Session) renumber() {
	for i, a := range s.lesson.Activities {
		a.Order = i + 1
	}
}
