package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/gateway"
	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/validator"
)

// fakeGateway records saves in memory. When entered/release are set, every
// gateway call signals entered and then waits for a release token, so tests
// can hold a save open mid-flight.
type fakeGateway struct {
	mu       sync.Mutex
	creates  int
	updates  int
	lastSent *gateway.LessonPayload
	failNext error
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeGateway) hold() {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
}

func (f *fakeGateway) CreateLesson(ctx context.Context, payload *gateway.LessonPayload) (string, error) {
	f.hold()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return "", err
	}
	f.creates++
	f.lastSent = payload
	return fmt.Sprintf("lesson-%d", f.creates), nil
}

func (f *fakeGateway) UpdateLesson(ctx context.Context, id string, payload *gateway.LessonPayload) error {
	f.hold()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.updates++
	f.lastSent = payload
	return nil
}

func (f *fakeGateway) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates
}

func newTestSession(t *testing.T, gw Gateway) *Session {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := activities.NewRegistry()
	draft := &models.LessonDraft{
		Title:       "Comida española",
		Description: "Platos típicos y su vocabulario.",
		Content:     "Una lección completa sobre la comida española y sus platos más conocidos.",
		Level:       "A2",
		Language:    "es",
		Media:       []models.MediaRef{{ID: "m1", Nombre: "paella.jpg", Tipo: "image/jpeg", URL: "https://cdn/p.jpg"}},
	}
	return NewSession(
		draft,
		"",
		registry,
		adapter.New(registry, logger),
		validator.NewActivityValidator(registry),
		gw,
		logger,
	)
}

func addValidActivity(t *testing.T, s *Session) *models.Activity {
	t.Helper()
	a, err := s.AddActivity("multiple_choice")
	require.NoError(t, err)
	err = s.UpdateActivity(a.ID, func(act *models.Activity) error {
		content := act.Content.(*models.MultipleChoiceContent)
		content.Question = "¿Qué lleva la paella?"
		content.Options = []string{"Arroz", "Pasta"}
		return nil
	})
	require.NoError(t, err)
	return a
}

// ===== ACTIVITY MANAGEMENT =====

func TestSession_AddActivityAssignsDenseOrder(t *testing.T) {
	s := newTestSession(t, &fakeGateway{})

	a1, err := s.AddActivity("seleccion_multiple")
	require.NoError(t, err)
	a2, err := s.AddActivity("escritura")
	require.NoError(t, err)

	assert.NotEmpty(t, a1.ID)
	assert.NotEqual(t, a1.ID, a2.ID)

	lesson := s.Lesson()
	require.Len(t, lesson.Activities, 2)
	assert.Equal(t, 1, lesson.Activities[0].Order)
	assert.Equal(t, 2, lesson.Activities[1].Order)
}

func TestSession_AddActivityUnknownType(t *testing.T) {
	s := newTestSession(t, &fakeGateway{})

	_, err := s.AddActivity("sudoku")
	assert.ErrorIs(t, err, ErrUnknownActivityType)
}

func TestSession_RemoveActivityClosesGap(t *testing.T) {
	s := newTestSession(t, &fakeGateway{})
	a1, _ := s.AddActivity("multiple_choice")
	a2, _ := s.AddActivity("true_false")
	a3, _ := s.AddActivity("writing")

	require.NoError(t, s.RemoveActivity(a2.ID))

	lesson := s.Lesson()
	require.Len(t, lesson.Activities, 2)
	assert.Equal(t, a1.ID, lesson.Activities[0].ID)
	assert.Equal(t, a3.ID, lesson.Activities[1].ID)
	assert.Equal(t, 1, lesson.Activities[0].Order)
	assert.Equal(t, 2, lesson.Activities[1].Order)
}

func TestSession_DuplicateActivityInsertsAfterOriginal(t *testing.T) {
	s := newTestSession(t, &fakeGateway{})
	a1 := addValidActivity(t, s)
	a2, _ := s.AddActivity("writing")

	dup, err := s.DuplicateActivity(a1.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID, dup.ID)

	lesson := s.Lesson()
	require.Len(t, lesson.Activities, 3)
	assert.Equal(t, a1.ID, lesson.Activities[0].ID)
	assert.Equal(t, dup.ID, lesson.Activities[1].ID)
	assert.Equal(t, a2.ID, lesson.Activities[2].ID)
	assert.Equal(t, []int{1, 2, 3}, []int{
		lesson.Activities[0].Order,
		lesson.Activities[1].Order,
		lesson.Activities[2].Order,
	})

	// The copy is deep: editing the duplicate leaves the original alone.
	err = s.UpdateActivity(dup.ID, func(act *models.Activity) error {
		act.Content.(*models.MultipleChoiceContent).Question = "¿Otra?"
		return nil
	})
	require.NoError(t, err)
	lesson = s.Lesson()
	assert.Equal(t, "¿Qué lleva la paella?", lesson.Activities[0].Content.(*models.MultipleChoiceContent).Question)
	assert.Equal(t, "¿Otra?", lesson.Activities[1].Content.(*models.MultipleChoiceContent).Question)
}

func TestSession_MoveActivityRenumbers(t *testing.T) {
	s := newTestSession(t, &fakeGateway{})
	a1, _ := s.AddActivity("multiple_choice")
	a2, _ := s.AddActivity("true_false")
	a3, _ := s.AddActivity("writing")

	require.NoError(t, s.MoveActivity(a3.ID, 1))

	lesson := s.Lesson()
	assert.Equal(t, a3.ID, lesson.Activities[0].ID)
	assert.Equal(t, a1.ID, lesson.Activities[1].ID)
	assert.Equal(t, a2.ID, lesson.Activities[2].ID)
	for i, a := range lesson.Activities {
		assert.Equal(t, i+1, a.Order)
	}
}

// ===== SAVE AND PUBLISH =====

func TestSession_SaveDraftCreatesThenUpdates(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestSession(t, gw)
	addValidActivity(t, s)

	require.NoError(t, s.SaveDraft(context.Background()))
	assert.Equal(t, "lesson-1", s.LessonID())
	assert.Equal(t, StatusDraft, s.Status())

	creates, updates := gw.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, updates)
	assert.Equal(t, "borrador", gw.lastSent.Estado)

	_, err := s.AddActivity("writing")
	require.NoError(t, err)
	assert.Equal(t, StatusEditing, s.Status())

	require.NoError(t, s.SaveDraft(context.Background()))
	creates, updates = gw.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
}

func TestSession_SaveDraftCoalescesConcurrentCalls(t *testing.T) {
	gw := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	s := newTestSession(t, gw)
	addValidActivity(t, s)

	done := make(chan error, 1)
	go func() {
		done <- s.SaveDraft(context.Background())
	}()

	// Wait until the first save is inside the gateway call.
	<-gw.entered

	// These land while the first save is running; they coalesce into one
	// deferred round trip.
	require.NoError(t, s.SaveDraft(context.Background()))
	require.NoError(t, s.SaveDraft(context.Background()))

	gw.release <- struct{}{}

	// The holder performs exactly one more round trip for the burst.
	<-gw.entered
	gw.release <- struct{}{}

	require.NoError(t, <-done)

	creates, updates := gw.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
}

func TestSession_SaveDraftPropagatesTransportError(t *testing.T) {
	gw := &fakeGateway{failNext: &gateway.TransportError{Op: "create lesson", Err: errors.New("boom")}}
	s := newTestSession(t, gw)
	addValidActivity(t, s)

	err := s.SaveDraft(context.Background())
	var terr *gateway.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, StatusEditing, s.Status())
	assert.Empty(t, s.LessonID())
}

func TestSession_PublishBlockedByValidation(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestSession(t, gw)
	// No activities at all.

	err := s.Publish(context.Background())
	var vErr *ValidationFailedError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "at least one activity is required")
	assert.Equal(t, StatusEditing, s.Status())

	creates, updates := gw.counts()
	assert.Zero(t, creates)
	assert.Zero(t, updates)
}

func TestSession_PublishSendsActiva(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestSession(t, gw)
	addValidActivity(t, s)

	require.NoError(t, s.Publish(context.Background()))
	assert.Equal(t, StatusPublished, s.Status())
	assert.Equal(t, "activa", gw.lastSent.Estado)
	require.Len(t, gw.lastSent.Actividades, 1)
	assert.Equal(t, "activo", gw.lastSent.Actividades[0].Estado)
}

func TestSession_PublishWhileSavingReturnsErrSaveInFlight(t *testing.T) {
	gw := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	s := newTestSession(t, gw)
	addValidActivity(t, s)

	done := make(chan error, 1)
	go func() {
		done <- s.SaveDraft(context.Background())
	}()

	<-gw.entered

	err := s.Publish(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)

	gw.release <- struct{}{}
	require.NoError(t, <-done)
}
