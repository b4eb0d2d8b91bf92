package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/models"
)

func validDraft(t *testing.T) *models.LessonDraft {
	t.Helper()

	mc := activities.MultipleChoice{}
	a := mc.CreateDefault()
	require.NoError(t, mc.SetQuestion(a, "¿Cómo se dice 'cat'?"))
	require.NoError(t, mc.SetOption(a, 0, "gato"))
	require.NoError(t, mc.SetOption(a, 1, "perro"))

	return &models.LessonDraft{
		Title:       "Animales",
		Description: "Vocabulario de animales domésticos.",
		Content:     "En esta lección aprenderás los nombres de los animales más comunes.",
		Level:       "A1",
		Language:    "es",
		Activities:  []*models.Activity{a},
		Media:       []models.MediaRef{{ID: "m1", Nombre: "gato.png", Tipo: "image/png", URL: "https://cdn/x.png"}},
	}
}

func TestValidateLesson_DraftAllowsMissingMedia(t *testing.T) {
	v := NewActivityValidator(activities.NewRegistry())

	draft := validDraft(t)
	draft.Media = nil
	draft.Content = "corto"

	assert.Empty(t, v.ValidateLesson(draft, false))
}

func TestValidateLesson_PublishRequiresMediaAndContent(t *testing.T) {
	v := NewActivityValidator(activities.NewRegistry())

	draft := validDraft(t)
	draft.Media = nil
	draft.Content = "corto"

	errs := v.ValidateLesson(draft, true)
	assert.Contains(t, errs, "at least one media file is required")
	assert.Contains(t, errs, "lesson content must be at least 50 characters")
}

func TestValidateLesson_PublishPassesWhenComplete(t *testing.T) {
	v := NewActivityValidator(activities.NewRegistry())

	assert.Empty(t, v.ValidateLesson(validDraft(t), true))
}

func TestValidateLesson_RequiresActivity(t *testing.T) {
	v := NewActivityValidator(activities.NewRegistry())

	draft := validDraft(t)
	draft.Activities = nil

	errs := v.ValidateLesson(draft, false)
	assert.Contains(t, errs, "at least one activity is required")
}

func TestValidateLesson_PrefixesActivityErrors(t *testing.T) {
	v := NewActivityValidator(activities.NewRegistry())

	draft := validDraft(t)
	wr := activities.Writing{}.CreateDefault()
	draft.Activities = append(draft.Activities, wr)

	errs := v.ValidateLesson(draft, false)
	assert.Contains(t, errs, "activity 2: prompt is required")
}

func TestValidateActivity_UnknownType(t *testing.T) {
	v := NewActivityValidator(activities.NewRegistry())

	errs := v.ValidateActivity(&models.Activity{Type: "sopa_de_letras"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unknown activity type")
}

func TestValidateStruct_CustomTags(t *testing.T) {
	v := New(activities.NewRegistry())

	type lessonForm struct {
		Nivel  string `json:"nivel" validate:"required,cefr_level"`
		Estado string `json:"estado" validate:"omitempty,lesson_status"`
		Tipo   string `json:"tipo" validate:"required,activity_type"`
	}

	assert.NoError(t, v.ValidateStruct(&lessonForm{Nivel: "B1", Estado: "borrador", Tipo: "seleccion_multiple"}))

	err := v.ValidateStruct(&lessonForm{Nivel: "Z9", Estado: "pausada", Tipo: "crossword"})
	require.Error(t, err)
}
