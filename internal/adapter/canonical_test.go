package adapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/models"
)

func newTestAdapter() *Adapter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(activities.NewRegistry(), logger)
}

// ===== ROUND TRIPS =====

func TestRoundTrip_AllTypes(t *testing.T) {
	ad := newTestAdapter()
	registry := activities.NewRegistry()

	var list []*models.Activity
	for _, def := range registry.Definitions() {
		a := def.Manager.CreateDefault()
		a.ID = "act-" + string(def.Key)
		list = append(list, a)
	}
	// Give the defaults real content so nothing degrades on the way out.
	mc := list[0].Content.(*models.MultipleChoiceContent)
	mc.Question = "¿Cómo estás?"
	mc.Options = []string{"Bien", "Mal"}
	tf := list[1].Content.(*models.TrueFalseContent)
	tf.Statements = []string{"El cielo es azul."}
	var fbMgr activities.FillBlank
	require.NoError(t, fbMgr.SetText(list[2], "Yo [[soy]] estudiante."))
	match := list[3].Content.(*models.MatchingContent)
	match.Pairs = []models.MatchingPair{{Left: "uno", Right: "one"}, {Left: "dos", Right: "two"}}
	wr := list[4].Content.(*models.WritingContent)
	wr.Prompt = "Describe tu día."

	wire := ad.ToCanonicalAll(list)
	require.Len(t, wire, 5)
	for _, w := range wire {
		assert.Equal(t, "activo", w.Estado)
		assert.NotEmpty(t, w.Contenido)
		assert.NotEmpty(t, w.RespuestaCorrecta)
	}

	back := ad.FromCanonicalAll(wire)
	require.Len(t, back, 5)
	for i, a := range back {
		assert.Equal(t, list[i].ID, a.ID)
		assert.Equal(t, list[i].Type, a.Type)
	}

	mcBack := back[0].Content.(*models.MultipleChoiceContent)
	assert.Equal(t, "¿Cómo estás?", mcBack.Question)
	assert.Equal(t, []string{"Bien", "Mal"}, mcBack.Options)

	fbBack := back[2].Content.(*models.FillBlankContent)
	assert.Equal(t, "Yo [[soy]] estudiante.", fbBack.Text)
	assert.Equal(t, []string{"soy"}, fbBack.Blanks)
	assert.Equal(t, []string{"soy"}, back[2].Answer.(*models.FillBlankAnswer).Words)

	matchBack := back[3].Answer.(*models.MatchingAnswer)
	assert.Equal(t, []int{0, 1}, matchBack.Indices)
}

// ===== SERIALIZATION EDGE CASES =====

func TestToCanonical_UnknownTypeFallsBack(t *testing.T) {
	ad := newTestAdapter()

	a := &models.Activity{ID: "x1", Type: "crossword", Title: "Raro", Points: 10}
	w := ad.ToCanonical(a)

	assert.Equal(t, "multiple_choice", w.Tipo)
	// Content was unusable for the fallback type, so defaults were emitted.
	var content map[string]any
	require.NoError(t, json.Unmarshal(w.Contenido, &content))
	assert.Contains(t, content, "options")
}

func TestToCanonical_PointsFloor(t *testing.T) {
	ad := newTestAdapter()

	a := activities.MultipleChoice{}.CreateDefault()
	a.Points = 0
	w := ad.ToCanonical(a)

	assert.Equal(t, 10, w.PuntosMaximos)
}

func TestToCanonical_RealignsTrueFalseAnswer(t *testing.T) {
	ad := newTestAdapter()

	a := activities.TrueFalse{}.CreateDefault()
	a.Content.(*models.TrueFalseContent).Statements = []string{"uno", "dos", "tres"}

	w := ad.ToCanonical(a)

	var ans struct {
		Values []bool `json:"values"`
	}
	require.NoError(t, json.Unmarshal(w.RespuestaCorrecta, &ans))
	assert.Equal(t, []bool{true, true, true}, ans.Values)
}

// ===== LEGACY SHAPES =====

func TestFromCanonical_LegacySpanishMultipleChoice(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		ID:        "mc-legacy",
		Tipo:      "seleccion_multiple",
		Titulo:    "Colores",
		Contenido: json.RawMessage(`{"pregunta":"¿De qué color es el cielo?","opciones":[{"texto":"Azul","correcta":true},{"texto":"Verde","correcta":false}]}`),
	}

	a := ad.FromCanonical(w)
	require.Equal(t, models.TypeMultipleChoice, a.Type)

	content := a.Content.(*models.MultipleChoiceContent)
	answer := a.Answer.(*models.MultipleChoiceAnswer)
	assert.Equal(t, "¿De qué color es el cielo?", content.Question)
	assert.Equal(t, []string{"Azul", "Verde"}, content.Options)
	assert.Equal(t, []int{0}, answer.Indices)
}

func TestFromCanonical_LegacyNestedPreguntas(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:      "multiple_choice",
		Titulo:    "Saludo",
		Contenido: json.RawMessage(`{"preguntas":[{"pregunta":"¿Hola?","opciones":["Sí","No"]}]}`),
		RespuestaCorrecta: json.RawMessage(`{"respuestas":[1]}`),
	}

	a := ad.FromCanonical(w)
	content := a.Content.(*models.MultipleChoiceContent)
	answer := a.Answer.(*models.MultipleChoiceAnswer)
	assert.Equal(t, "¿Hola?", content.Question)
	assert.Equal(t, []int{1}, answer.Indices)
}

func TestFromCanonical_LegacySingleAfirmacion(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:      "verdadero_falso",
		Titulo:    "Geografía",
		Contenido: json.RawMessage(`{"afirmacion":"Madrid está en España.","respuesta_correcta":false}`),
	}

	a := ad.FromCanonical(w)
	content := a.Content.(*models.TrueFalseContent)
	answer := a.Answer.(*models.TrueFalseAnswer)
	assert.Equal(t, []string{"Madrid está en España."}, content.Statements)
	assert.Equal(t, []bool{false}, answer.Values)
}

func TestFromCanonical_LegacyUnderscoreMarkers(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:              "completar_espacios",
		Titulo:            "Verbos",
		Contenido:         json.RawMessage(`{"texto":"Yo ___ estudiante y tú ___ profesor."}`),
		RespuestaCorrecta: json.RawMessage(`{"respuestas":["soy","eres"]}`),
	}

	a := ad.FromCanonical(w)
	content := a.Content.(*models.FillBlankContent)
	answer := a.Answer.(*models.FillBlankAnswer)
	assert.Equal(t, "Yo [[soy]] estudiante y tú [[eres]] profesor.", content.Text)
	assert.Equal(t, []string{"soy", "eres"}, content.Blanks)
	assert.Equal(t, []string{"soy", "eres"}, answer.Words)
}

func TestFromCanonical_UnderscoreMarkerCountMismatchKeepsDefaults(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:              "fill_blank",
		Titulo:            "Roto",
		Contenido:         json.RawMessage(`{"texto":"Yo ___ y tú ___."}`),
		RespuestaCorrecta: json.RawMessage(`{"respuestas":["soy"]}`),
	}

	a := ad.FromCanonical(w)
	content := a.Content.(*models.FillBlankContent)
	assert.Empty(t, content.Blanks)
	assert.Empty(t, content.Text)
}

func TestFromCanonical_LegacyPares(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:              "emparejamiento",
		Titulo:            "Animales",
		Contenido:         json.RawMessage(`{"pares":[{"izquierda":"perro","derecha":"dog"},{"izquierda":"gato","derecha":"cat"}]}`),
		RespuestaCorrecta: json.RawMessage(`{"respuestas":[1,0]}`),
	}

	a := ad.FromCanonical(w)
	content := a.Content.(*models.MatchingContent)
	answer := a.Answer.(*models.MatchingAnswer)
	assert.Equal(t, "perro", content.Pairs[0].Left)
	assert.Equal(t, "cat", content.Pairs[1].Right)
	// The stored permutation is ignored; the correspondence lives in the pairs.
	assert.Equal(t, []int{0, 1}, answer.Indices)
}

func TestFromCanonical_LegacyWritingConsigna(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:              "escritura",
		Titulo:            "Redacción",
		Contenido:         json.RawMessage(`{"consigna":"Escribe sobre tu familia.","palabras_minimas":80}`),
		RespuestaCorrecta: json.RawMessage(`{"criterios":["Ortografía"]}`),
	}

	a := ad.FromCanonical(w)
	content := a.Content.(*models.WritingContent)
	answer := a.Answer.(*models.WritingAnswer)
	assert.Equal(t, "Escribe sobre tu familia.", content.Prompt)
	assert.Equal(t, 80, content.MinWords)
	assert.Equal(t, []string{"Ortografía"}, answer.Criteria)
	assert.Equal(t, models.WritingModeManual, answer.Mode)
}

func TestFromCanonical_LegacyConfigKeys(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:    "writing",
		Titulo:  "Con config",
		Config:  json.RawMessage(`{"tiempo_limite":120,"intentos_permitidos":3,"mostrar_explicacion":false}`),
	}

	a := ad.FromCanonical(w)
	require.NotNil(t, a.Config.TimeLimitSeconds)
	assert.Equal(t, 120, *a.Config.TimeLimitSeconds)
	assert.Equal(t, 3, a.Config.AllowedAttempts)
	assert.False(t, a.Config.ShowExplanation)
}

// ===== DEGRADATION =====

func TestFromCanonical_UnknownTypeAndMalformedContent(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:      "sopa_de_letras",
		Contenido: json.RawMessage(`not json at all`),
	}

	a := ad.FromCanonical(w)
	assert.Equal(t, models.TypeMultipleChoice, a.Type)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Ejercicio 1", a.Title)

	content := a.Content.(*models.MultipleChoiceContent)
	assert.Len(t, content.Options, 4)
}

func TestFromCanonicalAll_FillsTitleAndOrder(t *testing.T) {
	ad := newTestAdapter()

	wire := []CanonicalActivity{
		{Tipo: "writing"},
		{Tipo: "writing", Titulo: "Con título", Orden: 7},
	}

	list := ad.FromCanonicalAll(wire)
	require.Len(t, list, 2)
	assert.Equal(t, "Ejercicio 1", list[0].Title)
	assert.Equal(t, 1, list[0].Order)
	assert.Equal(t, "Con título", list[1].Title)
	assert.Equal(t, 7, list[1].Order)
}

func TestFromCanonical_OutOfRangeIndicesBounded(t *testing.T) {
	ad := newTestAdapter()

	w := CanonicalActivity{
		Tipo:              "multiple_choice",
		Titulo:            "Índices rotos",
		Contenido:         json.RawMessage(`{"question":"¿Sí?","options":["a","b"]}`),
		RespuestaCorrecta: json.RawMessage(`{"indices":[5,-1,1,1]}`),
	}

	a := ad.FromCanonical(w)
	answer := a.Answer.(*models.MultipleChoiceAnswer)
	assert.Equal(t, []int{1}, answer.Indices)
}
