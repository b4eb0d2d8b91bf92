package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/models"
)

// CanonicalActivity is the wire representation of one activity: the shape the
// lesson API stores and serves. Field names follow the backend contract;
// Contenido and RespuestaCorrecta hold the per-type payloads.
type CanonicalActivity struct {
	ID                string          `json:"id"`
	Tipo              string          `json:"tipo"`
	Titulo            string          `json:"titulo"`
	Descripcion       string          `json:"descripcion"`
	Contenido         json.RawMessage `json:"contenido"`
	RespuestaCorrecta json.RawMessage `json:"respuesta_correcta"`
	PuntosMaximos     int             `json:"puntos_maximos"`
	Orden             int             `json:"orden"`
	Estado            string          `json:"estado"`
	Config            json.RawMessage `json:"config,omitempty"`
}

// Adapter converts between editing-time activities and their canonical wire
// shape. Both directions are total: malformed input degrades to the type's
// defaults and is logged, never returned as an error. All tolerance for
// legacy field names lives here and nowhere else.
type Adapter struct {
	registry *activities.Registry
	logger   *slog.Logger
}

func New(registry *activities.Registry, logger *slog.Logger) *Adapter {
	return &Adapter{registry: registry, logger: logger}
}

// ===== SERIALIZATION =====

// ToCanonical serializes one activity. Unresolvable types fall back to
// multiple_choice and content that does not hold together for its type is
// replaced by the type default, so the emitted payload is always well formed.
func (ad *Adapter) ToCanonical(a *models.Activity) CanonicalActivity {
	def, ok := ad.registry.Resolve(string(a.Type))
	if !ok {
		ad.logger.Warn("unknown activity type, serializing as multiple_choice", "activity_id", a.ID, "type", a.Type)
		def, _ = ad.registry.Resolve(string(models.TypeMultipleChoice))
	}

	content := a.Content
	answer := a.Answer
	if !contentUsable(def, content) {
		ad.logger.Warn("malformed activity content, substituting type defaults", "activity_id", a.ID, "type", def.Key)
		fresh := def.Manager.CreateDefault()
		content = fresh.Content
		answer = fresh.Answer
	} else if answer == nil || answer.ActivityType() != def.Key {
		fresh := def.Manager.CreateDefault()
		answer = fresh.Answer
	}
	answer = realign(def.Key, content, answer)

	points := a.Points
	if points < 1 {
		points = 10
	}

	return CanonicalActivity{
		ID:                a.ID,
		Tipo:              string(def.Key),
		Titulo:            a.Title,
		Descripcion:       a.Description,
		Contenido:         mustJSON(content),
		RespuestaCorrecta: mustJSON(answer),
		PuntosMaximos:     points,
		Orden:             a.Order,
		Estado:            "activo",
		Config:            mustJSON(a.Config),
	}
}

// ToCanonicalAll serializes an ordered activity list.
func (ad *Adapter) ToCanonicalAll(list []*models.Activity) []CanonicalActivity {
	out := make([]CanonicalActivity, 0, len(list))
	for _, a := range list {
		out = append(out, ad.ToCanonical(a))
	}
	return out
}

// contentUsable reports whether the payload matches the definition's variant
// and carries at least one real item; anything short of that serializes as
// the type default instead of an invalid payload.
func contentUsable(def *activities.Definition, content models.Content) bool {
	if content == nil || content.ActivityType() != def.Key {
		return false
	}
	switch c := content.(type) {
	case *models.MultipleChoiceContent:
		for _, opt := range c.Options {
			if strings.TrimSpace(opt) != "" {
				return true
			}
		}
		return false
	case *models.TrueFalseContent:
		return len(c.Statements) > 0
	case *models.FillBlankContent:
		return strings.TrimSpace(c.Text) != ""
	case *models.MatchingContent:
		return len(c.Pairs) > 0
	case *models.WritingContent:
		return true
	}
	return false
}

// realign rebuilds the answer where its cardinality must mirror the content.
func realign(key models.ActivityType, content models.Content, answer models.Answer) models.Answer {
	switch key {
	case models.TypeTrueFalse:
		c := content.(*models.TrueFalseContent)
		ans := answer.(*models.TrueFalseAnswer)
		if len(ans.Values) != len(c.Statements) {
			values := make([]bool, len(c.Statements))
			copy(values, ans.Values)
			for i := len(ans.Values); i < len(values); i++ {
				values[i] = true
			}
			return &models.TrueFalseAnswer{Values: values}
		}
	case models.TypeFillBlank:
		c := content.(*models.FillBlankContent)
		ans := answer.(*models.FillBlankAnswer)
		if len(ans.Words) != len(c.Blanks) {
			return &models.FillBlankAnswer{Words: append([]string(nil), c.Blanks...)}
		}
	case models.TypeMatching:
		c := content.(*models.MatchingContent)
		return &models.MatchingAnswer{Indices: activities.IdentityIndices(len(c.Pairs))}
	}
	return answer
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// ===== DESERIALIZATION =====

// FromCanonical rebuilds an editing-time activity from its wire shape. It
// resolves the type through the registry's alias set and accepts both the
// current canonical field names and the legacy (Spanish) ones still present
// in stored lessons. Anything it cannot make sense of becomes the type's
// default, logged, never an error.
func (ad *Adapter) FromCanonical(w CanonicalActivity) *models.Activity {
	return ad.fromCanonical(w, 0)
}

// FromCanonicalAll rebuilds an ordered list, filling in missing titles and
// order values from the position.
func (ad *Adapter) FromCanonicalAll(list []CanonicalActivity) []*models.Activity {
	out := make([]*models.Activity, 0, len(list))
	for i, w := range list {
		out = append(out, ad.fromCanonical(w, i))
	}
	return out
}

func (ad *Adapter) fromCanonical(w CanonicalActivity, index int) *models.Activity {
	def, ok := ad.registry.Resolve(w.Tipo)
	if !ok {
		ad.logger.Warn("unknown wire activity type, treating as multiple_choice", "activity_id", w.ID, "tipo", w.Tipo)
		def, _ = ad.registry.Resolve(string(models.TypeMultipleChoice))
	}

	a := def.Manager.CreateDefault()
	a.ID = w.ID
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if strings.TrimSpace(w.Titulo) != "" {
		a.Title = w.Titulo
	} else {
		a.Title = fmt.Sprintf("Ejercicio %d", index+1)
	}
	a.Description = w.Descripcion
	if w.PuntosMaximos >= 1 {
		a.Points = w.PuntosMaximos
	}
	if w.Orden > 0 {
		a.Order = w.Orden
	} else {
		a.Order = index + 1
	}
	a.Config = ad.decodeConfig(w.Config, a.Config)

	switch def.Key {
	case models.TypeMultipleChoice:
		ad.decodeMultipleChoice(w, a)
	case models.TypeTrueFalse:
		ad.decodeTrueFalse(w, a)
	case models.TypeFillBlank:
		ad.decodeFillBlank(w, a)
	case models.TypeMatching:
		ad.decodeMatching(w, a)
	case models.TypeWriting:
		ad.decodeWriting(w, a)
	}
	return a
}

// option accepts both plain strings and the legacy {texto, correcta} objects.
type option struct {
	Text    string
	Correct bool
}

func (o *option) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Text = s
		return nil
	}
	var obj struct {
		Texto    string `json:"texto"`
		Correcta bool   `json:"correcta"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.Text = obj.Texto
	o.Correct = obj.Correcta
	return nil
}

func (ad *Adapter) decodeMultipleChoice(w CanonicalActivity, a *models.Activity) {
	var raw struct {
		Question  string   `json:"question"`
		Options   []option `json:"options"`
		Pregunta  string   `json:"pregunta"`
		Opciones  []option `json:"opciones"`
		Preguntas []struct {
			Pregunta string   `json:"pregunta"`
			Opciones []option `json:"opciones"`
		} `json:"preguntas"`
	}
	if err := json.Unmarshal(orEmpty(w.Contenido), &raw); err != nil {
		ad.logger.Warn("unreadable multiple_choice content, keeping defaults", "activity_id", a.ID, "error", err)
		return
	}

	question := firstNonEmpty(raw.Question, raw.Pregunta)
	opts := raw.Options
	if len(opts) == 0 {
		opts = raw.Opciones
	}
	if len(opts) == 0 && len(raw.Preguntas) > 0 {
		question = firstNonEmpty(question, raw.Preguntas[0].Pregunta)
		opts = raw.Preguntas[0].Opciones
	}
	if len(opts) == 0 {
		ad.logger.Warn("multiple_choice content without options, keeping defaults", "activity_id", a.ID)
		return
	}

	options := make([]string, 0, len(opts))
	var flagged []int
	for i, o := range opts {
		options = append(options, o.Text)
		if o.Correct {
			flagged = append(flagged, i)
		}
	}

	var rawAns struct {
		Indices    []int `json:"indices"`
		Respuestas []int `json:"respuestas"`
	}
	_ = json.Unmarshal(orEmpty(w.RespuestaCorrecta), &rawAns)

	indices := rawAns.Indices
	if len(indices) == 0 {
		indices = rawAns.Respuestas
	}
	if len(indices) == 0 {
		indices = flagged
	}
	indices = boundedIndices(indices, len(options))
	if len(indices) == 0 {
		indices = []int{0}
	}

	a.Content = &models.MultipleChoiceContent{Question: question, Options: options}
	a.Answer = &models.MultipleChoiceAnswer{Indices: indices}
}

func (ad *Adapter) decodeTrueFalse(w CanonicalActivity, a *models.Activity) {
	var raw struct {
		Statements        []string `json:"statements"`
		Afirmaciones      []string `json:"afirmaciones"`
		Afirmacion        string   `json:"afirmacion"`
		RespuestaCorrecta *bool    `json:"respuesta_correcta"`
	}
	if err := json.Unmarshal(orEmpty(w.Contenido), &raw); err != nil {
		ad.logger.Warn("unreadable true_false content, keeping defaults", "activity_id", a.ID, "error", err)
		return
	}

	statements := raw.Statements
	if len(statements) == 0 {
		statements = raw.Afirmaciones
	}
	embedded := raw.RespuestaCorrecta
	if len(statements) == 0 && strings.TrimSpace(raw.Afirmacion) != "" {
		// Oldest shape: one statement with its answer embedded in the content.
		statements = []string{raw.Afirmacion}
	}
	if len(statements) == 0 {
		ad.logger.Warn("true_false content without statements, keeping defaults", "activity_id", a.ID)
		return
	}

	var rawAns struct {
		Values     []bool `json:"values"`
		Respuestas []bool `json:"respuestas"`
	}
	_ = json.Unmarshal(orEmpty(w.RespuestaCorrecta), &rawAns)

	values := rawAns.Values
	if len(values) == 0 {
		values = rawAns.Respuestas
	}
	if len(values) == 0 && embedded != nil {
		values = []bool{*embedded}
	}
	aligned := make([]bool, len(statements))
	copy(aligned, values)
	for i := len(values); i < len(aligned); i++ {
		aligned[i] = true
	}

	a.Content = &models.TrueFalseContent{Statements: statements}
	a.Answer = &models.TrueFalseAnswer{Values: aligned}
}

func (ad *Adapter) decodeFillBlank(w CanonicalActivity, a *models.Activity) {
	var raw struct {
		Text              string   `json:"text"`
		Blanks            []string `json:"blanks"`
		Texto             string   `json:"texto"`
		Espacios          []string `json:"espacios"`
		PalabrasFaltantes []string `json:"palabras_faltantes"`
	}
	if err := json.Unmarshal(orEmpty(w.Contenido), &raw); err != nil {
		ad.logger.Warn("unreadable fill_blank content, keeping defaults", "activity_id", a.ID, "error", err)
		return
	}

	text := firstNonEmpty(raw.Text, raw.Texto)
	if strings.TrimSpace(text) == "" {
		ad.logger.Warn("fill_blank content without text, keeping defaults", "activity_id", a.ID)
		return
	}

	var rawAns struct {
		Words      []string `json:"words"`
		Respuestas []string `json:"respuestas"`
	}
	_ = json.Unmarshal(orEmpty(w.RespuestaCorrecta), &rawAns)

	words := rawAns.Words
	for _, candidate := range [][]string{rawAns.Respuestas, raw.Blanks, raw.Espacios, raw.PalabrasFaltantes} {
		if len(words) == 0 {
			words = candidate
		}
	}

	// Legacy texts mark blanks with ___ instead of [[word]]; rebuild markers
	// from the stored answer words when the counts line up.
	if n := strings.Count(text, "___"); n > 0 && len(activities.ExtractBlanks(text)) == 0 {
		if n != len(words) {
			ad.logger.Warn("fill_blank legacy markers do not match answers, keeping defaults",
				"activity_id", a.ID, "markers", n, "answers", len(words))
			return
		}
		for _, word := range words {
			text = strings.Replace(text, "___", "[["+word+"]]", 1)
		}
	}

	blanks := activities.ExtractBlanks(text)
	if len(blanks) == 0 {
		ad.logger.Warn("fill_blank content without markers, keeping defaults", "activity_id", a.ID)
		return
	}

	a.Content = &models.FillBlankContent{Text: text, Blanks: blanks}
	a.Answer = &models.FillBlankAnswer{Words: append([]string(nil), blanks...)}
}

func (ad *Adapter) decodeMatching(w CanonicalActivity, a *models.Activity) {
	var raw struct {
		Pairs []models.MatchingPair `json:"pairs"`
		Pares []struct {
			Izquierda string `json:"izquierda"`
			Derecha   string `json:"derecha"`
		} `json:"pares"`
	}
	if err := json.Unmarshal(orEmpty(w.Contenido), &raw); err != nil {
		ad.logger.Warn("unreadable matching content, keeping defaults", "activity_id", a.ID, "error", err)
		return
	}

	pairs := raw.Pairs
	if len(pairs) == 0 {
		for _, p := range raw.Pares {
			pairs = append(pairs, models.MatchingPair{Left: p.Izquierda, Right: p.Derecha})
		}
	}
	if len(pairs) == 0 {
		ad.logger.Warn("matching content without pairs, keeping defaults", "activity_id", a.ID)
		return
	}

	a.Content = &models.MatchingContent{Pairs: pairs}
	a.Answer = &models.MatchingAnswer{Indices: activities.IdentityIndices(len(pairs))}
}

func (ad *Adapter) decodeWriting(w CanonicalActivity, a *models.Activity) {
	var raw struct {
		Prompt          string   `json:"prompt"`
		MinWords        int      `json:"min_words"`
		Consigna        string   `json:"consigna"`
		PalabrasMinimas int      `json:"palabras_minimas"`
		Criterios       []string `json:"criterios"`
	}
	if err := json.Unmarshal(orEmpty(w.Contenido), &raw); err != nil {
		ad.logger.Warn("unreadable writing content, keeping defaults", "activity_id", a.ID, "error", err)
		return
	}

	prompt := firstNonEmpty(raw.Prompt, raw.Consigna)
	minWords := raw.MinWords
	if minWords == 0 {
		minWords = raw.PalabrasMinimas
	}
	if minWords == 0 {
		minWords = 50
	}

	var rawAns struct {
		Mode      string   `json:"mode"`
		Criteria  []string `json:"criteria"`
		Criterios []string `json:"criterios"`
	}
	_ = json.Unmarshal(orEmpty(w.RespuestaCorrecta), &rawAns)

	criteria := rawAns.Criteria
	if len(criteria) == 0 {
		criteria = rawAns.Criterios
	}
	if len(criteria) == 0 {
		criteria = raw.Criterios
	}
	if len(criteria) == 0 {
		criteria = []string{"Claridad", "Precisión", "Coherencia"}
	}

	a.Content = &models.WritingContent{Prompt: prompt, MinWords: minWords}
	a.Answer = &models.WritingAnswer{Mode: models.WritingModeManual, Criteria: criteria}
}

func (ad *Adapter) decodeConfig(raw json.RawMessage, fallback models.ActivityConfig) models.ActivityConfig {
	if len(raw) == 0 {
		return fallback
	}
	var c struct {
		TimeLimitSeconds   *int  `json:"time_limit_seconds"`
		AllowedAttempts    *int  `json:"allowed_attempts"`
		ShowExplanation    *bool `json:"show_explanation"`
		TiempoLimite       *int  `json:"tiempo_limite"`
		IntentosPermitidos *int  `json:"intentos_permitidos"`
		MostrarExplicacion *bool `json:"mostrar_explicacion"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return fallback
	}

	out := fallback
	if c.TimeLimitSeconds != nil {
		out.TimeLimitSeconds = c.TimeLimitSeconds
	} else if c.TiempoLimite != nil {
		out.TimeLimitSeconds = c.TiempoLimite
	}
	if c.AllowedAttempts != nil {
		out.AllowedAttempts = *c.AllowedAttempts
	} else if c.IntentosPermitidos != nil {
		out.AllowedAttempts = *c.IntentosPermitidos
	}
	if c.ShowExplanation != nil {
		out.ShowExplanation = *c.ShowExplanation
	} else if c.MostrarExplicacion != nil {
		out.ShowExplanation = *c.MostrarExplicacion
	}
	if out.AllowedAttempts < 0 {
		out.AllowedAttempts = 0
	}
	return out
}

// ===== SMALL HELPERS =====

func orEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func boundedIndices(indices []int, n int) []int {
	out := indices[:0]
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < n && !seen[i] {
			out = append(out, i)
			seen[i] = true
		}
	}
	return out
}
