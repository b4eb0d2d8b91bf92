package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LessonStatus string

const (
	LessonStatusDraft    LessonStatus = "borrador"
	LessonStatusActive   LessonStatus = "activa"
	LessonStatusInactive LessonStatus = "inactiva"
)

// CEFR levels a lesson can be tagged with.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// MediaRef points at an externally managed media asset attached to a lesson.
// Upload and storage of the asset itself live outside this service.
type MediaRef struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
	URL    string `json:"url"`
	Size   int64  `json:"size"`
}

// Lesson is the persisted lesson row. Activity payloads are stored in
// canonical wire shape (see the adapter package) on LessonActivity rows.
type Lesson struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	Titulo          string       `json:"titulo" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Descripcion     string       `json:"descripcion" gorm:"type:text" validate:"required,max=2000"`
	Contenido       string       `json:"contenido" gorm:"type:longtext"`
	Nivel           string       `json:"nivel" gorm:"size:2;index" validate:"required,cefr_level"`
	Idioma          string       `json:"idioma" gorm:"size:32;index" validate:"required"`
	DuracionMinutos int          `json:"duracion_minutos" gorm:"default:30" validate:"min=1,max=300"`
	Estado          LessonStatus `json:"estado" gorm:"default:borrador;index" validate:"omitempty,lesson_status"`
	Orden           int          `json:"orden" gorm:"default:0"`
	MediaRefs       datatypes.JSON `json:"archivos_multimedia" gorm:"column:archivos_multimedia"`

	CreadoPor uint           `json:"creado_por" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Activities []LessonActivity `json:"actividades" gorm:"foreignKey:LessonID"`
}

func (Lesson) TableName() string {
	return "lecciones"
}

// LessonActivity is one stored activity of a lesson. Contenido and
// RespuestaCorrecta hold the canonical JSON payloads, so rows round-trip
// through the adapter without a second normalization pass.
type LessonActivity struct {
	ID                uint           `json:"-" gorm:"primaryKey"`
	LessonID          uint           `json:"-" gorm:"not null;index"`
	ActivityID        string         `json:"id" gorm:"column:activity_id;size:64;index"`
	Tipo              string         `json:"tipo" gorm:"not null;size:32" validate:"required,activity_type"`
	Titulo            string         `json:"titulo" gorm:"not null;size:200"`
	Descripcion       string         `json:"descripcion" gorm:"type:text"`
	Contenido         datatypes.JSON `json:"contenido"`
	RespuestaCorrecta datatypes.JSON `json:"respuesta_correcta"`
	PuntosMaximos     int            `json:"puntos_maximos" gorm:"default:10" validate:"min=1,max=100"`
	Orden             int            `json:"orden" gorm:"not null"`
	Estado            string         `json:"estado" gorm:"default:activo;size:16"`
	Config            datatypes.JSON `json:"config,omitempty"`
}

func (LessonActivity) TableName() string {
	return "leccion_actividades"
}

// LessonDraft is the in-memory aggregate owned by one authoring session:
// ordered activities plus lesson metadata and media references. It is the
// editing-time counterpart of Lesson and never touches the database directly.
type LessonDraft struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Content         string      `json:"content"`
	Level           string      `json:"level"`
	Language        string      `json:"language"`
	DurationMinutes int         `json:"duration_minutes"`
	Activities      []*Activity `json:"activities"`
	Media           []MediaRef  `json:"media"`
}

// Clone deep-copies the draft, activities included.
func (d *LessonDraft) Clone() *LessonDraft {
	out := &LessonDraft{
		Title:           d.Title,
		Description:     d.Description,
		Content:         d.Content,
		Level:           d.Level,
		Language:        d.Language,
		DurationMinutes: d.DurationMinutes,
		Media:           append([]MediaRef(nil), d.Media...),
	}
	for _, a := range d.Activities {
		out.Activities = append(out.Activities, a.Clone())
	}
	return out
}
