package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/models"
)

func newTestExportService(repo *MockLessonRepository) ExportService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExportService(repo, adapter.New(activities.NewRegistry(), logger), logger)
}

func TestExportService_ExportLessonToExcel(t *testing.T) {
	repo := new(MockLessonRepository)
	svc := newTestExportService(repo)

	lesson := &models.Lesson{
		ID:              4,
		Titulo:          "Los colores",
		Descripcion:     "Vocabulario de colores.",
		Nivel:           "A1",
		Idioma:          "es",
		DuracionMinutos: 20,
		Estado:          models.LessonStatusActive,
		CreadoPor:       11,
		Activities: []models.LessonActivity{
			{
				ActivityID:        "a1",
				Tipo:              "multiple_choice",
				Titulo:            "Elige el color",
				Contenido:         []byte(`{"question":"¿De qué color es el cielo?","options":["Azul","Rojo","Verde"]}`),
				RespuestaCorrecta: []byte(`{"indices":[0]}`),
				PuntosMaximos:     10,
				Orden:             1,
			},
			{
				ActivityID:        "a2",
				Tipo:              "fill_blank",
				Titulo:            "Completa",
				Contenido:         []byte(`{"text":"La hierba es [[verde]].","blanks":["verde"]}`),
				RespuestaCorrecta: []byte(`{"words":["verde"]}`),
				PuntosMaximos:     10,
				Orden:             2,
			},
		},
	}

	repo.On("IsOwner", mock.Anything, uint(4), uint(11)).Return(true, nil)
	repo.On("GetByIDWithActivities", mock.Anything, uint(4)).Return(lesson, nil)

	data, err := svc.ExportLessonToExcel(context.Background(), 4, 11)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Lesson", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Los colores", title)

	count, err := f.GetCellValue("Lesson", "B7")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	header, err := f.GetCellValue("Actividades", "F1")
	require.NoError(t, err)
	assert.Equal(t, "Resumen", header)

	summary, err := f.GetCellValue("Actividades", "F2")
	require.NoError(t, err)
	assert.Contains(t, summary, "3 opciones")

	fbType, err := f.GetCellValue("Actividades", "B3")
	require.NoError(t, err)
	assert.Equal(t, "fill_blank", fbType)

	repo.AssertExpectations(t)
}

func TestExportService_ExportDeniedForNonOwner(t *testing.T) {
	repo := new(MockLessonRepository)
	svc := newTestExportService(repo)

	repo.On("IsOwner", mock.Anything, uint(4), uint(99)).Return(false, nil)

	_, err := svc.ExportLessonToExcel(context.Background(), 4, 99)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	repo.AssertNotCalled(t, "GetByIDWithActivities")
}
