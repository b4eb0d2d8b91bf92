package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/repositories"
)

// ExportService produces downloadable snapshots of a lesson for review
// outside the editor.
type ExportService interface {
	ExportLessonToExcel(ctx context.Context, lessonID uint, userID uint) ([]byte, error)
}

type exportService struct {
	repo    repositories.LessonRepository
	adapter *adapter.Adapter
	logger  *slog.Logger
}

func NewExportService(repo repositories.LessonRepository, ad *adapter.Adapter, logger *slog.Logger) ExportService {
	return &exportService{
		repo:    repo,
		adapter: ad,
		logger:  logger,
	}
}

// ExportLessonToExcel writes the lesson summary and its activities to an
// xlsx workbook with one sheet for each.
func (s *exportService) ExportLessonToExcel(ctx context.Context, lessonID uint, userID uint) ([]byte, error) {
	owner, err := s.repo.IsOwner(ctx, lessonID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check lesson ownership: %w", err)
	}
	if !owner {
		return nil, NewPermissionError(userID, lessonID, "lesson", "export", "not the lesson creator")
	}

	lesson, err := s.repo.GetByIDWithActivities(ctx, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to load lesson: %w", err)
	}

	f := excelize.NewFile()

	if err := s.writeSummarySheet(f, lesson); err != nil {
		return nil, err
	}
	if err := s.writeActivitiesSheet(f, lesson); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported lesson to Excel",
		"lesson_id", lessonID,
		"activities", len(lesson.Activities),
		"bytes", buf.Len())

	return buf.Bytes(), nil
}

func (s *exportService) writeSummarySheet(f *excelize.File, lesson *models.Lesson) error {
	sheetName := "Lesson"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	rows := [][2]interface{}{
		{"Título", lesson.Titulo},
		{"Descripción", lesson.Descripcion},
		{"Nivel", lesson.Nivel},
		{"Idioma", lesson.Idioma},
		{"Duración (min)", lesson.DuracionMinutos},
		{"Estado", string(lesson.Estado)},
		{"Actividades", len(lesson.Activities)},
		{"Creado", lesson.CreatedAt.Format("2006-01-02 15:04")},
		{"Actualizado", lesson.UpdatedAt.Format("2006-01-02 15:04")},
	}

	for i, row := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+1), row[1])
	}
	return nil
}

func (s *exportService) writeActivitiesSheet(f *excelize.File, lesson *models.Lesson) error {
	sheetName := "Actividades"

	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Orden", "Tipo", "Título", "Descripción", "Puntos", "Resumen"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, act := range lesson.Activities {
		row := []interface{}{
			act.Orden,
			act.Tipo,
			act.Titulo,
			act.Descripcion,
			act.PuntosMaximos,
			s.activitySummary(act),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

// activitySummary renders a one-line human description of the activity
// payload for reviewers who read the export without the editor.
func (s *exportService) activitySummary(row models.LessonActivity) string {
	canon := adapter.CanonicalActivity{
		ID:                row.ActivityID,
		Tipo:              row.Tipo,
		Titulo:            row.Titulo,
		Contenido:         []byte(row.Contenido),
		RespuestaCorrecta: []byte(row.RespuestaCorrecta),
		PuntosMaximos:     row.PuntosMaximos,
	}
	act := s.adapter.FromCanonical(canon)

	switch content := act.Content.(type) {
	case *models.MultipleChoiceContent:
		return fmt.Sprintf("%s (%d opciones)", content.Question, len(content.Options))
	case *models.TrueFalseContent:
		return fmt.Sprintf("%d afirmaciones", len(content.Statements))
	case *models.FillBlankContent:
		return fmt.Sprintf("%d espacios: %s", len(content.Blanks), truncate(content.Text, 80))
	case *models.MatchingContent:
		lefts := make([]string, 0, len(content.Pairs))
		for _, p := range content.Pairs {
			lefts = append(lefts, p.Left)
		}
		return fmt.Sprintf("%d pares: %s", len(content.Pairs), truncate(strings.Join(lefts, ", "), 80))
	case *models.WritingContent:
		return fmt.Sprintf("mín. %d palabras: %s", content.MinWords, truncate(content.Prompt, 80))
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
