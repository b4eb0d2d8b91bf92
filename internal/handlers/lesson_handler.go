package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/repositories"
	"github.com/speaklexi/lesson-service/internal/services"
	"github.com/speaklexi/lesson-service/internal/utils"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
	exportService services.ExportService
}

func NewLessonHandler(
	lessonService services.LessonService,
	exportService services.ExportService,
	logger utils.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
		exportService: exportService,
	}
}

// CreateLesson creates a new lesson
// @Summary Create lesson
// @Description Creates a new lesson with its activities
// @Tags lessons
// @Accept json
// @Produce json
// @Param lesson body services.CreateLessonRequest true "Lesson data"
// @Success 201 {object} services.LessonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /lecciones/crear [post]
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Lesson created",
		Data:    lesson,
	})
}

// GetLesson retrieves a lesson by ID with its activities
// @Summary Get lesson
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} services.LessonResponse
// @Failure 404 {object} ErrorResponse
// @Router /lecciones/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	lesson, err := h.lessonService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// ListLessons lists lessons with optional filters
// @Summary List lessons
// @Tags lessons
// @Produce json
// @Param nivel query string false "CEFR level"
// @Param idioma query string false "Language"
// @Param estado query string false "Lesson status"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.LessonListResponse
// @Router /lecciones [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	filters := h.parseLessonFilters(c)

	list, err := h.lessonService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateLesson replaces a lesson and its activities
// @Summary Update lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path uint true "Lesson ID"
// @Param lesson body services.UpdateLessonRequest true "Lesson data"
// @Success 200 {object} services.LessonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lecciones/{id} [put]
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lesson updated",
		Data:    lesson,
	})
}

// PublishLesson validates a lesson and marks it activa
// @Summary Publish lesson
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} services.LessonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /lecciones/{id}/publicar [post]
func (h *LessonHandler) PublishLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Publishing lesson", "lesson_id", id)

	lesson, err := h.lessonService.Publish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lesson published",
		Data:    lesson,
	})
}

// ArchiveLesson marks a lesson inactiva
// @Summary Archive lesson
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} SuccessResponse
// @Router /lecciones/{id}/archivar [post]
func (h *LessonHandler) ArchiveLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.lessonService.Archive(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lesson archived",
	})
}

// DeleteLesson soft-deletes a lesson
// @Summary Delete lesson
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /lecciones/{id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lesson deleted",
	})
}

// ExportLesson downloads the lesson as an xlsx workbook
// @Summary Export lesson to Excel
// @Tags lessons
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Lesson ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lecciones/{id}/exportar [get]
func (h *LessonHandler) ExportLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportLessonToExcel(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leccion_%d.xlsx", id)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *LessonHandler) parseLessonFilters(c *gin.Context) repositories.LessonFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.LessonFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if nivel := c.Query("nivel"); nivel != "" {
		filters.Nivel = &nivel
	}
	if idioma := c.Query("idioma"); idioma != "" {
		filters.Idioma = &idioma
	}
	if estado := c.Query("estado"); estado != "" {
		status := models.LessonStatus(estado)
		filters.Estado = &status
	}

	return filters
}
