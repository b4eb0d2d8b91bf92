package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/speaklexi/lesson-service/internal/services"
	"github.com/speaklexi/lesson-service/internal/utils"
)

type HandlerManager struct {
	lessonHandler *LessonHandler
	jwtSecret     string
}

func NewHandlerManager(
	lessonService services.LessonService,
	exportService services.ExportService,
	jwtSecret string,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		lessonHandler: NewLessonHandler(lessonService, exportService, logger),
		jwtSecret:     jwtSecret,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lesson-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.jwtSecret))
	{
		lessons := v1.Group("/lecciones")
		{
			lessons.POST("/crear", hm.lessonHandler.CreateLesson)
			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
			lessons.PUT("/:id", hm.lessonHandler.UpdateLesson)
			lessons.DELETE("/:id", hm.lessonHandler.DeleteLesson)
			lessons.POST("/:id/publicar", hm.lessonHandler.PublishLesson)
			lessons.POST("/:id/archivar", hm.lessonHandler.ArchiveLesson)
			lessons.GET("/:id/exportar", hm.lessonHandler.ExportLesson)
		}
	}
}
