package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/speaklexi/lesson-service/internal/activities"
	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/cache"
	"github.com/speaklexi/lesson-service/internal/config"
	"github.com/speaklexi/lesson-service/internal/handlers"
	"github.com/speaklexi/lesson-service/internal/models"
	"github.com/speaklexi/lesson-service/internal/repositories/mysql"
	"github.com/speaklexi/lesson-service/internal/services"
	"github.com/speaklexi/lesson-service/internal/utils"
	"github.com/speaklexi/lesson-service/internal/validator"
	"github.com/speaklexi/lesson-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Lesson{}, &models.LessonActivity{}); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, slogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	registry := activities.NewRegistry()
	ad := adapter.New(registry, slogger)
	v := validator.New(registry)

	lessonRepo := mysql.NewLessonMySQL(db)
	lessonService := services.NewLessonService(lessonRepo, ad, v, cacheService, publisher, slogger)
	exportService := services.NewExportService(lessonRepo, ad, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(lessonService, exportService, cfg.JWTSecret, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting lesson service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
