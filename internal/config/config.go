package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseDSN     string
	RedisURL        string
	JWTSecret       string
	Environment     string
	LessonAPIURL    string
	AutoSaveSeconds int
	Events          EventConfig
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine outside development, env vars still apply.
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "speaklexi:speaklexi@tcp(localhost:3306)/speaklexi?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:       getEnv("JWT_SECRET", "supersecretkey"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LessonAPIURL:    getEnv("LESSON_API_URL", "http://localhost:8080/api/v1"),
		AutoSaveSeconds: getEnvInt("AUTOSAVE_SECONDS", 30),
		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", true),
			Publisher:    getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			LessonTopic:  getEnv("LESSON_TOPIC", "lessons"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
