package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of lesson events
type EventType string

const (
	EventLessonCreated   EventType = "lesson.created"
	EventLessonUpdated   EventType = "lesson.updated"
	EventLessonPublished EventType = "lesson.published"
	EventLessonArchived  EventType = "lesson.archived"
	EventLessonDeleted   EventType = "lesson.deleted"
)

// LessonEvent is the base event structure for all lesson events
type LessonEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type LessonCreatedEvent struct {
	LessonID    uint   `json:"lesson_id"`
	Title       string `json:"title"`
	Level       string `json:"level"`
	Language    string `json:"language"`
	CreatorID   uint   `json:"creator_id"`
	ActivityCnt int    `json:"activity_count"`
}

type LessonPublishedEvent struct {
	LessonID    uint      `json:"lesson_id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Language    string    `json:"language"`
	PublishedAt time.Time `json:"published_at"`
	CreatorID   uint      `json:"creator_id"`
	ActivityCnt int       `json:"activity_count"`
}

type LessonUpdatedEvent struct {
	LessonID    uint      `json:"lesson_id"`
	Title       string    `json:"title"`
	UpdatedAt   time.Time `json:"updated_at"`
	ActivityCnt int       `json:"activity_count"`
}

type LessonArchivedEvent struct {
	LessonID   uint      `json:"lesson_id"`
	Title      string    `json:"title"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Event factory functions

func NewLessonCreatedEvent(lessonID uint, title, level, language string, creatorID uint, activityCount int) *LessonEvent {
	return &LessonEvent{
		ID:        generateEventID(),
		Type:      EventLessonCreated,
		Timestamp: time.Now(),
		Source:    "lesson-service",
		Version:   "1.0",
		Data: LessonCreatedEvent{
			LessonID:    lessonID,
			Title:       title,
			Level:       level,
			Language:    language,
			CreatorID:   creatorID,
			ActivityCnt: activityCount,
		},
	}
}

func NewLessonPublishedEvent(lessonID uint, title, level, language string, creatorID uint, activityCount int) *LessonEvent {
	return &LessonEvent{
		ID:        generateEventID(),
		Type:      EventLessonPublished,
		Timestamp: time.Now(),
		Source:    "lesson-service",
		Version:   "1.0",
		Data: LessonPublishedEvent{
			LessonID:    lessonID,
			Title:       title,
			Level:       level,
			Language:    language,
			PublishedAt: time.Now(),
			CreatorID:   creatorID,
			ActivityCnt: activityCount,
		},
	}
}

func NewLessonUpdatedEvent(lessonID uint, title string, activityCount int) *LessonEvent {
	return &LessonEvent{
		ID:        generateEventID(),
		Type:      EventLessonUpdated,
		Timestamp: time.Now(),
		Source:    "lesson-service",
		Version:   "1.0",
		Data: LessonUpdatedEvent{
			LessonID:    lessonID,
			Title:       title,
			UpdatedAt:   time.Now(),
			ActivityCnt: activityCount,
		},
	}
}

func NewLessonArchivedEvent(lessonID uint, title string) *LessonEvent {
	return &LessonEvent{
		ID:        generateEventID(),
		Type:      EventLessonArchived,
		Timestamp: time.Now(),
		Source:    "lesson-service",
		Version:   "1.0",
		Data: LessonArchivedEvent{
			LessonID:   lessonID,
			Title:      title,
			ArchivedAt: time.Now(),
		},
	}
}

func generateEventID() string {
	return uuid.NewString()
}
