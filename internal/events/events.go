package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the content service.
const (
	QuizResultRecorded     = "quiz.result.recorded"
	QuizAnalyticsRefreshed = "quiz.analytics.refreshed"
	QuizDeactivated        = "quiz.deactivated"
	SubjectDeactivated     = "subject.deactivated"
	QuestionVerified       = "question.verified"
	LessonCompleted        = "lesson.completed"
)

// Event is the wire format published to the message broker.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ActorID    string      `json:"actor_id,omitempty"`
	Payload    interface{} `json:"payload"`
}

// NewEvent builds an event with a fresh id and the current timestamp.
func NewEvent(eventType, actorID string, payload interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload:    payload,
	}
}
