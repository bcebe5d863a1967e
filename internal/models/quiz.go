package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuizStatus string

const (
	QuizActive   QuizStatus = "active"
	QuizInactive QuizStatus = "inactive"
)

type Quiz struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null;size:200;index" validate:"required,min=2,max=200"`

	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// References stored as JSONB id arrays
	TopicIDs    datatypes.JSON `json:"topic_ids" gorm:"type:jsonb"`    // []uint
	QuestionIDs datatypes.JSON `json:"question_ids" gorm:"type:jsonb"` // []uint

	// TotalQuestions is derived from QuestionIDs and recomputed whenever
	// QuestionIDs changes. Never trust a client-supplied value.
	TotalQuestions  int `json:"total_questions" gorm:"default:0"`
	TotalPoints     int `json:"total_points" gorm:"default:0" validate:"omitempty,min=0,max=1000"`
	DurationMinutes int `json:"duration_minutes" gorm:"default:0" validate:"omitempty,min=0,max=300"`

	RetakePolicy RetakePolicy  `json:"retake_policy" gorm:"embedded;embeddedPrefix:retake_"`
	Analytics    QuizAnalytics `json:"analytics" gorm:"embedded;embeddedPrefix:analytics_"`

	IsActive bool       `json:"is_active" gorm:"default:true;index"`
	Status   QuizStatus `json:"status" gorm:"default:active;index" validate:"omitempty,oneof=active inactive"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Subject Subject      `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Results []QuizResult `json:"results,omitempty" gorm:"foreignKey:QuizID"`
}

type RetakePolicy struct {
	MaxAttempts   int `json:"max_attempts" gorm:"default:3" validate:"omitempty,min=1,max=10"`
	CooldownHours int `json:"cooldown_hours" gorm:"default:24" validate:"omitempty,min=0,max=720"`
}

// QuizAnalytics is a denormalized snapshot recomputed on demand from the
// quiz's results. It is not kept in sync on every result insert.
type QuizAnalytics struct {
	TotalAttempts     int            `json:"total_attempts" gorm:"default:0"`
	AverageScore      float64        `json:"average_score" gorm:"default:0"`
	AverageTime       float64        `json:"average_time" gorm:"default:0"`
	CompletionRate    float64        `json:"completion_rate" gorm:"default:0"`
	ScoreDistribution datatypes.JSON `json:"score_distribution" gorm:"type:jsonb"` // []ScoreBucket
	LastCalculatedAt  *time.Time     `json:"last_calculated_at"`
}

// ScoreBucket is one 20% segment of a quiz's total points. A score lands in
// the bucket where Min < score <= Max.
type ScoreBucket struct {
	Label string  `json:"label"` // e.g. "0-20%"
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// DecodeIDs unpacks a JSONB id array column.
func DecodeIDs(raw datatypes.JSON) []uint {
	if len(raw) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeIDs packs an id slice into a JSONB column value.
func EncodeIDs(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}
	raw, _ := json.Marshal(ids)
	return raw
}

// SyncTotalQuestions recomputes the derived question count from QuestionIDs.
func (q *Quiz) SyncTotalQuestions() {
	q.TotalQuestions = len(DecodeIDs(q.QuestionIDs))
}

// NextRetakeTime returns when the cooldown window after lastAttempt closes.
func (p RetakePolicy) NextRetakeTime(lastAttempt time.Time) time.Time {
	return lastAttempt.Add(time.Duration(p.CooldownHours) * time.Hour)
}

// Deactivate flips the quiz into its soft-deleted state, preserving
// referential integrity with historical results.
func (q *Quiz) Deactivate() {
	q.IsActive = false
	q.Status = QuizInactive
}
