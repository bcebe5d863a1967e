package models

import "time"

// QuizResult is immutable once created. It is the source of truth for the
// quiz analytics snapshot.
type QuizResult struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	UserID string `json:"user_id" gorm:"not null;index;size:255"`

	Score       float64 `json:"score" gorm:"not null" validate:"min=0"`
	TotalPoints int     `json:"total_points" gorm:"not null" validate:"min=0"`
	TimeTaken   int     `json:"time_taken" gorm:"not null" validate:"min=0"` // seconds

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Quiz Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

// Completed reports whether the result counts toward the completion rate.
func (r *QuizResult) Completed() bool {
	return r.Score > 0
}
