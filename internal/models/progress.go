package models

import "time"

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// Progress tracks a learner's position in a lesson. One row per
// (user_id, lesson_id); writes are upserts.
type Progress struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    string `json:"user_id" gorm:"not null;size:255;index:idx_progress_user_lesson,unique"`
	LessonID  uint   `json:"lesson_id" gorm:"not null;index:idx_progress_user_lesson,unique"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`

	Status            ProgressStatus `json:"status" gorm:"default:not_started" validate:"omitempty,oneof=not_started in_progress completed"`
	CompletionPercent int            `json:"completion_percent" gorm:"default:0" validate:"omitempty,min=0,max=100"`

	LastAccessedAt time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Lesson  Lesson  `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Progress) TableName() string {
	return "progress"
}
