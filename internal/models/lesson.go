package models

import "time"

type LessonStatus string

const (
	LessonActive   LessonStatus = "active"
	LessonInactive LessonStatus = "inactive"
)

type Lesson struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null;size:200" validate:"required,min=2,max=200"`
	Slug      string `json:"slug" gorm:"not null;size:200;index:idx_lessons_subject_slug"`

	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Content     string  `json:"content" gorm:"type:text"`

	Order           int `json:"order" gorm:"default:0"`
	DurationMinutes int `json:"duration_minutes" gorm:"default:0" validate:"omitempty,min=0,max=600"`

	IsActive bool         `json:"is_active" gorm:"default:true;index"`
	Status   LessonStatus `json:"status" gorm:"default:active" validate:"omitempty,oneof=active inactive"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) Deactivate() {
	l.IsActive = false
	l.Status = LessonInactive
}
