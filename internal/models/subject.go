package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type SubjectStatus string

const (
	SubjectActive   SubjectStatus = "active"
	SubjectInactive SubjectStatus = "inactive"
)

type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100;index" validate:"required,min=2,max=100"`
	Code string `json:"code" gorm:"not null;size:20;index" validate:"required,min=2,max=20"`

	Category    string  `json:"category" gorm:"size:50;index"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// Classification stored as JSONB string arrays
	ExamTypes       datatypes.JSON `json:"exam_types" gorm:"type:jsonb"`       // []string
	Countries       datatypes.JSON `json:"countries" gorm:"type:jsonb"`        // []string
	EducationLevels datatypes.JSON `json:"education_levels" gorm:"type:jsonb"` // []string
	Series          datatypes.JSON `json:"series" gorm:"type:jsonb"`           // []string

	// Flags
	IsActive   bool          `json:"is_active" gorm:"default:true;index"`
	IsPremium  bool          `json:"is_premium" gorm:"default:false"`
	IsFeatured bool          `json:"is_featured" gorm:"default:false;index"`
	Status     SubjectStatus `json:"status" gorm:"default:active;index" validate:"omitempty,oneof=active inactive"`

	// Denormalized counters
	Stats SubjectStats `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`

	// Metadata
	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:SubjectID"`
	Quizzes []Quiz   `json:"quizzes,omitempty" gorm:"foreignKey:SubjectID"`
}

type SubjectStats struct {
	TotalLessons   int `json:"total_lessons" gorm:"default:0"`
	TotalQuizzes   int `json:"total_quizzes" gorm:"default:0"`
	TotalQuestions int `json:"total_questions" gorm:"default:0"`
}

func (Subject) TableName() string {
	return "subjects"
}

// NormalizeCode uppercases the code the way it is stored and compared.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EncodeStrings packs a string slice into a JSONB column value.
func EncodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return raw
}

// DecodeStrings unpacks a JSONB string array column.
func DecodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

// Deactivate flips the subject into its soft-deleted state. Subjects are
// never removed physically because lessons and quizzes reference them.
func (s *Subject) Deactivate() {
	s.IsActive = false
	s.Status = SubjectInactive
}
