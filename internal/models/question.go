package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionFormat string

const (
	MultipleChoice QuestionFormat = "multiple_choice"
	TrueFalse      QuestionFormat = "true_false"
	ShortAnswer    QuestionFormat = "short_answer"
)

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

type Question struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	QuizID *uint `json:"quiz_id" gorm:"index"`

	Content string         `json:"content" gorm:"type:text;not null" validate:"required,min=1,max=2000"`
	Format  QuestionFormat `json:"format" gorm:"not null;index" validate:"required,oneof=multiple_choice true_false short_answer"`

	// Options stored as JSONB for flexibility across formats
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"` // []QuestionOption
	CorrectAnswer string         `json:"correct_answer" gorm:"size:500"`

	Points      int             `json:"points" gorm:"default:1" validate:"omitempty,min=1,max=100"`
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"default:beginner;index" validate:"omitempty,oneof=beginner intermediate advanced"`
	Explanation *string         `json:"explanation" gorm:"type:text" validate:"omitempty,max=1000"`

	Verification QuestionVerification `json:"verification" gorm:"embedded;embeddedPrefix:verification_"`

	IsActive bool `json:"is_active" gorm:"default:true;index"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

// QuestionVerification records the one-way verified transition. Once
// Verified is true it never goes back.
type QuestionVerification struct {
	Verified     bool       `json:"verified" gorm:"default:false;index"`
	VerifierID   *string    `json:"verifier_id" gorm:"size:255"`
	QualityScore *int       `json:"quality_score" validate:"omitempty,min=0,max=10"`
	Feedback     *string    `json:"feedback" gorm:"type:text"`
	VerifiedAt   *time.Time `json:"verified_at"`
}

type QuestionOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// Verify applies the one-way verified transition.
func (q *Question) Verify(verifierID string, qualityScore int, feedback *string, at time.Time) {
	q.Verification.Verified = true
	q.Verification.VerifierID = &verifierID
	q.Verification.QualityScore = &qualityScore
	q.Verification.Feedback = feedback
	q.Verification.VerifiedAt = &at
}
