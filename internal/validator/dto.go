package validator

import (
	"github.com/edupath/content-service/internal/models"
)

// SubjectCreateRequest represents the request structure for creating subjects
type SubjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,subject_name"`
	Code        string  `json:"code" validate:"required,subject_code"`
	Category    string  `json:"category" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`

	ExamTypes       []string `json:"exam_types" validate:"omitempty,max=20,dive,max=50"`
	Countries       []string `json:"countries" validate:"omitempty,max=50,dive,max=50"`
	EducationLevels []string `json:"education_levels" validate:"omitempty,max=20,dive,max=50"`
	Series          []string `json:"series" validate:"omitempty,max=20,dive,max=50"`

	IsPremium  *bool `json:"is_premium"`
	IsFeatured *bool `json:"is_featured"`
}

// SubjectUpdateRequest represents the request structure for updating subjects.
// All fields are optional; absent fields are left untouched.
type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,subject_name"`
	Code        *string `json:"code" validate:"omitempty,subject_code"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`

	ExamTypes       []string `json:"exam_types" validate:"omitempty,max=20,dive,max=50"`
	Countries       []string `json:"countries" validate:"omitempty,max=50,dive,max=50"`
	EducationLevels []string `json:"education_levels" validate:"omitempty,max=20,dive,max=50"`
	Series          []string `json:"series" validate:"omitempty,max=20,dive,max=50"`

	IsActive   *bool                 `json:"is_active"`
	IsPremium  *bool                 `json:"is_premium"`
	IsFeatured *bool                 `json:"is_featured"`
	Status     *models.SubjectStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// LessonCreateRequest represents the request structure for creating lessons
type LessonCreateRequest struct {
	SubjectID       uint    `json:"subject_id" validate:"required"`
	Title           string  `json:"title" validate:"required,content_title"`
	Slug            string  `json:"slug" validate:"required,lesson_slug"`
	Description     *string `json:"description" validate:"omitempty,max=1000"`
	Content         string  `json:"content"`
	Order           int     `json:"order" validate:"omitempty,min=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,min=0,max=600"`
}

// LessonUpdateRequest represents the request structure for updating lessons
type LessonUpdateRequest struct {
	Title           *string              `json:"title" validate:"omitempty,content_title"`
	Slug            *string              `json:"slug" validate:"omitempty,lesson_slug"`
	Description     *string              `json:"description" validate:"omitempty,max=1000"`
	Content         *string              `json:"content"`
	Order           *int                 `json:"order" validate:"omitempty,min=0"`
	DurationMinutes *int                 `json:"duration_minutes" validate:"omitempty,min=0,max=600"`
	IsActive        *bool                `json:"is_active"`
	Status          *models.LessonStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// QuizCreateRequest represents the request structure for creating quizzes
type QuizCreateRequest struct {
	SubjectID   uint    `json:"subject_id" validate:"required"`
	Title       string  `json:"title" validate:"required,content_title"`
	Description *string `json:"description" validate:"omitempty,max=1000"`

	TopicIDs    []uint `json:"topic_ids" validate:"omitempty,max=50"`
	QuestionIDs []uint `json:"question_ids" validate:"omitempty,max=200"`

	TotalPoints     int `json:"total_points" validate:"omitempty,min=0,max=1000"`
	DurationMinutes int `json:"duration_minutes" validate:"omitempty,min=0,max=300"`

	RetakePolicy *RetakePolicyRequest `json:"retake_policy"`
}

// QuizUpdateRequest represents the request structure for updating quizzes
type QuizUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,content_title"`
	Description *string `json:"description" validate:"omitempty,max=1000"`

	TopicIDs    []uint `json:"topic_ids" validate:"omitempty,max=50"`
	QuestionIDs []uint `json:"question_ids" validate:"omitempty,max=200"`

	TotalPoints     *int `json:"total_points" validate:"omitempty,min=0,max=1000"`
	DurationMinutes *int `json:"duration_minutes" validate:"omitempty,min=0,max=300"`

	RetakePolicy *RetakePolicyRequest `json:"retake_policy"`

	IsActive *bool              `json:"is_active"`
	Status   *models.QuizStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// RetakePolicyRequest represents a quiz retake policy payload
type RetakePolicyRequest struct {
	MaxAttempts   *int `json:"max_attempts" validate:"omitempty,max_attempts"`
	CooldownHours *int `json:"cooldown_hours" validate:"omitempty,min=0,max=720"`
}

// QuizBulkUpdateRequest patches a set of quizzes in one operation
type QuizBulkUpdateRequest struct {
	IDs      []uint             `json:"ids" validate:"required,min=1,max=100"`
	IsActive *bool              `json:"is_active"`
	Status   *models.QuizStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// SubmitResultRequest represents the request structure for recording a quiz result
type SubmitResultRequest struct {
	QuizID      uint    `json:"quiz_id" validate:"required"`
	Score       float64 `json:"score" validate:"min=0"`
	TotalPoints int     `json:"total_points" validate:"omitempty,min=0,max=1000"`
	TimeTaken   int     `json:"time_taken" validate:"omitempty,min=0"`
}

// QuestionCreateRequest represents the request structure for creating questions
type QuestionCreateRequest struct {
	QuizID        *uint                    `json:"quiz_id"`
	Content       string                   `json:"content" validate:"required,min=1,max=2000"`
	Format        models.QuestionFormat    `json:"format" validate:"required,question_format"`
	Options       []models.QuestionOption  `json:"options" validate:"omitempty,max=10"`
	CorrectAnswer string                   `json:"correct_answer" validate:"omitempty,max=500"`
	Points        int                      `json:"points" validate:"omitempty,points_range"`
	Difficulty    models.DifficultyLevel   `json:"difficulty" validate:"omitempty,difficulty_level"`
	Explanation   *string                  `json:"explanation" validate:"omitempty,max=1000"`
}

// QuestionUpdateRequest represents the request structure for updating questions
type QuestionUpdateRequest struct {
	QuizID        *uint                   `json:"quiz_id"`
	Content       *string                 `json:"content" validate:"omitempty,min=1,max=2000"`
	Format        *models.QuestionFormat  `json:"format" validate:"omitempty,question_format"`
	Options       []models.QuestionOption `json:"options" validate:"omitempty,max=10"`
	CorrectAnswer *string                 `json:"correct_answer" validate:"omitempty,max=500"`
	Points        *int                    `json:"points" validate:"omitempty,points_range"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Explanation   *string                 `json:"explanation" validate:"omitempty,max=1000"`
	IsActive      *bool                   `json:"is_active"`
}

// QuestionBulkUpdateRequest patches a set of questions in one operation
type QuestionBulkUpdateRequest struct {
	IDs        []uint                  `json:"ids" validate:"required,min=1,max=100"`
	Difficulty *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Points     *int                    `json:"points" validate:"omitempty,points_range"`
	IsActive   *bool                   `json:"is_active"`
}

// QuestionVerifyRequest applies the one-way verified transition
type QuestionVerifyRequest struct {
	QualityScore int     `json:"quality_score" validate:"min=0,max=10"`
	Feedback     *string `json:"feedback" validate:"omitempty,max=1000"`
}

// ProgressUpdateRequest upserts a learner's progress in a lesson
type ProgressUpdateRequest struct {
	LessonID          uint                   `json:"lesson_id" validate:"required"`
	Status            *models.ProgressStatus `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	CompletionPercent *int                   `json:"completion_percent" validate:"omitempty,min=0,max=100"`
}
