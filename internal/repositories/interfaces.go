package repositories

import (
	"time"

	"github.com/edupath/content-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SubjectFilters struct {
	Category   *string               `json:"category"`
	Country    *string               `json:"country"`
	ExamType   *string               `json:"exam_type"`
	IsActive   *bool                 `json:"is_active"`
	IsPremium  *bool                 `json:"is_premium"`
	IsFeatured *bool                 `json:"is_featured"`
	Status     *models.SubjectStatus `json:"status"`
	Search     string                `json:"search"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	SortBy     string                `json:"sort_by"`    // "name", "code", "created_at"
	SortOrder  string                `json:"sort_order"` // "asc", "desc"
}

type LessonFilters struct {
	SubjectID *uint                `json:"subject_id"`
	IsActive  *bool                `json:"is_active"`
	Status    *models.LessonStatus `json:"status"`
	Search    string               `json:"search"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`
	SortOrder string               `json:"sort_order"`
}

type QuizFilters struct {
	SubjectID *uint              `json:"subject_id"`
	IsActive  *bool              `json:"is_active"`
	Status    *models.QuizStatus `json:"status"`
	CreatedBy *string            `json:"created_by"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

type QuestionFilters struct {
	QuizID     *uint                   `json:"quiz_id"`
	Format     *models.QuestionFormat  `json:"format"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Verified   *bool                   `json:"verified"`
	CreatedBy  *string                 `json:"created_by"`
	Search     string                  `json:"search"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

type ResultFilters struct {
	QuizID   *uint      `json:"quiz_id"`
	UserID   *string    `json:"user_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type ProgressFilters struct {
	UserID    *string                `json:"user_id"`
	SubjectID *uint                  `json:"subject_id"`
	Status    *models.ProgressStatus `json:"status"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

type UserFilters struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ===== SHARED RESULT STRUCTS =====

// BulkUpdateResult reports matched and modified counts separately: a record
// can match the id filter yet be unmodified when the patch is a no-op.
type BulkUpdateResult struct {
	MatchedCount  int64 `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
}

// RetakeStatus is the raw material for a retake-eligibility decision.
type RetakeStatus struct {
	AttemptCount  int        `json:"attempt_count"`
	LastAttemptAt *time.Time `json:"last_attempt_at"`
}

type SubjectStatsSummary struct {
	TotalSubjects    int `json:"total_subjects"`
	ActiveSubjects   int `json:"active_subjects"`
	FeaturedSubjects int `json:"featured_subjects"`
	PremiumSubjects  int `json:"premium_subjects"`
}
