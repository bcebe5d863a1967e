package services

import (
	"context"
	"time"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateSubjectRequest = validator.SubjectCreateRequest
type UpdateSubjectRequest = validator.SubjectUpdateRequest
type CreateLessonRequest = validator.LessonCreateRequest
type UpdateLessonRequest = validator.LessonUpdateRequest
type CreateQuizRequest = validator.QuizCreateRequest
type UpdateQuizRequest = validator.QuizUpdateRequest
type BulkUpdateQuizRequest = validator.QuizBulkUpdateRequest
type SubmitResultRequest = validator.SubmitResultRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type BulkUpdateQuestionRequest = validator.QuestionBulkUpdateRequest
type VerifyQuestionRequest = validator.QuestionVerifyRequest
type UpdateProgressRequest = validator.ProgressUpdateRequest

// Pagination is the list envelope shared by every paged response.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination derives the envelope from a 1-based page, a limit and the
// total row count. totalPages is ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && total > 0,
	}
}

type SubjectResponse struct {
	*models.Subject
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type SubjectListResponse struct {
	Subjects   []*SubjectResponse `json:"subjects"`
	Pagination Pagination         `json:"pagination"`
}

type LessonResponse struct {
	*models.Lesson
	CanEdit bool `json:"can_edit"`
}

type LessonListResponse struct {
	Lessons    []*LessonResponse `json:"lessons"`
	Pagination Pagination        `json:"pagination"`
}

type QuizResponse struct {
	*models.Quiz
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type QuizListResponse struct {
	Quizzes    []*QuizResponse `json:"quizzes"`
	Pagination Pagination      `json:"pagination"`
}

type ResultListResponse struct {
	Results    []*models.QuizResult `json:"results"`
	Pagination Pagination           `json:"pagination"`
}

// QuizDeleteOutcome reports which lifecycle branch a delete took.
type QuizDeleteOutcome struct {
	QuizID      uint   `json:"quiz_id"`
	HardDeleted bool   `json:"hard_deleted"`
	Message     string `json:"message"`
}

// RetakeEligibility is the answer to "may this user attempt this quiz now".
type RetakeEligibility struct {
	QuizID         uint       `json:"quiz_id"`
	UserID         string     `json:"user_id"`
	Eligible       bool       `json:"eligible"`
	AttemptCount   int        `json:"attempt_count"`
	MaxAttempts    int        `json:"max_attempts"`
	Reason         string     `json:"reason,omitempty"`
	NextRetakeTime *time.Time `json:"next_retake_time,omitempty"`
}

type QuestionResponse struct {
	*models.Question
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type QuestionListResponse struct {
	Questions  []*QuestionResponse `json:"questions"`
	Pagination Pagination          `json:"pagination"`
}

type ProgressResponse struct {
	*models.Progress
}

type ProgressListResponse struct {
	Records    []*models.Progress `json:"records"`
	Pagination Pagination         `json:"pagination"`
}

type UserListResponse struct {
	Users      []models.UserSummary `json:"users"`
	Pagination Pagination           `json:"pagination"`
}

// ===== SERVICE INTERFACES =====

type SubjectService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateSubjectRequest, creatorID string) (*SubjectResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*SubjectResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID string) (*SubjectResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSubjectRequest, userID string) (*SubjectResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.SubjectFilters, userID string) (*SubjectListResponse, error)
	GetFeatured(ctx context.Context, limit int) ([]*SubjectResponse, error)

	// Statistics
	GetStatsSummary(ctx context.Context, userID string) (*repositories.SubjectStatsSummary, error)
	RefreshStats(ctx context.Context, id uint, userID string) error
}

type LessonService interface {
	Create(ctx context.Context, req *CreateLessonRequest, creatorID string) (*LessonResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*LessonResponse, error)
	Update(ctx context.Context, id uint, req *UpdateLessonRequest, userID string) (*LessonResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	List(ctx context.Context, filters repositories.LessonFilters, userID string) (*LessonListResponse, error)
	GetBySubject(ctx context.Context, subjectID uint, userID string) ([]*LessonResponse, error)
}

type QuizService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*QuizResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*QuizResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string) (*QuizResponse, error)
	Delete(ctx context.Context, id uint, userID string) (*QuizDeleteOutcome, error)

	// List and search operations
	List(ctx context.Context, filters repositories.QuizFilters, userID string) (*QuizListResponse, error)
	GetPopular(ctx context.Context, limit int) ([]*QuizResponse, error)
	GetBySubject(ctx context.Context, subjectID uint, userID string) ([]*QuizResponse, error)

	// Results and attempts
	SubmitResult(ctx context.Context, req *SubmitResultRequest, userID string) (*models.QuizResult, error)
	GetResults(ctx context.Context, quizID uint, filters repositories.ResultFilters, userID string) (*ResultListResponse, error)
	GetRetakeEligibility(ctx context.Context, quizID uint, userID string) (*RetakeEligibility, error)

	// Analytics
	RecalculateAnalytics(ctx context.Context, quizID uint, userID string) (*models.QuizAnalytics, error)

	// Bulk operations
	BulkUpdate(ctx context.Context, req *BulkUpdateQuizRequest, userID string) (*repositories.BulkUpdateResult, error)
}

type QuestionService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*QuestionResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*QuestionResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List operations
	List(ctx context.Context, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error)
	GetByQuiz(ctx context.Context, quizID uint, userID string) ([]*QuestionResponse, error)

	// Bulk operations
	CreateBatch(ctx context.Context, questions []*CreateQuestionRequest, creatorID string) ([]*QuestionResponse, error)
	BulkUpdate(ctx context.Context, req *BulkUpdateQuestionRequest, userID string) (*repositories.BulkUpdateResult, error)

	// Verification (one-way)
	Verify(ctx context.Context, id uint, req *VerifyQuestionRequest, verifierID string) (*QuestionResponse, error)
}

type ProgressService interface {
	// Upsert per (user, lesson)
	UpdateProgress(ctx context.Context, req *UpdateProgressRequest, userID string) (*ProgressResponse, error)
	GetByLesson(ctx context.Context, lessonID uint, userID string) (*ProgressResponse, error)
	GetByUser(ctx context.Context, targetUserID string, filters repositories.ProgressFilters, requesterID string) (*ProgressListResponse, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*models.UserSummary, error)
	GetByEmail(ctx context.Context, email string) (*models.UserSummary, error)
	Search(ctx context.Context, query string, filters repositories.UserFilters) (*UserListResponse, error)
}

type ExportService interface {
	// ExportQuizResults renders a quiz's results as an xlsx workbook.
	ExportQuizResults(ctx context.Context, quizID uint, userID string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Subject() SubjectService
	Lesson() LessonService
	Quiz() QuizService
	Question() QuestionService
	Progress() ProgressService
	User() UserService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
