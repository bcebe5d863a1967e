package repositories

import (
	"context"

	"github.com/edupath/content-service/internal/models"
	"gorm.io/gorm"
)

// QuizRepository interface for quiz-specific operations
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) // Include subject summary
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error

	// Lifecycle: HardDelete removes the row; callers must have checked that
	// no results reference the quiz.
	HardDelete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Quiz, error)

	// Bulk operations
	BulkUpdate(ctx context.Context, tx *gorm.DB, ids []uint, patch map[string]interface{}) (*BulkUpdateResult, error)

	// Dependent-record predicate driving the soft/hard delete branch
	HasResults(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

// QuizResultRepository interface for quiz result operations. Results are
// append-only; there is no update or delete.
type QuizResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizResult, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ResultFilters) ([]*models.QuizResult, int64, error)
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizResult, error)

	// Retake eligibility inputs
	GetRetakeStatus(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (*RetakeStatus, error)

	CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error)
}
