package repositories

import (
	"context"

	"github.com/edupath/content-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question-specific operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
	BulkUpdate(ctx context.Context, tx *gorm.DB, ids []uint, patch map[string]interface{}) (*BulkUpdateResult, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error)
	CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error)
}

// LessonRepository interface for lesson operations
type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error

	List(ctx context.Context, tx *gorm.DB, filters LessonFilters) ([]*models.Lesson, int64, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Lesson, error)

	ExistsBySlug(ctx context.Context, tx *gorm.DB, subjectID uint, slug string, excludeID *uint) (bool, error)
}

// ProgressRepository interface for learner progress operations
type ProgressRepository interface {
	// Upsert writes the single row for (user, lesson)
	Upsert(ctx context.Context, tx *gorm.DB, progress *models.Progress) error
	GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID string, lessonID uint) (*models.Progress, error)

	List(ctx context.Context, tx *gorm.DB, filters ProgressFilters) ([]*models.Progress, int64, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters ProgressFilters) ([]*models.Progress, int64, error)
}

// UserRepository interface - read-only, backed by the identity provider
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)
}
