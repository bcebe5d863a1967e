package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizResultPostgreSQL(db *gorm.DB) repositories.QuizResultRepository {
	return &QuizResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *QuizResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create appends a result. Results are immutable once written.
func (r *QuizResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// GetByID retrieves a result by ID
func (r *QuizResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizResult, error) {
	db := r.getDB(tx)
	var result models.QuizResult
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz result %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz result: %w", err)
	}
	return &result, nil
}

// List retrieves results with filtering and pagination
func (r *QuizResultPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	db := r.getDB(tx)
	query := db.WithContext(ctx).Model(&models.QuizResult{})

	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quiz results: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var results []*models.QuizResult
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quiz results: %w", err)
	}

	return results, total, nil
}

// GetByQuiz retrieves every result for a quiz, the input to analytics
// recomputation.
func (r *QuizResultPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizResult, error) {
	db := r.getDB(tx)
	var results []*models.QuizResult
	if err := db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get results for quiz: %w", err)
	}
	return results, nil
}

// GetRetakeStatus returns the attempt count and latest attempt time for a
// user on a quiz.
func (r *QuizResultPostgreSQL) GetRetakeStatus(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (*repositories.RetakeStatus, error) {
	db := r.getDB(tx)
	status := &repositories.RetakeStatus{}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.QuizResult{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	status.AttemptCount = int(count)

	if count > 0 {
		var latest models.QuizResult
		if err := db.WithContext(ctx).
			Where("quiz_id = ? AND user_id = ?", quizID, userID).
			Order("created_at DESC").
			First(&latest).Error; err != nil {
			return nil, fmt.Errorf("failed to get latest attempt: %w", err)
		}
		status.LastAttemptAt = &latest.CreatedAt
	}

	return status, nil
}

// CountByQuiz counts results referencing a quiz
func (r *QuizResultPostgreSQL) CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.QuizResult{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count quiz results: %w", err)
	}
	return count, nil
}
