package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupath/content-service/internal/cache"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create inserts a new quiz and invalidates list caches
func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, "list:*")
	return nil
}

// GetByID retrieves a quiz by ID with caching
func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var quiz models.Quiz

	err := q.cacheManager.Quiz.CacheOrExecute(ctx, cacheKey, &quiz, cache.QuizCacheConfig.TTL, func() (interface{}, error) {
		var dbQuiz models.Quiz
		if err := db.WithContext(ctx).First(&dbQuiz, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("quiz %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get quiz: %w", err)
		}
		return &dbQuiz, nil
	})

	if err != nil {
		return nil, err
	}

	return &quiz, nil
}

// GetByIDWithDetails retrieves a quiz with a display-safe subject summary
func (q *QuizPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).
		Preload("Subject", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, code, category")
		}).
		First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz with details: %w", err)
	}
	return &quiz, nil
}

// Update saves a quiz and invalidates its cache entries
func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(quiz).Error; err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, fmt.Sprintf("id:%d", quiz.ID))
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, "list:*")
	return nil
}

// HardDelete removes a quiz row permanently. Callers must have verified the
// quiz has no results.
func (q *QuizPostgreSQL) HardDelete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)
	res := db.WithContext(ctx).Unscoped().Delete(&models.Quiz{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete quiz: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("quiz %d: %w", id, repositories.ErrNotFound)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, fmt.Sprintf("id:%d", id))
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, "list:*")
	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves quizzes with filtering and pagination
func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Quiz{})

	query = q.helpers.ApplyQuizFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, "created_at", filters.Limit, filters.Offset)

	var quizzes []*models.Quiz
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	return quizzes, total, nil
}

// GetBySubject retrieves quizzes for a subject
func (q *QuizPostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	filters.SubjectID = &subjectID
	return q.List(ctx, tx, filters)
}

// GetPopular retrieves active quizzes ordered by recorded attempts
func (q *QuizPostgreSQL) GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Quiz, error) {
	db := q.getDB(tx)
	if limit <= 0 {
		limit = 10
	}

	var quizzes []*models.Quiz
	if err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("analytics_total_attempts DESC").
		Limit(limit).
		Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("failed to get popular quizzes: %w", err)
	}

	return quizzes, nil
}

// ===== BULK OPERATIONS =====

// BulkUpdate applies one patch to an id set and reports matched vs modified
// counts separately. A row matches when its id is in the set; it is modified
// only when the patch actually changes it.
func (q *QuizPostgreSQL) BulkUpdate(ctx context.Context, tx *gorm.DB, ids []uint, patch map[string]interface{}) (*repositories.BulkUpdateResult, error) {
	result := &repositories.BulkUpdateResult{}
	if len(ids) == 0 || len(patch) == 0 {
		return result, nil
	}

	db := q.getDB(tx)

	if err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id IN ?", ids).
		Count(&result.MatchedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count matching quizzes: %w", err)
	}

	// Only rows where at least one patched column differs are touched, so
	// RowsAffected is the modified count.
	condition, args := ChangedRowsPredicate(patch)
	res := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id IN ?", ids).
		Where(condition, args...).
		Updates(patch)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to bulk update quizzes: %w", res.Error)
	}
	result.ModifiedCount = res.RowsAffected

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, "*")
	return result, nil
}

// ===== DEPENDENT-RECORD PREDICATE =====

// HasResults reports whether any results reference the quiz. This single
// predicate drives the soft-vs-hard delete branch.
func (q *QuizPostgreSQL) HasResults(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.QuizResult{}).
		Where("quiz_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count quiz results: %w", err)
	}
	return count > 0, nil
}
