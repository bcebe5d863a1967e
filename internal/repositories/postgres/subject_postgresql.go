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

type SubjectPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubjectRepository {
	return &SubjectPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create inserts a new subject and invalidates list caches. The unique
// expression indexes on LOWER(name) and code are the final authority for
// uniqueness under concurrent creates.
func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Subject, "list:*")
	return nil
}

// GetByID retrieves a subject by ID with caching
func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var subject models.Subject

	err := s.cacheManager.Subject.CacheOrExecute(ctx, cacheKey, &subject, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubject models.Subject
		if err := db.WithContext(ctx).First(&dbSubject, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("subject %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get subject: %w", err)
		}
		return &dbSubject, nil
	})

	if err != nil {
		return nil, err
	}

	return &subject, nil
}

// GetByIDWithDetails retrieves a subject with lesson and quiz summaries
// restricted to display-safe fields.
func (s *SubjectPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	var subject models.Subject
	if err := db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, subject_id, title, slug, \"order\", duration_minutes, is_active").Order("\"order\" ASC")
		}).
		Preload("Quizzes", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, subject_id, title, total_questions, total_points, is_active")
		}).
		First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subject %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subject with details: %w", err)
	}
	return &subject, nil
}

// Update saves a subject and invalidates its cache entries
func (s *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(subject).Error; err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Subject, fmt.Sprintf("id:%d", subject.ID))
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Subject, "list:*")
	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves subjects with filtering and pagination
func (s *SubjectPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubjectFilters) ([]*models.Subject, int64, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Subject{})

	query = s.helpers.ApplySubjectFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subjects: %w", err)
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, "name", filters.Limit, filters.Offset)

	var subjects []*models.Subject
	if err := query.Find(&subjects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subjects: %w", err)
	}

	return subjects, total, nil
}

// GetFeatured retrieves active featured subjects
func (s *SubjectPostgreSQL) GetFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Subject, error) {
	db := s.getDB(tx)
	if limit <= 0 {
		limit = 10
	}

	var subjects []*models.Subject
	if err := db.WithContext(ctx).
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("name ASC").
		Limit(limit).
		Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to get featured subjects: %w", err)
	}

	return subjects, nil
}

// ===== UNIQUENESS CHECKS =====

// ExistsByName checks name uniqueness case-insensitively among active
// subjects, optionally excluding one record (for updates). Only active rows
// count, matching the partial unique index, so a deactivated subject's name
// can be reused.
func (s *SubjectPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("LOWER(name) = LOWER(?)", name).
		Where("is_active = ?", true)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subject name: %w", err)
	}
	return count > 0, nil
}

// ExistsByCode checks code uniqueness against the normalized form among
// active subjects.
func (s *SubjectPostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("code = ?", models.NormalizeCode(code)).
		Where("is_active = ?", true)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subject code: %w", err)
	}
	return count > 0, nil
}

// ===== COUNTERS =====

// RefreshStats recomputes the denormalized counters from the owning tables.
func (s *SubjectPostgreSQL) RefreshStats(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)

	var lessons, quizzes, questions int64
	if err := db.WithContext(ctx).Model(&models.Lesson{}).Where("subject_id = ?", id).Count(&lessons).Error; err != nil {
		return fmt.Errorf("failed to count lessons: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Quiz{}).Where("subject_id = ?", id).Count(&quizzes).Error; err != nil {
		return fmt.Errorf("failed to count quizzes: %w", err)
	}
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Joins("JOIN quizzes ON quizzes.id = questions.quiz_id").
		Where("quizzes.subject_id = ?", id).
		Count(&questions).Error; err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}

	updates := map[string]interface{}{
		"stats_total_lessons":   lessons,
		"stats_total_quizzes":   quizzes,
		"stats_total_questions": questions,
	}
	if err := db.WithContext(ctx).Model(&models.Subject{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to refresh subject stats: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Subject, fmt.Sprintf("id:%d", id))
	return nil
}

// GetStatsSummary aggregates global subject counters
func (s *SubjectPostgreSQL) GetStatsSummary(ctx context.Context, tx *gorm.DB) (*repositories.SubjectStatsSummary, error) {
	db := s.getDB(tx)
	summary := &repositories.SubjectStatsSummary{}

	type row struct {
		Total    int64
		Active   int64
		Featured int64
		Premium  int64
	}
	var r row
	err := db.WithContext(ctx).
		Model(&models.Subject{}).
		Select("COUNT(*) AS total, " +
			"COUNT(*) FILTER (WHERE is_active) AS active, " +
			"COUNT(*) FILTER (WHERE is_featured) AS featured, " +
			"COUNT(*) FILTER (WHERE is_premium) AS premium").
		Scan(&r).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get subject stats summary: %w", err)
	}

	summary.TotalSubjects = int(r.Total)
	summary.ActiveSubjects = int(r.Active)
	summary.FeaturedSubjects = int(r.Featured)
	summary.PremiumSubjects = int(r.Premium)
	return summary, nil
}
