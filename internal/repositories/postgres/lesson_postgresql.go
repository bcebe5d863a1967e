package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"gorm.io/gorm"
)

type LessonPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLessonPostgreSQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (l *LessonPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func (l *LessonPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	db := l.getDB(tx)
	var lesson models.Lesson
	if err := db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

func (l *LessonPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	db := l.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Lesson{})

	query = l.helpers.ApplyLessonFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	query = l.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, "order", filters.Limit, filters.Offset)

	var lessons []*models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}

	return lessons, total, nil
}

func (l *LessonPostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Lesson, error) {
	db := l.getDB(tx)
	var lessons []*models.Lesson
	if err := db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("\"order\" ASC").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to get lessons for subject: %w", err)
	}
	return lessons, nil
}

// ExistsBySlug checks slug uniqueness within a subject.
func (l *LessonPostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, subjectID uint, slug string, excludeID *uint) (bool, error) {
	db := l.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("subject_id = ? AND slug = ?", subjectID, slug)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check lesson slug: %w", err)
	}
	return count > 0, nil
}
