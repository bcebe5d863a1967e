package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

// Upsert maintains the single progress row per (user, lesson). Conflicts on
// the unique index update the tracked columns in place.
func (p *ProgressPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, progress *models.Progress) error {
	db := p.getDB(tx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "completion_percent", "last_accessed_at", "updated_at",
		}),
	}).Create(progress).Error
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	return nil
}

func (p *ProgressPostgreSQL) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID string, lessonID uint) (*models.Progress, error) {
	db := p.getDB(tx)
	var progress models.Progress
	err := db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress for user %s lesson %d: %w", userID, lessonID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ProgressFilters) ([]*models.Progress, int64, error) {
	db := p.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Progress{})
	query = p.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count progress records: %w", err)
	}

	query = p.helpers.ApplyPaginationAndSort(query, "", "desc", "updated_at", filters.Limit, filters.Offset)

	var records []*models.Progress
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list progress records: %w", err)
	}
	return records, total, nil
}

func (p *ProgressPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.ProgressFilters) ([]*models.Progress, int64, error) {
	filters.UserID = &userID
	return p.List(ctx, tx, filters)
}

func (p *ProgressPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ProgressFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}
