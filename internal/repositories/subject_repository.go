package repositories

import (
	"context"

	"github.com/edupath/content-service/internal/models"
	"gorm.io/gorm"
)

// SubjectRepository interface for subject-specific operations
type SubjectRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) // Include lesson/quiz summaries
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters SubjectFilters) ([]*models.Subject, int64, error)
	GetFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Subject, error)

	// Uniqueness checks (case-insensitive for name, normalized for code)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error)

	// Counters
	RefreshStats(ctx context.Context, tx *gorm.DB, id uint) error
	GetStatsSummary(ctx context.Context, tx *gorm.DB) (*SubjectStatsSummary, error)
}
