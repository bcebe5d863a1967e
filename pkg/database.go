package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edupath/content-service/internal/config"
	"github.com/edupath/content-service/internal/models"
)

// InitDatabase opens the Postgres connection, tunes the pool and runs
// migrations.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Subject{},
		&models.Lesson{},
		&models.Quiz{},
		&models.QuizResult{},
		&models.Question{},
		&models.Progress{},
	); err != nil {
		return err
	}

	// Case-insensitive uniqueness is enforced by the database, not just the
	// service-layer pre-checks. Expression indexes cannot be declared via
	// struct tags.
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subjects_name_ci ON subjects (LOWER(name)) WHERE is_active = true`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subjects_code_ci ON subjects (LOWER(code)) WHERE is_active = true`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
