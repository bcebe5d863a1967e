package repositories

import (
	"context"
	"errors"
	"strings"
)

// Repository aggregates every per-resource repository behind one contract.
type Repository interface {
	// Content domain
	Subject() SubjectRepository
	Lesson() LessonRepository
	Quiz() QuizRepository
	QuizResult() QuizResultRepository
	Question() QuestionRepository
	Progress() ProgressRepository

	// User domain (read-only for the content service)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

// ErrNotFound is returned by repositories when a record is absent.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err stems from a missing record.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "not found")
}
