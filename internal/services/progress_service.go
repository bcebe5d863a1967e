package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupath/content-service/internal/events"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/validator"
	"gorm.io/gorm"
)

type progressService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

// NewProgressService creates a new progress service instance
func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) ProgressService {
	return &progressService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// UpdateProgress upserts the single progress row for (user, lesson). The
// caller is always the learner themselves; handlers enforce that.
func (s *progressService) UpdateProgress(ctx context.Context, req *UpdateProgressRequest, userID string) (*ProgressResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, req.LessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("lesson", req.LessonID)
		}
		return nil, NewInternalError("failed to get lesson", err)
	}
	if !lesson.IsActive {
		return nil, NewConflictError(fmt.Sprintf("lesson %d is inactive", req.LessonID))
	}

	existing, err := s.repo.Progress().GetByUserAndLesson(ctx, nil, userID, req.LessonID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, NewInternalError("failed to get progress", err)
	}

	now := time.Now()
	progress := &models.Progress{
		UserID:            userID,
		LessonID:          req.LessonID,
		SubjectID:         lesson.SubjectID,
		Status:            models.ProgressInProgress,
		CompletionPercent: 0,
		LastAccessedAt:    now,
	}
	if existing != nil {
		progress.Status = existing.Status
		progress.CompletionPercent = existing.CompletionPercent
	}

	if req.CompletionPercent != nil {
		progress.CompletionPercent = *req.CompletionPercent
	}
	if req.Status != nil {
		progress.Status = *req.Status
	}
	// Reaching 100% completes the lesson regardless of the status field.
	if progress.CompletionPercent >= 100 {
		progress.Status = models.ProgressCompleted
	}

	wasCompleted := existing != nil && existing.Status == models.ProgressCompleted

	if err := s.repo.Progress().Upsert(ctx, nil, progress); err != nil {
		return nil, NewInternalError("failed to save progress", err)
	}

	s.logger.Info("progress updated",
		"user_id", userID,
		"lesson_id", req.LessonID,
		"status", progress.Status,
		"completion_percent", progress.CompletionPercent)

	if progress.Status == models.ProgressCompleted && !wasCompleted {
		s.publishEvent(ctx, events.LessonCompleted, userID, map[string]interface{}{
			"lesson_id":  req.LessonID,
			"subject_id": lesson.SubjectID,
		})
	}

	return &ProgressResponse{Progress: progress}, nil
}

func (s *progressService) GetByLesson(ctx context.Context, lessonID uint, userID string) (*ProgressResponse, error) {
	progress, err := s.repo.Progress().GetByUserAndLesson(ctx, nil, userID, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("progress record", lessonID)
		}
		return nil, NewInternalError("failed to get progress", err)
	}
	return &ProgressResponse{Progress: progress}, nil
}

// GetByUser lists a learner's progress. Students may only read their own
// records; staff may read anyone's.
func (s *progressService) GetByUser(ctx context.Context, targetUserID string, filters repositories.ProgressFilters, requesterID string) (*ProgressListResponse, error) {
	if requesterID != targetUserID {
		allowed, err := s.isStaff(ctx, requesterID)
		if err != nil {
			return nil, NewInternalError("failed to check requester role", err)
		}
		if !allowed {
			return nil, NewPermissionError(requesterID, 0, "progress", "read", "students may only read their own progress")
		}
	}

	filters.Limit = clampLimit(filters.Limit, 20, 100)

	records, total, err := s.repo.Progress().GetByUser(ctx, nil, targetUserID, filters)
	if err != nil {
		return nil, NewInternalError("failed to list progress", err)
	}

	return &ProgressListResponse{
		Records:    records,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}

func (s *progressService) isStaff(ctx context.Context, userID string) (bool, error) {
	if isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin); err != nil {
		return false, err
	} else if isAdmin {
		return true, nil
	}
	return s.repo.User().HasRole(ctx, userID, models.RoleTeacher)
}

func (s *progressService) publishEvent(ctx context.Context, eventType, actorID string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, actorID, payload)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}
