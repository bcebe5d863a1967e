package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/validator"
	"gorm.io/gorm"
)

type lessonService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

// NewLessonService creates a new lesson service instance
func NewLessonService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) LessonService {
	return &lessonService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *lessonService) Create(ctx context.Context, req *CreateLessonRequest, creatorID string) (*LessonResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("subject", req.SubjectID)
		}
		return nil, NewInternalError("failed to get subject", err)
	}
	if !subject.IsActive {
		return nil, NewConflictError(fmt.Sprintf("subject %d is inactive", req.SubjectID))
	}

	// Slugs are unique per subject, not globally.
	taken, err := s.repo.Lesson().ExistsBySlug(ctx, nil, req.SubjectID, req.Slug, nil)
	if err != nil {
		return nil, NewInternalError("failed to check lesson slug", err)
	}
	if taken {
		return nil, NewConflictError(fmt.Sprintf("slug %q is already used in this subject", req.Slug))
	}

	lesson := &models.Lesson{
		SubjectID:       req.SubjectID,
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		Content:         req.Content,
		Order:           req.Order,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
		Status:          models.LessonActive,
		CreatedBy:       creatorID,
	}

	if err := s.repo.Lesson().Create(ctx, nil, lesson); err != nil {
		return nil, NewInternalError("failed to create lesson", err)
	}

	s.logger.Info("lesson created",
		"lesson_id", lesson.ID,
		"subject_id", lesson.SubjectID,
		"slug", lesson.Slug,
		"created_by", creatorID)

	return s.toResponse(lesson, creatorID), nil
}

func (s *lessonService) GetByID(ctx context.Context, id uint, userID string) (*LessonResponse, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("lesson", id)
		}
		return nil, NewInternalError("failed to get lesson", err)
	}
	return s.toResponse(lesson, userID), nil
}

func (s *lessonService) Update(ctx context.Context, id uint, req *UpdateLessonRequest, userID string) (*LessonResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("lesson", id)
		}
		return nil, NewInternalError("failed to get lesson", err)
	}

	if req.Slug != nil && *req.Slug != lesson.Slug {
		taken, err := s.repo.Lesson().ExistsBySlug(ctx, nil, lesson.SubjectID, *req.Slug, &id)
		if err != nil {
			return nil, NewInternalError("failed to check lesson slug", err)
		}
		if taken {
			return nil, NewConflictError(fmt.Sprintf("slug %q is already used in this subject", *req.Slug))
		}
		lesson.Slug = *req.Slug
	}
	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = req.Description
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.DurationMinutes != nil {
		lesson.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		lesson.IsActive = *req.IsActive
	}
	if req.Status != nil {
		lesson.Status = *req.Status
	}

	if err := s.repo.Lesson().Update(ctx, nil, lesson); err != nil {
		return nil, NewInternalError("failed to update lesson", err)
	}

	s.logger.Info("lesson updated", "lesson_id", lesson.ID, "updated_by", userID)

	return s.toResponse(lesson, userID), nil
}

// Delete deactivates the lesson so learner progress rows keep a valid
// reference.
func (s *lessonService) Delete(ctx context.Context, id uint, userID string) error {
	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("lesson", id)
		}
		return NewInternalError("failed to get lesson", err)
	}

	if !lesson.IsActive {
		return NewConflictError(fmt.Sprintf("lesson %d is already inactive", id))
	}

	lesson.Deactivate()
	if err := s.repo.Lesson().Update(ctx, nil, lesson); err != nil {
		return NewInternalError("failed to deactivate lesson", err)
	}

	s.logger.Info("lesson deactivated", "lesson_id", id, "deleted_by", userID)
	return nil
}

func (s *lessonService) List(ctx context.Context, filters repositories.LessonFilters, userID string) (*LessonListResponse, error) {
	filters.Limit = clampLimit(filters.Limit, 20, 100)

	lessons, total, err := s.repo.Lesson().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list lessons", err)
	}

	responses := make([]*LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, s.toResponse(lesson, userID))
	}

	return &LessonListResponse{
		Lessons:    responses,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}

func (s *lessonService) GetBySubject(ctx context.Context, subjectID uint, userID string) ([]*LessonResponse, error) {
	if _, err := s.repo.Subject().GetByID(ctx, nil, subjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("subject", subjectID)
		}
		return nil, NewInternalError("failed to get subject", err)
	}

	lessons, err := s.repo.Lesson().GetBySubject(ctx, nil, subjectID)
	if err != nil {
		return nil, NewInternalError("failed to get subject lessons", err)
	}

	responses := make([]*LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, s.toResponse(lesson, userID))
	}
	return responses, nil
}

func (s *lessonService) toResponse(lesson *models.Lesson, userID string) *LessonResponse {
	return &LessonResponse{
		Lesson:  lesson,
		CanEdit: userID != "" && lesson.CreatedBy == userID,
	}
}
