package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupath/content-service/internal/events"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/validator"
	"gorm.io/gorm"
)

type subjectService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) SubjectService {
	return &subjectService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *subjectService) Create(ctx context.Context, req *CreateSubjectRequest, creatorID string) (*SubjectResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateSubjectCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	// Pre-check for friendly conflicts. The partial unique indexes on
	// LOWER(name) and LOWER(code) remain the final authority under races.
	if taken, err := s.repo.Subject().ExistsByName(ctx, nil, req.Name, nil); err != nil {
		return nil, NewInternalError("failed to check subject name", err)
	} else if taken {
		return nil, NewConflictError(fmt.Sprintf("subject name %q is already in use", req.Name))
	}
	code := models.NormalizeCode(req.Code)
	if taken, err := s.repo.Subject().ExistsByCode(ctx, nil, code, nil); err != nil {
		return nil, NewInternalError("failed to check subject code", err)
	} else if taken {
		return nil, NewConflictError(fmt.Sprintf("subject code %q is already in use", code))
	}

	subject := &models.Subject{
		Name:            req.Name,
		Code:            code,
		Category:        req.Category,
		Description:     req.Description,
		ExamTypes:       models.EncodeStrings(req.ExamTypes),
		Countries:       models.EncodeStrings(req.Countries),
		EducationLevels: models.EncodeStrings(req.EducationLevels),
		Series:          models.EncodeStrings(req.Series),
		IsActive:        true,
		Status:          models.SubjectActive,
		CreatedBy:       creatorID,
	}
	if req.IsPremium != nil {
		subject.IsPremium = *req.IsPremium
	}
	if req.IsFeatured != nil {
		subject.IsFeatured = *req.IsFeatured
	}

	if err := s.repo.Subject().Create(ctx, nil, subject); err != nil {
		return nil, NewInternalError("failed to create subject", err)
	}

	s.logger.Info("subject created",
		"subject_id", subject.ID,
		"code", subject.Code,
		"created_by", creatorID)

	return s.toResponse(subject, creatorID), nil
}

func (s *subjectService) GetByID(ctx context.Context, id uint, userID string) (*SubjectResponse, error) {
	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("subject", id)
		}
		return nil, NewInternalError("failed to get subject", err)
	}
	return s.toResponse(subject, userID), nil
}

func (s *subjectService) GetByIDWithDetails(ctx context.Context, id uint, userID string) (*SubjectResponse, error) {
	subject, err := s.repo.Subject().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("subject", id)
		}
		return nil, NewInternalError("failed to get subject details", err)
	}
	return s.toResponse(subject, userID), nil
}

func (s *subjectService) Update(ctx context.Context, id uint, req *UpdateSubjectRequest, userID string) (*SubjectResponse, error) {
	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("subject", id)
		}
		return nil, NewInternalError("failed to get subject", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateSubjectUpdate(req, subject); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	if req.Name != nil && *req.Name != subject.Name {
		taken, err := s.repo.Subject().ExistsByName(ctx, nil, *req.Name, &id)
		if err != nil {
			return nil, NewInternalError("failed to check subject name", err)
		}
		if taken {
			return nil, NewConflictError(fmt.Sprintf("subject name %q is already in use", *req.Name))
		}
		subject.Name = *req.Name
	}
	if req.Code != nil {
		code := models.NormalizeCode(*req.Code)
		if code != subject.Code {
			taken, err := s.repo.Subject().ExistsByCode(ctx, nil, code, &id)
			if err != nil {
				return nil, NewInternalError("failed to check subject code", err)
			}
			if taken {
				return nil, NewConflictError(fmt.Sprintf("subject code %q is already in use", code))
			}
			subject.Code = code
		}
	}
	if req.Category != nil {
		subject.Category = *req.Category
	}
	if req.Description != nil {
		subject.Description = req.Description
	}
	if req.ExamTypes != nil {
		subject.ExamTypes = models.EncodeStrings(req.ExamTypes)
	}
	if req.Countries != nil {
		subject.Countries = models.EncodeStrings(req.Countries)
	}
	if req.EducationLevels != nil {
		subject.EducationLevels = models.EncodeStrings(req.EducationLevels)
	}
	if req.Series != nil {
		subject.Series = models.EncodeStrings(req.Series)
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}
	if req.IsPremium != nil {
		subject.IsPremium = *req.IsPremium
	}
	if req.IsFeatured != nil {
		subject.IsFeatured = *req.IsFeatured
	}
	if req.Status != nil {
		subject.Status = *req.Status
	}

	if err := s.repo.Subject().Update(ctx, nil, subject); err != nil {
		return nil, NewInternalError("failed to update subject", err)
	}

	s.logger.Info("subject updated", "subject_id", subject.ID, "updated_by", userID)

	return s.toResponse(subject, userID), nil
}

// Delete deactivates the subject. Subjects are never removed physically
// because lessons and quizzes keep referencing them.
func (s *subjectService) Delete(ctx context.Context, id uint, userID string) error {
	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("subject", id)
		}
		return NewInternalError("failed to get subject", err)
	}

	if !subject.IsActive {
		return NewConflictError(fmt.Sprintf("subject %d is already inactive", id))
	}

	subject.Deactivate()
	if err := s.repo.Subject().Update(ctx, nil, subject); err != nil {
		return NewInternalError("failed to deactivate subject", err)
	}

	s.logger.Info("subject deactivated", "subject_id", id, "deleted_by", userID)

	s.publishEvent(ctx, events.SubjectDeactivated, userID, map[string]interface{}{
		"subject_id": id,
		"code":       subject.Code,
	})

	return nil
}

func (s *subjectService) List(ctx context.Context, filters repositories.SubjectFilters, userID string) (*SubjectListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	subjects, total, err := s.repo.Subject().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list subjects", err)
	}

	responses := make([]*SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, s.toResponse(subject, userID))
	}

	return &SubjectListResponse{
		Subjects:   responses,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}

func (s *subjectService) GetFeatured(ctx context.Context, limit int) ([]*SubjectResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	subjects, err := s.repo.Subject().GetFeatured(ctx, nil, limit)
	if err != nil {
		return nil, NewInternalError("failed to get featured subjects", err)
	}

	responses := make([]*SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, s.toResponse(subject, ""))
	}
	return responses, nil
}

func (s *subjectService) GetStatsSummary(ctx context.Context, userID string) (*repositories.SubjectStatsSummary, error) {
	summary, err := s.repo.Subject().GetStatsSummary(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get subject stats", err)
	}
	return summary, nil
}

func (s *subjectService) RefreshStats(ctx context.Context, id uint, userID string) error {
	if _, err := s.repo.Subject().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("subject", id)
		}
		return NewInternalError("failed to get subject", err)
	}

	if err := s.repo.Subject().RefreshStats(ctx, nil, id); err != nil {
		return NewInternalError("failed to refresh subject stats", err)
	}

	s.logger.Info("subject stats refreshed", "subject_id", id, "requested_by", userID)
	return nil
}

func (s *subjectService) toResponse(subject *models.Subject, userID string) *SubjectResponse {
	return &SubjectResponse{
		Subject:   subject,
		CanEdit:   userID != "" && subject.CreatedBy == userID,
		CanDelete: userID != "" && subject.CreatedBy == userID,
	}
}

// publishEvent emits a domain event and degrades to a warning when the
// broker is unavailable. Event delivery never fails the calling operation.
func (s *subjectService) publishEvent(ctx context.Context, eventType, actorID string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, actorID, payload)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}
