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

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

// NewQuizService creates a new quiz service instance
func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*QuizResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateQuizCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
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

	if err := s.checkQuestionsExist(ctx, req.QuestionIDs); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		SubjectID:       req.SubjectID,
		Title:           req.Title,
		Description:     req.Description,
		TopicIDs:        models.EncodeIDs(req.TopicIDs),
		QuestionIDs:     models.EncodeIDs(req.QuestionIDs),
		TotalPoints:     req.TotalPoints,
		DurationMinutes: req.DurationMinutes,
		RetakePolicy:    models.RetakePolicy{MaxAttempts: 3, CooldownHours: 24},
		IsActive:        true,
		Status:          models.QuizActive,
		CreatedBy:       creatorID,
	}
	applyRetakePolicy(&quiz.RetakePolicy, req.RetakePolicy)

	// TotalQuestions is derived, never taken from the request.
	quiz.SyncTotalQuestions()

	if err := s.repo.Quiz().Create(ctx, nil, quiz); err != nil {
		return nil, NewInternalError("failed to create quiz", err)
	}

	s.logger.Info("quiz created",
		"quiz_id", quiz.ID,
		"subject_id", quiz.SubjectID,
		"total_questions", quiz.TotalQuestions,
		"created_by", creatorID)

	return s.toResponse(quiz, creatorID), nil
}

func (s *quizService) GetByID(ctx context.Context, id uint, userID string) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", id)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}
	return s.toResponse(quiz, userID), nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", id)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuizUpdate(req, quiz); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.TopicIDs != nil {
		quiz.TopicIDs = models.EncodeIDs(req.TopicIDs)
	}
	if req.QuestionIDs != nil {
		if err := s.checkQuestionsExist(ctx, req.QuestionIDs); err != nil {
			return nil, err
		}
		quiz.QuestionIDs = models.EncodeIDs(req.QuestionIDs)
		quiz.SyncTotalQuestions()
	}
	if req.TotalPoints != nil {
		quiz.TotalPoints = *req.TotalPoints
	}
	if req.DurationMinutes != nil {
		quiz.DurationMinutes = *req.DurationMinutes
	}
	applyRetakePolicy(&quiz.RetakePolicy, req.RetakePolicy)
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}
	if req.Status != nil {
		quiz.Status = *req.Status
	}

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, NewInternalError("failed to update quiz", err)
	}

	s.logger.Info("quiz updated", "quiz_id", quiz.ID, "updated_by", userID)

	return s.toResponse(quiz, userID), nil
}

// Delete removes the quiz physically only when no results reference it.
// A quiz with recorded results is deactivated instead so history stays
// intact.
func (s *quizService) Delete(ctx context.Context, id uint, userID string) (*QuizDeleteOutcome, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", id)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}

	hasResults, err := s.repo.Quiz().HasResults(ctx, nil, id)
	if err != nil {
		return nil, NewInternalError("failed to check quiz results", err)
	}

	if !hasResults {
		if err := s.repo.Quiz().HardDelete(ctx, nil, id); err != nil {
			return nil, NewInternalError("failed to delete quiz", err)
		}
		s.logger.Info("quiz deleted", "quiz_id", id, "deleted_by", userID)
		return &QuizDeleteOutcome{
			QuizID:      id,
			HardDeleted: true,
			Message:     "quiz deleted",
		}, nil
	}

	if !quiz.IsActive {
		return nil, NewConflictError(fmt.Sprintf("quiz %d is already inactive", id))
	}

	quiz.Deactivate()
	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, NewInternalError("failed to deactivate quiz", err)
	}

	s.logger.Info("quiz deactivated", "quiz_id", id, "deleted_by", userID)

	s.publishEvent(ctx, events.QuizDeactivated, userID, map[string]interface{}{
		"quiz_id":    id,
		"subject_id": quiz.SubjectID,
	})

	return &QuizDeleteOutcome{
		QuizID:      id,
		HardDeleted: false,
		Message:     "quiz has recorded results and was deactivated",
	}, nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters, userID string) (*QuizListResponse, error) {
	filters.Limit = clampLimit(filters.Limit, 20, 100)

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list quizzes", err)
	}

	responses := make([]*QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, s.toResponse(quiz, userID))
	}

	return &QuizListResponse{
		Quizzes:    responses,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}

func (s *quizService) GetPopular(ctx context.Context, limit int) ([]*QuizResponse, error) {
	limit = clampLimit(limit, 10, 50)

	quizzes, err := s.repo.Quiz().GetPopular(ctx, nil, limit)
	if err != nil {
		return nil, NewInternalError("failed to get popular quizzes", err)
	}

	responses := make([]*QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, s.toResponse(quiz, ""))
	}
	return responses, nil
}

func (s *quizService) GetBySubject(ctx context.Context, subjectID uint, userID string) ([]*QuizResponse, error) {
	if _, err := s.repo.Subject().GetByID(ctx, nil, subjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("subject", subjectID)
		}
		return nil, NewInternalError("failed to get subject", err)
	}

	quizzes, _, err := s.repo.Quiz().GetBySubject(ctx, nil, subjectID, repositories.QuizFilters{Limit: 200})
	if err != nil {
		return nil, NewInternalError("failed to get subject quizzes", err)
	}

	responses := make([]*QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, s.toResponse(quiz, userID))
	}
	return responses, nil
}

func (s *quizService) SubmitResult(ctx context.Context, req *SubmitResultRequest, userID string) (*models.QuizResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", req.QuizID)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}
	if !quiz.IsActive {
		return nil, NewConflictError(fmt.Sprintf("quiz %d is inactive", req.QuizID))
	}

	totalPoints := req.TotalPoints
	if totalPoints == 0 {
		totalPoints = quiz.TotalPoints
	}
	if totalPoints > 0 && req.Score > float64(totalPoints) {
		return nil, NewBadRequestError(fmt.Sprintf("score %.1f exceeds total points %d", req.Score, totalPoints))
	}

	status, err := s.repo.QuizResult().GetRetakeStatus(ctx, nil, req.QuizID, userID)
	if err != nil {
		return nil, NewInternalError("failed to get retake status", err)
	}
	if errs := s.validator.GetBusinessValidator().ValidateRetakeStart(quiz.RetakePolicy, status.AttemptCount, status.LastAttemptAt, time.Now()); len(errs) > 0 {
		return nil, NewConflictError(errs.Error())
	}

	result := &models.QuizResult{
		QuizID:      req.QuizID,
		UserID:      userID,
		Score:       req.Score,
		TotalPoints: totalPoints,
		TimeTaken:   req.TimeTaken,
	}

	if err := s.repo.QuizResult().Create(ctx, nil, result); err != nil {
		return nil, NewInternalError("failed to record quiz result", err)
	}

	s.logger.Info("quiz result recorded",
		"quiz_id", req.QuizID,
		"user_id", userID,
		"score", req.Score,
		"attempt", status.AttemptCount+1)

	s.publishEvent(ctx, events.QuizResultRecorded, userID, map[string]interface{}{
		"quiz_id":   req.QuizID,
		"result_id": result.ID,
		"score":     result.Score,
	})

	return result, nil
}

func (s *quizService) GetResults(ctx context.Context, quizID uint, filters repositories.ResultFilters, userID string) (*ResultListResponse, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", quizID)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}

	filters.QuizID = &quizID
	filters.Limit = clampLimit(filters.Limit, 20, 100)

	results, total, err := s.repo.QuizResult().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list quiz results", err)
	}

	return &ResultListResponse{
		Results:    results,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}

func (s *quizService) GetRetakeEligibility(ctx context.Context, quizID uint, userID string) (*RetakeEligibility, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", quizID)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}

	status, err := s.repo.QuizResult().GetRetakeStatus(ctx, nil, quizID, userID)
	if err != nil {
		return nil, NewInternalError("failed to get retake status", err)
	}

	return buildRetakeEligibility(quiz, status, userID, time.Now()), nil
}

// RecalculateAnalytics rebuilds the denormalized analytics snapshot from the
// quiz's full result set. It runs on demand, not on every submission.
func (s *quizService) RecalculateAnalytics(ctx context.Context, quizID uint, userID string) (*models.QuizAnalytics, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", quizID)
		}
		return nil, NewInternalError("failed to get quiz", err)
	}

	results, err := s.repo.QuizResult().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, NewInternalError("failed to get quiz results", err)
	}

	quiz.Analytics = computeQuizAnalytics(quiz.TotalPoints, results, time.Now())

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, NewInternalError("failed to save quiz analytics", err)
	}

	s.logger.Info("quiz analytics recalculated",
		"quiz_id", quizID,
		"total_attempts", quiz.Analytics.TotalAttempts,
		"requested_by", userID)

	s.publishEvent(ctx, events.QuizAnalyticsRefreshed, userID, map[string]interface{}{
		"quiz_id":        quizID,
		"total_attempts": quiz.Analytics.TotalAttempts,
	})

	analytics := quiz.Analytics
	return &analytics, nil
}

func (s *quizService) BulkUpdate(ctx context.Context, req *BulkUpdateQuizRequest, userID string) (*repositories.BulkUpdateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	patch := map[string]interface{}{}
	if req.IsActive != nil {
		patch["is_active"] = *req.IsActive
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if len(patch) == 0 {
		return nil, NewBadRequestError("bulk update requires at least one field to change")
	}

	result, err := s.repo.Quiz().BulkUpdate(ctx, nil, req.IDs, patch)
	if err != nil {
		return nil, NewInternalError("failed to bulk update quizzes", err)
	}

	s.logger.Info("quizzes bulk updated",
		"matched", result.MatchedCount,
		"modified", result.ModifiedCount,
		"updated_by", userID)

	return result, nil
}

// checkQuestionsExist rejects references to questions that are not in the
// bank.
func (s *quizService) checkQuestionsExist(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	questions, err := s.repo.Question().GetByIDs(ctx, nil, ids)
	if err != nil {
		return NewInternalError("failed to check question references", err)
	}
	if len(questions) != len(ids) {
		return NewBadRequestError(fmt.Sprintf("question_ids references %d unknown questions", len(ids)-len(questions)))
	}
	return nil
}

func (s *quizService) toResponse(quiz *models.Quiz, userID string) *QuizResponse {
	return &QuizResponse{
		Quiz:      quiz,
		CanEdit:   userID != "" && quiz.CreatedBy == userID,
		CanDelete: userID != "" && quiz.CreatedBy == userID,
	}
}

func (s *quizService) publishEvent(ctx context.Context, eventType, actorID string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, actorID, payload)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}
