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

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

// NewQuestionService creates a new question service instance
func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*QuestionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	question, err := s.buildQuestion(ctx, req, creatorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, NewInternalError("failed to create question", err)
	}

	s.logger.Info("question created",
		"question_id", question.ID,
		"format", question.Format,
		"created_by", creatorID)

	return s.toResponse(question, creatorID), nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID string) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("question", id)
		}
		return nil, NewInternalError("failed to get question", err)
	}
	return s.toResponse(question, userID), nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("question", id)
		}
		return nil, NewInternalError("failed to get question", err)
	}

	if err := s.ensureCanModify(ctx, question, userID, "update"); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuestionUpdate(req, question); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	if req.QuizID != nil {
		if err := s.checkQuizExists(ctx, *req.QuizID); err != nil {
			return nil, err
		}
		question.QuizID = req.QuizID
	}
	if req.Content != nil {
		question.Content = *req.Content
	}
	if req.Format != nil {
		question.Format = *req.Format
	}
	if req.Options != nil {
		question.Options = encodeOptions(req.Options)
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, NewInternalError("failed to update question", err)
	}

	s.logger.Info("question updated", "question_id", question.ID, "updated_by", userID)

	return s.toResponse(question, userID), nil
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string) error {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("question", id)
		}
		return NewInternalError("failed to get question", err)
	}

	if err := s.ensureCanModify(ctx, question, userID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		return NewInternalError("failed to delete question", err)
	}

	s.logger.Info("question deleted", "question_id", id, "deleted_by", userID)
	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error) {
	filters.Limit = clampLimit(filters.Limit, 20, 100)

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list questions", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, s.toResponse(question, userID))
	}

	return &QuestionListResponse{
		Questions:  responses,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}

func (s *questionService) GetByQuiz(ctx context.Context, quizID uint, userID string) ([]*QuestionResponse, error) {
	if err := s.checkQuizExists(ctx, quizID); err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, NewInternalError("failed to get quiz questions", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, s.toResponse(question, userID))
	}
	return responses, nil
}

// CreateBatch inserts all questions or none. Validation failures name the
// offending index so clients can fix the batch.
func (s *questionService) CreateBatch(ctx context.Context, reqs []*CreateQuestionRequest, creatorID string) ([]*QuestionResponse, error) {
	if len(reqs) == 0 {
		return nil, NewBadRequestError("batch is empty")
	}
	if len(reqs) > 100 {
		return nil, NewBadRequestError("batch exceeds 100 questions")
	}

	questions := make([]*models.Question, 0, len(reqs))
	for i, req := range reqs {
		if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
			return nil, NewBadRequestError(fmt.Sprintf("question %d: %s", i, errs.Error()))
		}
		question, err := s.buildQuestion(ctx, req, creatorID)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	if err := s.repo.Question().CreateBatch(ctx, nil, questions); err != nil {
		return nil, NewInternalError("failed to create question batch", err)
	}

	s.logger.Info("question batch created", "count", len(questions), "created_by", creatorID)

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, s.toResponse(question, creatorID))
	}
	return responses, nil
}

func (s *questionService) BulkUpdate(ctx context.Context, req *BulkUpdateQuestionRequest, userID string) (*repositories.BulkUpdateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	patch := map[string]interface{}{}
	if req.Difficulty != nil {
		patch["difficulty"] = *req.Difficulty
	}
	if req.Points != nil {
		patch["points"] = *req.Points
	}
	if req.IsActive != nil {
		patch["is_active"] = *req.IsActive
	}
	if len(patch) == 0 {
		return nil, NewBadRequestError("bulk update requires at least one field to change")
	}

	result, err := s.repo.Question().BulkUpdate(ctx, nil, req.IDs, patch)
	if err != nil {
		return nil, NewInternalError("failed to bulk update questions", err)
	}

	s.logger.Info("questions bulk updated",
		"matched", result.MatchedCount,
		"modified", result.ModifiedCount,
		"updated_by", userID)

	return result, nil
}

// Verify applies the one-way verified transition. A verified question can
// never go back to unverified, and re-verifying is a conflict.
func (s *questionService) Verify(ctx context.Context, id uint, req *VerifyQuestionRequest, verifierID string) (*QuestionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(validator.ToValidationErrors(err))
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("question", id)
		}
		return nil, NewInternalError("failed to get question", err)
	}

	if question.Verification.Verified {
		return nil, NewConflictError(fmt.Sprintf("question %d is already verified", id))
	}

	question.Verify(verifierID, req.QualityScore, req.Feedback, time.Now())

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, NewInternalError("failed to verify question", err)
	}

	s.logger.Info("question verified",
		"question_id", id,
		"quality_score", req.QualityScore,
		"verifier_id", verifierID)

	s.publishEvent(ctx, events.QuestionVerified, verifierID, map[string]interface{}{
		"question_id":   id,
		"quality_score": req.QualityScore,
	})

	return s.toResponse(question, verifierID), nil
}

func (s *questionService) buildQuestion(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	if req.QuizID != nil {
		if err := s.checkQuizExists(ctx, *req.QuizID); err != nil {
			return nil, err
		}
	}

	question := &models.Question{
		QuizID:        req.QuizID,
		Content:       req.Content,
		Format:        req.Format,
		Options:       encodeOptions(req.Options),
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Difficulty:    req.Difficulty,
		Explanation:   req.Explanation,
		IsActive:      true,
		CreatedBy:     creatorID,
	}
	if question.Points == 0 {
		question.Points = 1
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyBeginner
	}
	return question, nil
}

// ensureCanModify restricts writes to the question's creator or an admin. A
// staff role alone does not grant access to someone else's question.
func (s *questionService) ensureCanModify(ctx context.Context, question *models.Question, userID, action string) error {
	if userID != "" && question.CreatedBy == userID {
		return nil
	}
	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return NewInternalError("failed to check user role", err)
	}
	if !isAdmin {
		return NewPermissionError(userID, question.ID, "question", action, "only the creator or an admin may modify it")
	}
	return nil
}

func (s *questionService) checkQuizExists(ctx context.Context, quizID uint) error {
	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("quiz", quizID)
		}
		return NewInternalError("failed to get quiz", err)
	}
	return nil
}

func (s *questionService) toResponse(question *models.Question, userID string) *QuestionResponse {
	return &QuestionResponse{
		Question:  question,
		CanEdit:   userID != "" && question.CreatedBy == userID,
		CanDelete: userID != "" && question.CreatedBy == userID,
	}
}

func (s *questionService) publishEvent(ctx context.Context, eventType, actorID string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, actorID, payload)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}
