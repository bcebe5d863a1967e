package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/services"
	"github.com/edupath/content-service/internal/utils"
	"github.com/edupath/content-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewQuizHandler(
	quizService services.QuizService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
		validator:     validator,
	}
}

// CreateQuiz creates a new quiz
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz retrieves a quiz by ID
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz updates an existing quiz
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating quiz", "quiz_id", id)

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz removes a quiz physically when it has no results, otherwise
// deactivates it. The response reports which branch was taken.
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	outcome, err := h.quizService.Delete(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// ListQuizzes lists quizzes with filtering and pagination
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.QuizFilters{
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v := c.Query("subject_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			subjectID := uint(id)
			filters.SubjectID = &subjectID
		}
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}
	if v := c.Query("status"); v != "" {
		status := models.QuizStatus(v)
		filters.Status = &status
	}
	if v := c.Query("created_by"); v != "" {
		filters.CreatedBy = &v
	}

	response, err := h.quizService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPopularQuizzes lists quizzes ranked by recorded attempts
func (h *QuizHandler) GetPopularQuizzes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	quizzes, err := h.quizService.GetPopular(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetQuizzesBySubject lists a subject's quizzes
func (h *QuizHandler) GetQuizzesBySubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	quizzes, err := h.quizService.GetBySubject(c.Request.Context(), subjectID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// SubmitQuizResult records a quiz attempt for the authenticated user
func (h *QuizHandler) SubmitQuizResult(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}
	req.QuizID = quizID

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Submitting quiz result", "quiz_id", quizID, "score", req.Score)

	result, err := h.quizService.SubmitResult(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetQuizResults lists a quiz's recorded results
func (h *QuizHandler) GetQuizResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.ResultFilters{
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("user_id"); v != "" {
		filters.UserID = &v
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.DateTo = &t
		}
	}

	response, err := h.quizService.GetResults(c.Request.Context(), quizID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetRetakeEligibility answers whether the authenticated user may attempt
// the quiz now
func (h *QuizHandler) GetRetakeEligibility(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	eligibility, err := h.quizService.GetRetakeEligibility(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

// GetUserRetakeEligibility answers the same question for another learner.
// The route restricts it to staff.
func (h *QuizHandler) GetUserRetakeEligibility(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	targetUserID := c.Param("user_id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid user_id parameter", nil))
		return
	}

	eligibility, err := h.quizService.GetRetakeEligibility(c.Request.Context(), quizID, targetUserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

// RecalculateQuizAnalytics rebuilds the quiz analytics snapshot on demand
func (h *QuizHandler) RecalculateQuizAnalytics(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Recalculating quiz analytics", "quiz_id", quizID)

	analytics, err := h.quizService.RecalculateAnalytics(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// BulkUpdateQuizzes patches a set of quizzes in one operation
func (h *QuizHandler) BulkUpdateQuizzes(c *gin.Context) {
	var req services.BulkUpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Bulk updating quizzes", "count", len(req.IDs))

	result, err := h.quizService.BulkUpdate(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportQuizResults streams the quiz results as an xlsx download
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	data, filename, err := h.exportService.ExportQuizResults(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
