package handlers

import (
	"net/http"
	"strconv"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/services"
	"github.com/edupath/content-service/internal/utils"
	"github.com/edupath/content-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SubjectHandler struct {
	BaseHandler
	subjectService services.SubjectService
	validator      *validator.Validator
}

func NewSubjectHandler(
	subjectService services.SubjectService,
	validator *validator.Validator,
	logger utils.Logger,
) *SubjectHandler {
	return &SubjectHandler{
		BaseHandler:    NewBaseHandler(logger),
		subjectService: subjectService,
		validator:      validator,
	}
}

// CreateSubject creates a new subject
// @Summary Create subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} services.SubjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /subjects [post]
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req services.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// GetSubject retrieves a subject by ID
// @Summary Get subject
// @Tags subjects
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} services.SubjectResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id} [get]
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	subject, err := h.subjectService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// GetSubjectWithDetails retrieves a subject with its lessons and quizzes
func (h *SubjectHandler) GetSubjectWithDetails(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting subject with details", "subject_id", id)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	subject, err := h.subjectService.GetByIDWithDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// UpdateSubject updates an existing subject
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating subject", "subject_id", id)

	var req services.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// DeleteSubject deactivates a subject. Subjects are never removed
// physically.
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting subject", "subject_id", id)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubjects lists subjects with filtering and pagination
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := h.parseSubjectFilters(c)

	response, err := h.subjectService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetFeaturedSubjects lists featured subjects
func (h *SubjectHandler) GetFeaturedSubjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	subjects, err := h.subjectService.GetFeatured(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// GetSubjectStats returns the aggregate subject counters
func (h *SubjectHandler) GetSubjectStats(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	summary, err := h.subjectService.GetStatsSummary(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RefreshSubjectStats recomputes a subject's denormalized counters
func (h *SubjectHandler) RefreshSubjectStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.subjectService.RefreshStats(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "subject stats refreshed"})
}

func (h *SubjectHandler) parseSubjectFilters(c *gin.Context) repositories.SubjectFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.SubjectFilters{
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("category"); v != "" {
		filters.Category = &v
	}
	if v := c.Query("country"); v != "" {
		filters.Country = &v
	}
	if v := c.Query("exam_type"); v != "" {
		filters.ExamType = &v
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}
	if v := c.Query("is_premium"); v != "" {
		premium := v == "true"
		filters.IsPremium = &premium
	}
	if v := c.Query("is_featured"); v != "" {
		featured := v == "true"
		filters.IsFeatured = &featured
	}
	if v := c.Query("status"); v != "" {
		status := models.SubjectStatus(v)
		filters.Status = &status
	}

	return filters
}
