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

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
	validator     *validator.Validator
}

func NewLessonHandler(
	lessonService services.LessonService,
	validator *validator.Validator,
	logger utils.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
		validator:     validator,
	}
}

// CreateLesson creates a new lesson
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// GetLesson retrieves a lesson by ID
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	lesson, err := h.lessonService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// UpdateLesson updates an existing lesson
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating lesson", "lesson_id", id)

	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// DeleteLesson deactivates a lesson
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting lesson", "lesson_id", id)

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListLessons lists lessons with filtering and pagination
func (h *LessonHandler) ListLessons(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.LessonFilters{
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
		status := models.LessonStatus(v)
		filters.Status = &status
	}

	response, err := h.lessonService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetLessonsBySubject lists a subject's lessons in display order
func (h *LessonHandler) GetLessonsBySubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	lessons, err := h.lessonService.GetBySubject(c.Request.Context(), subjectID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}
