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

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
	validator       *validator.Validator
}

func NewProgressHandler(
	progressService services.ProgressService,
	validator *validator.Validator,
	logger utils.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
		validator:       validator,
	}
}

// UpdateProgress upserts the authenticated learner's progress in a lesson
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	var req services.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid request payload", err.Error()))
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	progress, err := h.progressService.UpdateProgress(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetProgressByLesson returns the authenticated learner's progress in a
// lesson
func (h *ProgressHandler) GetProgressByLesson(c *gin.Context) {
	lessonID := h.parseIDParam(c, "lesson_id")
	if lessonID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	progress, err := h.progressService.GetByLesson(c.Request.Context(), lessonID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetMyProgress lists the authenticated learner's progress records
func (h *ProgressHandler) GetMyProgress(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	response, err := h.progressService.GetByUser(c.Request.Context(), userID, h.parseProgressFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUserProgress lists another user's progress records. The service
// rejects students reading records that are not their own.
func (h *ProgressHandler) GetUserProgress(c *gin.Context) {
	targetUserID := c.Param("user_id")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid user_id parameter", nil))
		return
	}

	requesterID := h.requireUserID(c)
	if requesterID == "" {
		return
	}

	response, err := h.progressService.GetByUser(c.Request.Context(), targetUserID, h.parseProgressFilters(c), requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProgressHandler) parseProgressFilters(c *gin.Context) repositories.ProgressFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.ProgressFilters{
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("subject_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			subjectID := uint(id)
			filters.SubjectID = &subjectID
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.ProgressStatus(v)
		filters.Status = &status
	}

	return filters
}
