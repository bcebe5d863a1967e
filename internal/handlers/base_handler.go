package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/services"
	"github.com/edupath/content-service/internal/utils"
	"github.com/edupath/content-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the single error envelope every endpoint returns.
type ErrorResponse struct {
	Status  string      `json:"status"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func newErrorResponse(code, message string, details interface{}) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Details: details,
	}
}

// BaseHandler carries the helpers shared by every handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs with the request-scoped logger when middleware provided
// one.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// parseIDParam reads a positive numeric path parameter. On failure it writes
// the error response and returns 0; callers must bail on 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, newErrorResponse("BAD_REQUEST", "invalid "+param+" parameter", nil))
		return 0
	}
	return uint(id)
}

// parsePagination reads page/limit query params and converts them into an
// offset/limit pair.
func (h *BaseHandler) parsePagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit, (page - 1) * limit
}

// requireUserID reads the authenticated user id set by the auth middleware.
// On failure it writes the 401 response and returns "".
func (h *BaseHandler) requireUserID(c *gin.Context) string {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, newErrorResponse(string(services.CodeUnauthorized), "user not authenticated", nil))
		return ""
	}
	return userID
}

// handleServiceError translates a service failure into the HTTP envelope.
// This is the only place service errors become status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	if svcErr, ok := services.AsServiceError(err); ok {
		if svcErr.Code == services.CodeInternal {
			utils.LoggerFromContext(c.Request.Context(), h.logger).Error("internal error",
				"path", c.FullPath(),
				"error", err)
		}
		c.JSON(svcErr.Status, newErrorResponse(string(svcErr.Code), svcErr.Message, svcErr.Details))
		return
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, newErrorResponse("VALIDATION_ERROR", "validation failed", validationErrors))
		return
	}

	if repositories.IsNotFoundError(err) {
		c.JSON(http.StatusNotFound, newErrorResponse("NOT_FOUND", "resource not found", nil))
		return
	}

	utils.LoggerFromContext(c.Request.Context(), h.logger).Error("unhandled error",
		"path", c.FullPath(),
		"error", err)
	c.JSON(http.StatusInternalServerError, newErrorResponse("INTERNAL_ERROR", "internal server error", nil))
}
