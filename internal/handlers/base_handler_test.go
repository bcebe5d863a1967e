package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/edupath/content-service/internal/services"
	"github.com/edupath/content-service/internal/utils"
	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T, url string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c, w
}

func testBaseHandler() BaseHandler {
	return NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil))))
}

func TestParseIDParam(t *testing.T) {
	h := testBaseHandler()

	t.Run("valid id", func(t *testing.T) {
		c, _ := newTestContext(t, "/quizzes/5")
		c.Params = gin.Params{{Key: "id", Value: "5"}}

		if got := h.parseIDParam(c, "id"); got != 5 {
			t.Errorf("parseIDParam = %d, want 5", got)
		}
	})

	invalid := []struct {
		name, value string
	}{
		{"zero", "0"},
		{"negative", "-3"},
		{"word", "abc"},
		{"empty", ""},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t, "/quizzes/x")
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			if got := h.parseIDParam(c, "id"); got != 0 {
				t.Errorf("parseIDParam(%q) = %d, want 0", tt.value, got)
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Status != "error" || resp.Code != "BAD_REQUEST" {
				t.Errorf("envelope = %+v", resp)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	h := testBaseHandler()

	tests := []struct {
		name       string
		url        string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/subjects", 20, 0},
		{"explicit page", "/subjects?page=3&limit=10", 10, 20},
		{"limit capped at 100", "/subjects?limit=500", 100, 0},
		{"invalid values fall back", "/subjects?page=abc&limit=-1", 20, 0},
		{"page below one", "/subjects?page=0&limit=10", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, tt.url)

			limit, offset := h.parsePagination(c)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("parsePagination = (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestRequireUserID(t *testing.T) {
	h := testBaseHandler()

	t.Run("authenticated", func(t *testing.T) {
		c, _ := newTestContext(t, "/progress")
		c.Set("user_id", "student-1")

		if got := h.requireUserID(c); got != "student-1" {
			t.Errorf("requireUserID = %q, want student-1", got)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		c, w := newTestContext(t, "/progress")

		if got := h.requireUserID(c); got != "" {
			t.Errorf("requireUserID = %q, want empty", got)
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestHandleServiceError(t *testing.T) {
	h := testBaseHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.NewNotFoundError("quiz", 5), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", services.NewConflictError("already inactive"), http.StatusConflict, "CONFLICT"},
		{"bad request", services.NewBadRequestError("bad input"), http.StatusBadRequest, "BAD_REQUEST"},
		{"forbidden", services.NewPermissionError("u-1", 0, "progress", "read", "not yours"), http.StatusForbidden, "FORBIDDEN"},
		{"internal", services.NewInternalError("boom", nil), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t, "/quizzes/5")

			h.handleServiceError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Status != "error" || resp.Code != tt.wantCode {
				t.Errorf("envelope = %+v, want code %s", resp, tt.wantCode)
			}
		})
	}
}
