package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/edupath/content-service/internal/services"
)

func newJSONContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/subjects/3", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindingRejectsUnknownFields(t *testing.T) {
	t.Run("undeclared field fails the bind", func(t *testing.T) {
		c := newJSONContext(t, `{"name":"Maths","no_such_field":true}`)

		var req services.UpdateSubjectRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			t.Fatal("expected an error for a payload with an undeclared field")
		}
	})

	t.Run("declared fields bind cleanly", func(t *testing.T) {
		c := newJSONContext(t, `{"name":"Maths","is_active":true}`)

		var req services.UpdateSubjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			t.Fatalf("bind failed: %v", err)
		}
		if req.Name == nil || *req.Name != "Maths" {
			t.Errorf("name = %v, want Maths", req.Name)
		}
		if req.IsActive == nil || !*req.IsActive {
			t.Errorf("is_active not bound")
		}
	})
}
