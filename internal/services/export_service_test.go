package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/edupath/content-service/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestExportQuizResults(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("renders one row per result", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: {ID: 5, Title: "Checkpoint"}}
		repo.quizResult.results = []*models.QuizResult{
			{ID: 1, QuizID: 5, UserID: "u-1", Score: 15, TotalPoints: 20, TimeTaken: 300},
			{ID: 2, QuizID: 5, UserID: "u-2", Score: 18, TotalPoints: 20, TimeTaken: 240},
		}
		repo.user.users = map[string]*models.User{
			"u-1": {ID: "u-1", FullName: "Ada Bello"},
		}
		svc := NewExportService(repo, logger)

		data, filename, err := svc.ExportQuizResults(ctx, 5, "teacher-1")
		if err != nil {
			t.Fatalf("ExportQuizResults: %v", err)
		}

		if !strings.HasPrefix(filename, "quiz-5-results-") || !strings.HasSuffix(filename, ".xlsx") {
			t.Errorf("filename = %q", filename)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("open workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("Results")
		if err != nil {
			t.Fatalf("read sheet: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d rows, want header + 2 results", len(rows))
		}
		if rows[0][0] != "Result ID" {
			t.Errorf("header = %v", rows[0])
		}
		// Resolved names carry the display name, unresolved ids pass through.
		if rows[1][1] != "Ada Bello (u-1)" {
			t.Errorf("row 1 user = %q, want Ada Bello (u-1)", rows[1][1])
		}
		if rows[2][1] != "u-2" {
			t.Errorf("row 2 user = %q, want u-2", rows[2][1])
		}
	})

	t.Run("missing quiz", func(t *testing.T) {
		svc := NewExportService(newMockRepository(), logger)

		_, _, err := svc.ExportQuizResults(ctx, 99, "teacher-1")

		assertServiceCode(t, err, CodeNotFound)
	})

	t.Run("exports an empty quiz with only the header", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: {ID: 5}}
		svc := NewExportService(repo, logger)

		data, _, err := svc.ExportQuizResults(ctx, 5, "teacher-1")
		if err != nil {
			t.Fatalf("ExportQuizResults: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("open workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("Results")
		if err != nil {
			t.Fatalf("read sheet: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("got %d rows, want only the header", len(rows))
		}
	})
}
