package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

// NewExportService creates a new export service instance
func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportQuizResults renders every result of a quiz as an xlsx workbook and
// returns the file bytes together with a download filename.
func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint, userID string) ([]byte, string, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", NewNotFoundError("quiz", quizID)
		}
		return nil, "", NewInternalError("failed to get quiz", err)
	}

	results, err := s.repo.QuizResult().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, "", NewInternalError("failed to get quiz results", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Result ID", "User ID", "Score", "Total Points", "Time Taken (s)", "Submitted At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	// Display names resolved in one batch to avoid per-row identity calls.
	names := s.resolveUserNames(ctx, results)

	for row, result := range results {
		values := []interface{}{
			result.ID,
			displayUser(result.UserID, names),
			result.Score,
			result.TotalPoints,
			result.TimeTaken,
			result.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", NewInternalError("failed to render results workbook", err)
	}

	s.logger.Info("quiz results exported",
		"quiz_id", quizID,
		"rows", len(results),
		"requested_by", userID)

	filename := fmt.Sprintf("quiz-%d-results-%s.xlsx", quiz.ID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// resolveUserNames maps result user ids to display names. The export still
// succeeds with raw ids when the identity provider is unreachable.
func (s *exportService) resolveUserNames(ctx context.Context, results []*models.QuizResult) map[string]string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve user names for export", "error", err)
		return nil
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names
}

func displayUser(userID string, names map[string]string) string {
	if name, ok := names[userID]; ok && name != "" {
		return fmt.Sprintf("%s (%s)", name, userID)
	}
	return userID
}
