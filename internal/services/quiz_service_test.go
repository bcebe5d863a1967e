package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/edupath/content-service/internal/events"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/validator"
)

func newQuizServiceForTest(repo *mockRepository, publisher events.EventPublisher) QuizService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewQuizService(repo, nil, logger, validator.New(), publisher)
}

func assertServiceCode(t *testing.T, err error, code ErrorCode) *ServiceError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	svcErr, ok := AsServiceError(err)
	if !ok {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Fatalf("error code = %s, want %s (message: %s)", svcErr.Code, code, svcErr.Message)
	}
	return svcErr
}

func activeSubject(id uint) *models.Subject {
	return &models.Subject{ID: id, Name: "Algebra", Code: "ALG-101", IsActive: true}
}

func TestQuizServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("derives total questions from references", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.subjects = map[uint]*models.Subject{1: activeSubject(1)}
		repo.question.questions = map[uint]*models.Question{
			10: {ID: 10},
			11: {ID: 11},
		}
		svc := newQuizServiceForTest(repo, nil)

		resp, err := svc.Create(ctx, &CreateQuizRequest{
			SubjectID:   1,
			Title:       "Linear Equations Checkpoint",
			QuestionIDs: []uint{10, 11},
			TotalPoints: 20,
		}, "teacher-1")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if resp.Quiz.TotalQuestions != 2 {
			t.Errorf("TotalQuestions = %d, want 2", resp.Quiz.TotalQuestions)
		}
		if !resp.Quiz.IsActive || resp.Quiz.Status != models.QuizActive {
			t.Errorf("new quiz not active: is_active=%v status=%s", resp.Quiz.IsActive, resp.Quiz.Status)
		}
		if resp.Quiz.RetakePolicy.MaxAttempts != 3 || resp.Quiz.RetakePolicy.CooldownHours != 24 {
			t.Errorf("default retake policy = %+v, want {3 24}", resp.Quiz.RetakePolicy)
		}
		if !resp.CanEdit {
			t.Error("creator should be able to edit")
		}
	})

	t.Run("rejects unknown question references", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.subjects = map[uint]*models.Subject{1: activeSubject(1)}
		repo.question.questions = map[uint]*models.Question{10: {ID: 10}}
		svc := newQuizServiceForTest(repo, nil)

		_, err := svc.Create(ctx, &CreateQuizRequest{
			SubjectID:   1,
			Title:       "Linear Equations Checkpoint",
			QuestionIDs: []uint{10, 99},
		}, "teacher-1")

		assertServiceCode(t, err, CodeBadRequest)
	})

	t.Run("rejects an inactive subject", func(t *testing.T) {
		repo := newMockRepository()
		subject := activeSubject(1)
		subject.IsActive = false
		repo.subject.subjects = map[uint]*models.Subject{1: subject}
		svc := newQuizServiceForTest(repo, nil)

		_, err := svc.Create(ctx, &CreateQuizRequest{
			SubjectID: 1,
			Title:     "Linear Equations Checkpoint",
		}, "teacher-1")

		assertServiceCode(t, err, CodeConflict)
	})

	t.Run("rejects a missing subject", func(t *testing.T) {
		svc := newQuizServiceForTest(newMockRepository(), nil)

		_, err := svc.Create(ctx, &CreateQuizRequest{
			SubjectID: 42,
			Title:     "Linear Equations Checkpoint",
		}, "teacher-1")

		assertServiceCode(t, err, CodeNotFound)
	})
}

func TestQuizServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("resyncs total questions when references change", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{
			5: {
				ID:             5,
				Title:          "Checkpoint",
				QuestionIDs:    models.EncodeIDs([]uint{10, 11}),
				TotalQuestions: 2,
				CreatedBy:      "teacher-1",
			},
		}
		repo.question.questions = map[uint]*models.Question{
			10: {ID: 10}, 11: {ID: 11}, 12: {ID: 12},
		}
		svc := newQuizServiceForTest(repo, nil)

		resp, err := svc.Update(ctx, 5, &UpdateQuizRequest{
			QuestionIDs: []uint{10, 11, 12},
		}, "teacher-1")
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		if resp.Quiz.TotalQuestions != 3 {
			t.Errorf("TotalQuestions = %d, want 3", resp.Quiz.TotalQuestions)
		}
		if len(repo.quiz.updated) != 1 {
			t.Fatalf("expected 1 repository update, got %d", len(repo.quiz.updated))
		}
	})

	t.Run("missing quiz", func(t *testing.T) {
		svc := newQuizServiceForTest(newMockRepository(), nil)

		_, err := svc.Update(ctx, 99, &UpdateQuizRequest{}, "teacher-1")

		assertServiceCode(t, err, CodeNotFound)
	})
}

func TestQuizServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("hard deletes when no results exist", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: {ID: 5, IsActive: true}}
		repo.quiz.hasResults = false
		publisher := events.NewMockEventPublisher()
		svc := newQuizServiceForTest(repo, publisher)

		outcome, err := svc.Delete(ctx, 5, "admin-1")
		if err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if !outcome.HardDeleted {
			t.Error("expected a hard delete")
		}
		if len(repo.quiz.hardDeleted) != 1 || repo.quiz.hardDeleted[0] != 5 {
			t.Errorf("hard deleted ids = %v, want [5]", repo.quiz.hardDeleted)
		}
		if got := publisher.GetPublishedEvents(); len(got) != 0 {
			t.Errorf("expected no events for a hard delete, got %d", len(got))
		}
	})

	t.Run("deactivates when results exist", func(t *testing.T) {
		repo := newMockRepository()
		quiz := &models.Quiz{ID: 5, SubjectID: 1, IsActive: true, Status: models.QuizActive}
		repo.quiz.quizzes = map[uint]*models.Quiz{5: quiz}
		repo.quiz.hasResults = true
		publisher := events.NewMockEventPublisher()
		svc := newQuizServiceForTest(repo, publisher)

		outcome, err := svc.Delete(ctx, 5, "admin-1")
		if err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if outcome.HardDeleted {
			t.Error("expected a soft delete")
		}
		if quiz.IsActive || quiz.Status != models.QuizInactive {
			t.Errorf("quiz not deactivated: is_active=%v status=%s", quiz.IsActive, quiz.Status)
		}
		if len(repo.quiz.hardDeleted) != 0 {
			t.Error("quiz with results must not be hard deleted")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.QuizDeactivated {
			t.Fatalf("published = %+v, want one %s event", published, events.QuizDeactivated)
		}
	})

	t.Run("conflict when already inactive with results", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: {ID: 5, IsActive: false, Status: models.QuizInactive}}
		repo.quiz.hasResults = true
		svc := newQuizServiceForTest(repo, nil)

		_, err := svc.Delete(ctx, 5, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})
}

func TestQuizServiceSubmitResult(t *testing.T) {
	ctx := context.Background()

	activeQuiz := func() *models.Quiz {
		return &models.Quiz{
			ID:           5,
			TotalPoints:  20,
			IsActive:     true,
			Status:       models.QuizActive,
			RetakePolicy: models.RetakePolicy{MaxAttempts: 3, CooldownHours: 24},
		}
	}

	t.Run("records a result and publishes an event", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: activeQuiz()}
		publisher := events.NewMockEventPublisher()
		svc := newQuizServiceForTest(repo, publisher)

		result, err := svc.SubmitResult(ctx, &SubmitResultRequest{
			QuizID:    5,
			Score:     15,
			TimeTaken: 300,
		}, "student-1")
		if err != nil {
			t.Fatalf("SubmitResult: %v", err)
		}

		if result.TotalPoints != 20 {
			t.Errorf("TotalPoints = %d, want the quiz default 20", result.TotalPoints)
		}
		if result.UserID != "student-1" {
			t.Errorf("UserID = %q, want student-1", result.UserID)
		}
		if len(repo.quizResult.created) != 1 {
			t.Fatalf("expected 1 stored result, got %d", len(repo.quizResult.created))
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.QuizResultRecorded {
			t.Fatalf("published = %+v, want one %s event", published, events.QuizResultRecorded)
		}
	})

	t.Run("rejects a score above total points", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: activeQuiz()}
		svc := newQuizServiceForTest(repo, nil)

		_, err := svc.SubmitResult(ctx, &SubmitResultRequest{QuizID: 5, Score: 25}, "student-1")

		assertServiceCode(t, err, CodeBadRequest)
	})

	t.Run("rejects an inactive quiz", func(t *testing.T) {
		repo := newMockRepository()
		quiz := activeQuiz()
		quiz.IsActive = false
		repo.quiz.quizzes = map[uint]*models.Quiz{5: quiz}
		svc := newQuizServiceForTest(repo, nil)

		_, err := svc.SubmitResult(ctx, &SubmitResultRequest{QuizID: 5, Score: 10}, "student-1")

		assertServiceCode(t, err, CodeConflict)
	})

	t.Run("blocks a retake inside the cooldown window", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: activeQuiz()}
		last := time.Now().Add(-1 * time.Hour)
		repo.quizResult.retakeStatus = &repositories.RetakeStatus{AttemptCount: 3, LastAttemptAt: &last}
		svc := newQuizServiceForTest(repo, nil)

		_, err := svc.SubmitResult(ctx, &SubmitResultRequest{QuizID: 5, Score: 10}, "student-1")

		assertServiceCode(t, err, CodeConflict)
		if len(repo.quizResult.created) != 0 {
			t.Error("blocked retake must not store a result")
		}
	})

	t.Run("allows a retake once the cooldown elapsed", func(t *testing.T) {
		repo := newMockRepository()
		repo.quiz.quizzes = map[uint]*models.Quiz{5: activeQuiz()}
		last := time.Now().Add(-25 * time.Hour)
		repo.quizResult.retakeStatus = &repositories.RetakeStatus{AttemptCount: 3, LastAttemptAt: &last}
		svc := newQuizServiceForTest(repo, nil)

		if _, err := svc.SubmitResult(ctx, &SubmitResultRequest{QuizID: 5, Score: 10}, "student-1"); err != nil {
			t.Fatalf("SubmitResult after cooldown: %v", err)
		}
	})
}

func TestQuizServiceRecalculateAnalytics(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.quiz.quizzes = map[uint]*models.Quiz{5: {ID: 5, TotalPoints: 20, IsActive: true}}
	repo.quizResult.results = resultsWithScores(10, 15, 18, 20)
	publisher := events.NewMockEventPublisher()
	svc := newQuizServiceForTest(repo, publisher)

	analytics, err := svc.RecalculateAnalytics(ctx, 5, "teacher-1")
	if err != nil {
		t.Fatalf("RecalculateAnalytics: %v", err)
	}

	if analytics.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %d, want 4", analytics.TotalAttempts)
	}
	if analytics.AverageScore != 16 {
		t.Errorf("AverageScore = %v, want 16", analytics.AverageScore)
	}
	if len(repo.quiz.updated) != 1 {
		t.Fatalf("expected the snapshot to be persisted")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.QuizAnalyticsRefreshed {
		t.Fatalf("published = %+v, want one %s event", published, events.QuizAnalyticsRefreshed)
	}
}

func TestQuizServiceBulkUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("builds a patch from the provided fields", func(t *testing.T) {
		repo := newMockRepository()
		svc := newQuizServiceForTest(repo, nil)

		active := false
		result, err := svc.BulkUpdate(ctx, &BulkUpdateQuizRequest{
			IDs:      []uint{1, 2, 3},
			IsActive: &active,
		}, "admin-1")
		if err != nil {
			t.Fatalf("BulkUpdate: %v", err)
		}

		if result.MatchedCount != 3 {
			t.Errorf("MatchedCount = %d, want 3", result.MatchedCount)
		}
		if v, ok := repo.quiz.bulkPatch["is_active"]; !ok || v != false {
			t.Errorf("patch = %v, want is_active=false", repo.quiz.bulkPatch)
		}
	})

	t.Run("reports matched and modified separately", func(t *testing.T) {
		repo := newMockRepository()
		// One of the three is already at the target state.
		repo.quiz.bulkResult = &repositories.BulkUpdateResult{MatchedCount: 3, ModifiedCount: 2}
		svc := newQuizServiceForTest(repo, nil)

		active := true
		result, err := svc.BulkUpdate(ctx, &BulkUpdateQuizRequest{
			IDs:      []uint{1, 2, 3},
			IsActive: &active,
		}, "admin-1")
		if err != nil {
			t.Fatalf("BulkUpdate: %v", err)
		}

		if result.MatchedCount != 3 || result.ModifiedCount != 2 {
			t.Errorf("result = %+v, want matched 3, modified 2", result)
		}
	})

	t.Run("rejects an empty patch", func(t *testing.T) {
		svc := newQuizServiceForTest(newMockRepository(), nil)

		_, err := svc.BulkUpdate(ctx, &BulkUpdateQuizRequest{IDs: []uint{1}}, "admin-1")

		assertServiceCode(t, err, CodeBadRequest)
	})
}
