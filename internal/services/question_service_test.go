package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/edupath/content-service/internal/events"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/validator"
)

func newQuestionServiceForTest(repo *mockRepository, publisher events.EventPublisher) QuestionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewQuestionService(repo, nil, logger, validator.New(), publisher)
}

func mcQuestionRequest() *CreateQuestionRequest {
	return &CreateQuestionRequest{
		Content:       "What is 2 + 2?",
		Format:        models.MultipleChoice,
		CorrectAnswer: "B",
		Options: []models.QuestionOption{
			{ID: "A", Text: "3", Order: 0},
			{ID: "B", Text: "4", Order: 1},
		},
	}
}

func TestQuestionServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies points and difficulty defaults", func(t *testing.T) {
		repo := newMockRepository()
		svc := newQuestionServiceForTest(repo, nil)

		resp, err := svc.Create(ctx, mcQuestionRequest(), "teacher-1")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if resp.Question.Points != 1 {
			t.Errorf("Points = %d, want 1", resp.Question.Points)
		}
		if resp.Question.Difficulty != models.DifficultyBeginner {
			t.Errorf("Difficulty = %s, want beginner", resp.Question.Difficulty)
		}
		if !resp.Question.IsActive {
			t.Error("new question not active")
		}
	})

	t.Run("rejects a missing quiz reference", func(t *testing.T) {
		svc := newQuestionServiceForTest(newMockRepository(), nil)

		quizID := uint(99)
		req := mcQuestionRequest()
		req.QuizID = &quizID

		_, err := svc.Create(ctx, req, "teacher-1")

		assertServiceCode(t, err, CodeNotFound)
	})

	t.Run("rejects multiple choice without enough options", func(t *testing.T) {
		svc := newQuestionServiceForTest(newMockRepository(), nil)

		req := mcQuestionRequest()
		req.Options = req.Options[:1]

		_, err := svc.Create(ctx, req, "teacher-1")

		assertServiceCode(t, err, CodeValidation)
	})
}

func TestQuestionServiceCreateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("stores all questions in one call", func(t *testing.T) {
		repo := newMockRepository()
		svc := newQuestionServiceForTest(repo, nil)

		responses, err := svc.CreateBatch(ctx, []*CreateQuestionRequest{
			mcQuestionRequest(),
			mcQuestionRequest(),
		}, "teacher-1")
		if err != nil {
			t.Fatalf("CreateBatch: %v", err)
		}

		if len(responses) != 2 {
			t.Errorf("got %d responses, want 2", len(responses))
		}
		if len(repo.question.created) != 2 {
			t.Errorf("stored %d questions, want 2", len(repo.question.created))
		}
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		svc := newQuestionServiceForTest(newMockRepository(), nil)

		_, err := svc.CreateBatch(ctx, nil, "teacher-1")

		assertServiceCode(t, err, CodeBadRequest)
	})

	t.Run("names the failing question in a mixed batch", func(t *testing.T) {
		svc := newQuestionServiceForTest(newMockRepository(), nil)

		bad := mcQuestionRequest()
		bad.Content = ""

		_, err := svc.CreateBatch(ctx, []*CreateQuestionRequest{mcQuestionRequest(), bad}, "teacher-1")

		svcErr := assertServiceCode(t, err, CodeBadRequest)
		if !strings.HasPrefix(svcErr.Message, "question 1") {
			t.Errorf("message = %q, want it to name question 1", svcErr.Message)
		}
	})
}

func TestQuestionServiceUpdateOwnership(t *testing.T) {
	ctx := context.Background()

	seed := func() *mockRepository {
		repo := newMockRepository()
		repo.question.questions = map[uint]*models.Question{7: {
			ID:        7,
			Content:   "What is 2 + 2?",
			Format:    models.MultipleChoice,
			IsActive:  true,
			CreatedBy: "teacher-1",
		}}
		return repo
	}
	content := "What is 3 + 3?"

	t.Run("creator may update their own question", func(t *testing.T) {
		repo := seed()
		svc := newQuestionServiceForTest(repo, nil)

		resp, err := svc.Update(ctx, 7, &UpdateQuestionRequest{Content: &content}, "teacher-1")
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if resp.Question.Content != content {
			t.Errorf("Content = %q, want %q", resp.Question.Content, content)
		}
	})

	t.Run("another teacher is refused", func(t *testing.T) {
		repo := seed()
		repo.user.roles = map[string]models.UserRole{"teacher-2": models.RoleTeacher}
		svc := newQuestionServiceForTest(repo, nil)

		_, err := svc.Update(ctx, 7, &UpdateQuestionRequest{Content: &content}, "teacher-2")

		assertServiceCode(t, err, CodeForbidden)
		if len(repo.question.updated) != 0 {
			t.Errorf("question was updated despite the refusal")
		}
	})

	t.Run("admin may update anyone's question", func(t *testing.T) {
		repo := seed()
		repo.user.roles = map[string]models.UserRole{"admin-1": models.RoleAdmin}
		svc := newQuestionServiceForTest(repo, nil)

		if _, err := svc.Update(ctx, 7, &UpdateQuestionRequest{Content: &content}, "admin-1"); err != nil {
			t.Fatalf("Update: %v", err)
		}
	})

	t.Run("another teacher may not delete", func(t *testing.T) {
		repo := seed()
		repo.user.roles = map[string]models.UserRole{"teacher-2": models.RoleTeacher}
		svc := newQuestionServiceForTest(repo, nil)

		err := svc.Delete(ctx, 7, "teacher-2")

		assertServiceCode(t, err, CodeForbidden)
		if len(repo.question.deleted) != 0 {
			t.Errorf("question was deleted despite the refusal")
		}
	})
}

func TestQuestionServiceVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the question verified and publishes an event", func(t *testing.T) {
		repo := newMockRepository()
		repo.question.questions = map[uint]*models.Question{7: {ID: 7, Content: "Q", IsActive: true}}
		publisher := events.NewMockEventPublisher()
		svc := newQuestionServiceForTest(repo, publisher)

		resp, err := svc.Verify(ctx, 7, &VerifyQuestionRequest{QualityScore: 8}, "admin-1")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}

		v := resp.Question.Verification
		if !v.Verified {
			t.Fatal("question not marked verified")
		}
		if v.VerifierID == nil || *v.VerifierID != "admin-1" {
			t.Errorf("VerifierID = %v, want admin-1", v.VerifierID)
		}
		if v.QualityScore == nil || *v.QualityScore != 8 {
			t.Errorf("QualityScore = %v, want 8", v.QualityScore)
		}
		if v.VerifiedAt == nil {
			t.Error("VerifiedAt not set")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.QuestionVerified {
			t.Fatalf("published = %+v, want one %s event", published, events.QuestionVerified)
		}
	})

	t.Run("conflict when already verified", func(t *testing.T) {
		repo := newMockRepository()
		question := &models.Question{ID: 7, Content: "Q"}
		question.Verify("admin-0", 9, nil, question.CreatedAt)
		repo.question.questions = map[uint]*models.Question{7: question}
		svc := newQuestionServiceForTest(repo, nil)

		_, err := svc.Verify(ctx, 7, &VerifyQuestionRequest{QualityScore: 5}, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})
}

func TestQuestionServiceBulkUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an empty patch", func(t *testing.T) {
		svc := newQuestionServiceForTest(newMockRepository(), nil)

		_, err := svc.BulkUpdate(ctx, &BulkUpdateQuestionRequest{IDs: []uint{1, 2}}, "admin-1")

		assertServiceCode(t, err, CodeBadRequest)
	})

	t.Run("patches the provided fields", func(t *testing.T) {
		repo := newMockRepository()
		svc := newQuestionServiceForTest(repo, nil)

		points := 5
		result, err := svc.BulkUpdate(ctx, &BulkUpdateQuestionRequest{
			IDs:    []uint{1, 2},
			Points: &points,
		}, "admin-1")
		if err != nil {
			t.Fatalf("BulkUpdate: %v", err)
		}

		if result.MatchedCount != 2 {
			t.Errorf("MatchedCount = %d, want 2", result.MatchedCount)
		}
	})
}
