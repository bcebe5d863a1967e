package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/validator"
)

func newLessonServiceForTest(repo *mockRepository) LessonService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewLessonService(repo, nil, logger, validator.New())
}

func TestLessonServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active lesson under an active subject", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.subjects = map[uint]*models.Subject{1: activeSubject(1)}
		svc := newLessonServiceForTest(repo)

		resp, err := svc.Create(ctx, &CreateLessonRequest{
			SubjectID: 1,
			Title:     "Introduction to Fractions",
			Slug:      "introduction-to-fractions",
		}, "teacher-1")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if !resp.Lesson.IsActive || resp.Lesson.Status != models.LessonActive {
			t.Errorf("new lesson not active: is_active=%v status=%s", resp.Lesson.IsActive, resp.Lesson.Status)
		}
		if resp.Lesson.SubjectID != 1 {
			t.Errorf("SubjectID = %d, want 1", resp.Lesson.SubjectID)
		}
	})

	t.Run("conflict on a duplicate slug in the same subject", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.subjects = map[uint]*models.Subject{1: activeSubject(1)}
		repo.lesson.slugTaken = true
		svc := newLessonServiceForTest(repo)

		_, err := svc.Create(ctx, &CreateLessonRequest{
			SubjectID: 1,
			Title:     "Introduction to Fractions",
			Slug:      "introduction-to-fractions",
		}, "teacher-1")

		assertServiceCode(t, err, CodeConflict)
	})

	t.Run("rejects an invalid slug", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.subjects = map[uint]*models.Subject{1: activeSubject(1)}
		svc := newLessonServiceForTest(repo)

		_, err := svc.Create(ctx, &CreateLessonRequest{
			SubjectID: 1,
			Title:     "Introduction to Fractions",
			Slug:      "Not A Slug!",
		}, "teacher-1")

		assertServiceCode(t, err, CodeValidation)
	})

	t.Run("rejects an inactive subject", func(t *testing.T) {
		repo := newMockRepository()
		subject := activeSubject(1)
		subject.IsActive = false
		repo.subject.subjects = map[uint]*models.Subject{1: subject}
		svc := newLessonServiceForTest(repo)

		_, err := svc.Create(ctx, &CreateLessonRequest{
			SubjectID: 1,
			Title:     "Introduction to Fractions",
			Slug:      "introduction-to-fractions",
		}, "teacher-1")

		assertServiceCode(t, err, CodeConflict)
	})
}

func TestLessonServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("soft deletes so progress rows keep a valid reference", func(t *testing.T) {
		repo := newMockRepository()
		lesson := activeLesson(4, 1)
		repo.lesson.lessons = map[uint]*models.Lesson{4: lesson}
		svc := newLessonServiceForTest(repo)

		if err := svc.Delete(ctx, 4, "admin-1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if lesson.IsActive || lesson.Status != models.LessonInactive {
			t.Errorf("lesson not deactivated: is_active=%v status=%s", lesson.IsActive, lesson.Status)
		}
	})

	t.Run("conflict when already inactive", func(t *testing.T) {
		repo := newMockRepository()
		lesson := activeLesson(4, 1)
		lesson.Deactivate()
		repo.lesson.lessons = map[uint]*models.Lesson{4: lesson}
		svc := newLessonServiceForTest(repo)

		err := svc.Delete(ctx, 4, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})
}
