package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/edupath/content-service/internal/events"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/validator"
)

func newSubjectServiceForTest(repo *mockRepository, publisher events.EventPublisher) SubjectService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewSubjectService(repo, nil, logger, validator.New(), publisher)
}

func TestSubjectServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the code and activates the subject", func(t *testing.T) {
		repo := newMockRepository()
		svc := newSubjectServiceForTest(repo, nil)

		resp, err := svc.Create(ctx, &CreateSubjectRequest{
			Name: "Mathematics",
			Code: " math-101 ",
		}, "admin-1")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if resp.Subject.Code != "MATH-101" {
			t.Errorf("Code = %q, want MATH-101", resp.Subject.Code)
		}
		if !resp.Subject.IsActive || resp.Subject.Status != models.SubjectActive {
			t.Errorf("new subject not active: is_active=%v status=%s", resp.Subject.IsActive, resp.Subject.Status)
		}
		if resp.Subject.CreatedBy != "admin-1" {
			t.Errorf("CreatedBy = %q, want admin-1", resp.Subject.CreatedBy)
		}
	})

	t.Run("conflict on a taken name", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.nameTaken = true
		svc := newSubjectServiceForTest(repo, nil)

		_, err := svc.Create(ctx, &CreateSubjectRequest{Name: "Mathematics", Code: "MATH-101"}, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})

	t.Run("conflict on a taken code", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.codeTaken = true
		svc := newSubjectServiceForTest(repo, nil)

		_, err := svc.Create(ctx, &CreateSubjectRequest{Name: "Mathematics", Code: "MATH-101"}, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})

	t.Run("validation failure on a short name", func(t *testing.T) {
		svc := newSubjectServiceForTest(newMockRepository(), nil)

		_, err := svc.Create(ctx, &CreateSubjectRequest{Name: "M", Code: "MATH-101"}, "admin-1")

		assertServiceCode(t, err, CodeValidation)
	})
}

func TestSubjectServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("always soft deletes and publishes an event", func(t *testing.T) {
		repo := newMockRepository()
		subject := activeSubject(3)
		repo.subject.subjects = map[uint]*models.Subject{3: subject}
		publisher := events.NewMockEventPublisher()
		svc := newSubjectServiceForTest(repo, publisher)

		if err := svc.Delete(ctx, 3, "admin-1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if subject.IsActive || subject.Status != models.SubjectInactive {
			t.Errorf("subject not deactivated: is_active=%v status=%s", subject.IsActive, subject.Status)
		}
		if len(repo.subject.updated) != 1 {
			t.Fatalf("expected 1 repository update, got %d", len(repo.subject.updated))
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.SubjectDeactivated {
			t.Fatalf("published = %+v, want one %s event", published, events.SubjectDeactivated)
		}
		if published[0].ActorID != "admin-1" {
			t.Errorf("ActorID = %q, want admin-1", published[0].ActorID)
		}
	})

	t.Run("conflict when already inactive", func(t *testing.T) {
		repo := newMockRepository()
		subject := activeSubject(3)
		subject.Deactivate()
		repo.subject.subjects = map[uint]*models.Subject{3: subject}
		svc := newSubjectServiceForTest(repo, nil)

		err := svc.Delete(ctx, 3, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})

	t.Run("missing subject", func(t *testing.T) {
		svc := newSubjectServiceForTest(newMockRepository(), nil)

		err := svc.Delete(ctx, 99, "admin-1")

		assertServiceCode(t, err, CodeNotFound)
	})
}

func TestSubjectServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("skips the uniqueness check for an unchanged name", func(t *testing.T) {
		repo := newMockRepository()
		subject := activeSubject(3)
		repo.subject.subjects = map[uint]*models.Subject{3: subject}
		// Would trip the check if the service consulted it for the same name.
		repo.subject.nameTaken = true
		svc := newSubjectServiceForTest(repo, nil)

		name := subject.Name
		if _, err := svc.Update(ctx, 3, &UpdateSubjectRequest{Name: &name}, "admin-1"); err != nil {
			t.Fatalf("Update with unchanged name: %v", err)
		}
	})

	t.Run("conflict when the new name is taken", func(t *testing.T) {
		repo := newMockRepository()
		repo.subject.subjects = map[uint]*models.Subject{3: activeSubject(3)}
		repo.subject.nameTaken = true
		svc := newSubjectServiceForTest(repo, nil)

		name := "Applied Mathematics"
		_, err := svc.Update(ctx, 3, &UpdateSubjectRequest{Name: &name}, "admin-1")

		assertServiceCode(t, err, CodeConflict)
	})
}
