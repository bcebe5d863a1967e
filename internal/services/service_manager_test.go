package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/edupath/content-service/internal/events"
	"github.com/edupath/content-service/internal/validator"
)

func TestServiceManagerLifecycle(t *testing.T) {
	repo := newMockRepository()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher()
	sm := NewDefaultServiceManager(nil, repo, logger, validator.New(), publisher)

	ctx := context.Background()

	t.Run("getters panic before initialization", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected a panic from an uninitialized manager")
			}
		}()
		sm.Subject()
	})

	t.Run("initialize wires every service", func(t *testing.T) {
		if err := sm.Initialize(ctx); err != nil {
			t.Fatalf("Initialize: %v", err)
		}

		if sm.Subject() == nil {
			t.Error("subject service missing")
		}
		if sm.Lesson() == nil {
			t.Error("lesson service missing")
		}
		if sm.Quiz() == nil {
			t.Error("quiz service missing")
		}
		if sm.Question() == nil {
			t.Error("question service missing")
		}
		if sm.Progress() == nil {
			t.Error("progress service missing")
		}
		if sm.User() == nil {
			t.Error("user service missing")
		}
		if sm.Export() == nil {
			t.Error("export service missing")
		}
	})

	t.Run("initialize is idempotent", func(t *testing.T) {
		if err := sm.Initialize(ctx); err != nil {
			t.Fatalf("second Initialize: %v", err)
		}
	})

	t.Run("health check pings the repository", func(t *testing.T) {
		if err := sm.HealthCheck(ctx); err != nil {
			t.Fatalf("HealthCheck: %v", err)
		}
	})

	t.Run("shutdown closes the publisher", func(t *testing.T) {
		if err := sm.Shutdown(ctx); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	})
}

func TestNewDefaultServiceManagerWithoutPublisher(t *testing.T) {
	repo := newMockRepository()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	sm := NewDefaultServiceManager(nil, repo, logger, validator.New(), nil)

	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize without publisher: %v", err)
	}
	if sm.Quiz() == nil {
		t.Error("quiz service missing")
	}
}
