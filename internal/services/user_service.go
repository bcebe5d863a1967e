package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

// NewUserService creates a new user service instance. Lookups are read-only
// and backed by the identity provider; only display-safe summaries leave
// this service.
func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.UserSummary, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewBadRequestError("user id is required")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, NewInternalError("failed to get user", err)
	}

	summary := user.Summary()
	return &summary, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.UserSummary, error) {
	if strings.TrimSpace(email) == "" {
		return nil, NewBadRequestError("email is required")
	}

	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, NewInternalError("failed to get user", err)
	}

	summary := user.Summary()
	return &summary, nil
}

func (s *userService) Search(ctx context.Context, query string, filters repositories.UserFilters) (*UserListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewBadRequestError("search query is required")
	}

	filters.Limit = clampLimit(filters.Limit, 20, 100)

	users, total, err := s.repo.User().Search(ctx, query, filters)
	if err != nil {
		return nil, NewInternalError("failed to search users", err)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, user.Summary())
	}

	return &UserListResponse{
		Users:      summaries,
		Pagination: NewPagination(pageFromOffset(filters.Offset, filters.Limit), filters.Limit, total),
	}, nil
}
