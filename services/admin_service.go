package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"go.uber.org/zap"
)

type AdminUserService interface {
	ListUsers(ctx context.Context, actor models.Actor, filter models.UserFilter) (models.UserListResponse, error)
	SetRole(ctx context.Context, actor models.Actor, userID int, input SetRoleInput) (*models.User, error)
}

type adminUserService struct {
	userRepo    repositories.UserRepository
	leaderboard cache.LeaderboardCache
	logger      *zap.Logger
}

func NewAdminUserService(userRepo repositories.UserRepository, leaderboard cache.LeaderboardCache, logger *zap.Logger) AdminUserService {
	return &adminUserService{userRepo: userRepo, leaderboard: leaderboard, logger: logger}
}

func (s *adminUserService) ListUsers(ctx context.Context, actor models.Actor, filter models.UserFilter) (models.UserListResponse, error) {
	if !actor.Is(models.RoleAdmin) {
		return models.UserListResponse{}, ErrForbidden
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	users, total, err := s.userRepo.List(ctx, repositories.ListUsersFilter{
		Search: filter.Search,
		Role:   filter.Role,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return models.UserListResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	for i := range users {
		sanitizeUser(&users[i])
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// SetRole takes effect on the target's next request; sessions reload the user.
func (s *adminUserService) SetRole(ctx context.Context, actor models.Actor, userID int, input SetRoleInput) (*models.User, error) {
	if !actor.Is(models.RoleAdmin) {
		return nil, ErrForbidden
	}
	if actor.UserID == userID {
		return nil, ErrSelfRoleChange
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRole(ctx, userID, input.Role); err != nil {
		return nil, mapUserLookupError(err)
	}
	invalidateLeaderboard(ctx, s.leaderboard, s.logger)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	s.logger.Info("user role changed",
		zap.Int("admin_id", actor.UserID),
		zap.Int("user_id", userID),
		zap.String("role", string(input.Role)),
	)
	sanitizeUser(user)
	return user, nil
}
