package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"github.com/Dosada05/contesthub/utils"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type authService struct {
	userRepo    repositories.UserRepository
	leaderboard cache.LeaderboardCache
	logger      *zap.Logger
}

func NewAuthService(userRepo repositories.UserRepository, leaderboard cache.LeaderboardCache, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:    userRepo,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Register always creates a plain user; other roles are granted by an admin.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		PhotoURL:     input.PhotoURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	invalidateLeaderboard(ctx, s.leaderboard, s.logger)

	s.logger.Info("user registered", zap.Int("user_id", user.ID))
	sanitizeUser(user)
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	sanitizeUser(user)
	return user, nil
}
