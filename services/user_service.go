package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"github.com/Dosada05/contesthub/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, actor models.Actor) (*models.User, error)
	GetPublic(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, input UpdateProfileInput) (*models.User, error)
	UploadPhoto(ctx context.Context, actor models.Actor, contentType string, reader io.Reader) (*models.User, error)
	Stats(ctx context.Context, actor models.Actor) (*models.UserStats, error)
	Participated(ctx context.Context, actor models.Actor) ([]ContestView, error)
	Winnings(ctx context.Context, actor models.Actor) (*models.Winnings, error)
}

type userService struct {
	userRepo    repositories.UserRepository
	contestRepo repositories.ContestRepository
	uploader    storage.FileUploader
	logger      *zap.Logger
	now         func() time.Time
}

func NewUserService(
	userRepo repositories.UserRepository,
	contestRepo repositories.ContestRepository,
	uploader storage.FileUploader,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		contestRepo: contestRepo,
		uploader:    uploader,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *userService) GetProfile(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}
	sanitizeUser(user)
	return user, nil
}

func (s *userService) GetPublic(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}
	public := user.Public()
	sanitizeUser(&public)
	return &public, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor models.Actor, input UpdateProfileInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.PhotoURL != nil {
		if *input.PhotoURL == "" {
			user.PhotoURL = nil
		} else {
			user.PhotoURL = input.PhotoURL
		}
		user.PhotoKey = nil
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Address != nil {
		user.Address = *input.Address
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, mapUserLookupError(err)
	}
	sanitizeUser(user)
	return user, nil
}

func (s *userService) UploadPhoto(ctx context.Context, actor models.Actor, contentType string, reader io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	key, err := storage.ObjectKey(fmt.Sprintf("users/%d", user.ID), user.Name, contentType)
	if err != nil {
		return nil, err
	}

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, err
	}

	oldKey := user.PhotoKey
	user.PhotoURL = &result.Location
	user.PhotoKey = &result.Key

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned user photo", zap.String("key", result.Key), zap.Error(delErr))
		}
		return nil, mapUserLookupError(err)
	}

	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous user photo", zap.String("key", *oldKey), zap.Error(err))
		}
	}

	sanitizeUser(user)
	return user, nil
}

func (s *userService) Stats(ctx context.Context, actor models.Actor) (*models.UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}
	return &models.UserStats{
		TotalParticipated: user.ParticipatedCount,
		TotalWon:          user.WonCount,
		WinPercentage:     winPercentage(user.WonCount, user.ParticipatedCount),
		Badges:            badgesFor(user.ParticipatedCount, user.WonCount),
	}, nil
}

func (s *userService) Participated(ctx context.Context, actor models.Actor) ([]ContestView, error) {
	userID := actor.UserID
	contests, err := s.contestRepo.List(ctx, repositories.ListContestsFilter{ParticipantID: &userID})
	if err != nil {
		return nil, err
	}
	return toContestViews(contests, s.now()), nil
}

func (s *userService) Winnings(ctx context.Context, actor models.Actor) (*models.Winnings, error) {
	userID := actor.UserID
	contests, err := s.contestRepo.List(ctx, repositories.ListContestsFilter{WinnerID: &userID})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, c := range contests {
		total = total.Add(c.Prize)
	}
	return &models.Winnings{Contests: contests, TotalPrize: total}, nil
}
