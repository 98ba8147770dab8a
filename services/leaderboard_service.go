package services

import (
	"context"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type LeaderboardService interface {
	Page(ctx context.Context, page, limit int) (*models.LeaderboardPage, error)
}

type leaderboardService struct {
	userRepo repositories.UserRepository
	cache    cache.LeaderboardCache
	logger   *zap.Logger
}

func NewLeaderboardService(userRepo repositories.UserRepository, lbCache cache.LeaderboardCache, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{
		userRepo: userRepo,
		cache:    lbCache,
		logger:   logger,
	}
}

// Page ranks every user by wins. Ranks are global, so page 2 starts at limit+1.
func (s *leaderboardService) Page(ctx context.Context, page, limit int) (*models.LeaderboardPage, error) {
	page, limit = normalizePage(page, limit)

	if cached, ok, err := s.cache.Get(ctx, page, limit); err != nil {
		s.logger.Warn("leaderboard cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	offset := (page - 1) * limit

	var (
		users []models.User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.Ranking(gctx, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.userRepo.Count(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = models.LeaderboardEntry{
			Rank:         offset + i + 1,
			UserID:       u.ID,
			Name:         u.Name,
			PhotoURL:     u.PhotoURL,
			Wins:         u.WonCount,
			Participated: u.ParticipatedCount,
			WinRate:      winRate(u.WonCount, u.ParticipatedCount),
			Role:         u.Role,
		}
	}

	result := &models.LeaderboardPage{
		Entries: entries,
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   (total + limit - 1) / limit,
	}

	if err := s.cache.Set(ctx, result); err != nil {
		s.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}
	return result, nil
}
