package services

import (
	"context"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error)
}

type dashboardService struct {
	userRepo    repositories.UserRepository
	contestRepo repositories.ContestRepository
}

func NewDashboardService(userRepo repositories.UserRepository, contestRepo repositories.ContestRepository) DashboardService {
	return &dashboardService{userRepo: userRepo, contestRepo: contestRepo}
}

func (s *dashboardService) GetStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error) {
	if !actor.Is(models.RoleAdmin) {
		return nil, ErrForbidden
	}

	var stats models.DashboardStats
	pending := models.StatusPending

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = s.userRepo.Count(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalContests, err = s.contestRepo.Count(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PendingContests, err = s.contestRepo.Count(gctx, &pending)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalPrizePool, err = s.contestRepo.TotalPrizePool(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
