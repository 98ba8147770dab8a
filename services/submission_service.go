package services

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/lifecycle"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"go.uber.org/zap"
)

type SubmissionService interface {
	Submit(ctx context.Context, actor models.Actor, contestID int, input SubmitInput) (*models.Submission, error)
	List(ctx context.Context, actor models.Actor, contestID int) ([]models.Submission, error)
	DeclareWinner(ctx context.Context, actor models.Actor, contestID, winnerID int) (*ContestView, error)
}

type submissionService struct {
	tx             repositories.Transactor
	contestRepo    repositories.ContestRepository
	submissionRepo repositories.SubmissionRepository
	userRepo       repositories.UserRepository
	leaderboard    cache.LeaderboardCache
	logger         *zap.Logger
	now            func() time.Time
}

func NewSubmissionService(
	tx repositories.Transactor,
	contestRepo repositories.ContestRepository,
	submissionRepo repositories.SubmissionRepository,
	userRepo repositories.UserRepository,
	leaderboard cache.LeaderboardCache,
	logger *zap.Logger,
) SubmissionService {
	return &submissionService{
		tx:             tx,
		contestRepo:    contestRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		leaderboard:    leaderboard,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, actor models.Actor, contestID int, input SubmitInput) (*models.Submission, error) {
	if !actor.Is(models.RoleUser) {
		return nil, ErrForbidden
	}

	c, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, mapContestLookupError(err)
	}

	now := s.now()
	if _, err := lifecycle.Check(lifecycle.SnapshotOf(c), lifecycle.ActionSubmit, now); err != nil {
		return nil, err
	}
	if !c.HasParticipant(actor.UserID) {
		return nil, ErrNotParticipant
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		ContestID:   contestID,
		UserID:      actor.UserID,
		Payload:     input.Payload,
		SubmittedAt: now,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSubmissionConflict):
			return nil, ErrAlreadySubmitted
		case errors.Is(err, repositories.ErrSubmissionNotParticipant):
			return nil, ErrNotParticipant
		}
		return nil, err
	}

	s.logger.Info("submission received",
		zap.Int("contest_id", contestID),
		zap.Int("user_id", actor.UserID),
		zap.Int("submission_id", sub.ID),
	)
	return sub, nil
}

func (s *submissionService) List(ctx context.Context, actor models.Actor, contestID int) ([]models.Submission, error) {
	c, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, mapContestLookupError(err)
	}
	if !actor.Is(models.RoleAdmin) && !(actor.Is(models.RoleCreator) && c.OwnedBy(actor.UserID)) {
		return nil, ErrForbidden
	}

	subs, err := s.submissionRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].User != nil {
			public := subs[i].User.Public()
			subs[i].User = &public
		}
	}
	return subs, nil
}

// DeclareWinner checks membership before the lifecycle so a non-participant
// is always reported as such, whatever the contest state.
func (s *submissionService) DeclareWinner(ctx context.Context, actor models.Actor, contestID, winnerID int) (*ContestView, error) {
	c, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, mapContestLookupError(err)
	}
	if !actor.Is(models.RoleCreator) || !c.OwnedBy(actor.UserID) {
		return nil, ErrForbidden
	}
	if !c.HasParticipant(winnerID) {
		return nil, ErrInvalidParticipant
	}

	now := s.now()
	if _, err := lifecycle.Check(lifecycle.SnapshotOf(c), lifecycle.ActionDeclareWinner, now); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.contestRepo.SetWinner(ctx, exec, contestID, winnerID, now); err != nil {
			if errors.Is(err, repositories.ErrWinnerAlreadySet) {
				return &lifecycle.TransitionError{
					From:   c.Status,
					Action: lifecycle.ActionDeclareWinner,
					Reason: lifecycle.ErrWinnerAlreadyChosen,
				}
			}
			return err
		}
		return s.userRepo.IncrementWon(ctx, exec, winnerID)
	})
	if err != nil {
		return nil, err
	}

	invalidateLeaderboard(ctx, s.leaderboard, s.logger)

	s.logger.Info("winner declared",
		zap.Int("contest_id", contestID),
		zap.Int("winner_id", winnerID),
	)

	c.WinnerID = &winnerID
	c.WinnerDeclaredAt = &now
	if winner, err := s.userRepo.GetByID(ctx, winnerID); err == nil {
		public := winner.Public()
		c.Winner = &public
	}
	return toContestView(c, now), nil
}
