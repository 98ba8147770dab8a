package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/lifecycle"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/payments"
	"github.com/Dosada05/contesthub/repositories"
	"github.com/Dosada05/contesthub/storage"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	popularContestsLimit = 5
	recentWinnersLimit   = 6
)

type PublicContestFilter struct {
	Search string
	Type   *models.ContestType
}

type JoinResult struct {
	Contest    *ContestView `json:"contest"`
	PaymentRef string       `json:"payment_ref"`
}

type ContestService interface {
	Create(ctx context.Context, actor models.Actor, input ContestInput) (*ContestView, error)
	Update(ctx context.Context, actor models.Actor, contestID int, input ContestInput) (*ContestView, error)
	Delete(ctx context.Context, actor models.Actor, contestID int) error
	Approve(ctx context.Context, actor models.Actor, contestID int) (*ContestView, error)
	Reject(ctx context.Context, actor models.Actor, contestID int) (*ContestView, error)
	SetStatus(ctx context.Context, actor models.Actor, contestID int, status models.ContestStatus) (*ContestView, error)
	Join(ctx context.Context, actor models.Actor, contestID int) (*JoinResult, error)
	UploadImage(ctx context.Context, actor models.Actor, contestID int, contentType string, reader io.Reader) (*ContestView, error)

	Get(ctx context.Context, actor models.Actor, contestID int) (*ContestView, error)
	ListPublic(ctx context.Context, filter PublicContestFilter) ([]ContestView, error)
	ListAll(ctx context.Context, actor models.Actor, status *models.ContestStatus) ([]ContestView, error)
	ListByCreator(ctx context.Context, actor models.Actor) ([]ContestView, error)
	Popular(ctx context.Context) ([]ContestView, error)
	RecentWinners(ctx context.Context) ([]models.RecentWinner, error)
}

type contestService struct {
	tx          repositories.Transactor
	contestRepo repositories.ContestRepository
	packageRepo repositories.PackageRepository
	paymentRepo repositories.PaymentRepository
	userRepo    repositories.UserRepository
	gateway     payments.Gateway
	uploader    storage.FileUploader
	leaderboard cache.LeaderboardCache
	logger      *zap.Logger
	now         func() time.Time
}

func NewContestService(
	tx repositories.Transactor,
	contestRepo repositories.ContestRepository,
	packageRepo repositories.PackageRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	gateway payments.Gateway,
	uploader storage.FileUploader,
	leaderboard cache.LeaderboardCache,
	logger *zap.Logger,
) ContestService {
	return &contestService{
		tx:          tx,
		contestRepo: contestRepo,
		packageRepo: packageRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		uploader:    uploader,
		leaderboard: leaderboard,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *contestService) getContest(ctx context.Context, id int) (*models.Contest, error) {
	c, err := s.contestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapContestLookupError(err)
	}
	return c, nil
}

// Create needs a live package with quota left. The quota slot and the new
// contest are written in one transaction.
func (s *contestService) Create(ctx context.Context, actor models.Actor, input ContestInput) (*ContestView, error) {
	if !actor.Is(models.RoleCreator) {
		return nil, ErrForbidden
	}

	now := s.now()
	if err := input.Validate(now); err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.GetLatestForUser(ctx, actor.UserID)
	if err != nil && !errors.Is(err, repositories.ErrPackageNotFound) {
		return nil, fmt.Errorf("failed to load creator package: %w", err)
	}
	if err := quotaCheck(pkg, now); err != nil {
		return nil, err
	}

	contest := &models.Contest{
		CreatorID:       actor.UserID,
		Name:            input.Name,
		Slug:            slug.Make(input.Name),
		Description:     input.Description,
		TaskInstruction: input.TaskInstruction,
		ImageURL:        input.ImageURL,
		Type:            input.Type,
		Price:           input.Price,
		Prize:           input.Prize,
		Deadline:        input.Deadline,
		Status:          models.StatusPending,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.packageRepo.ConsumeQuota(ctx, exec, actor.UserID, now); err != nil {
			if errors.Is(err, repositories.ErrQuotaUnavailable) {
				return &QuotaError{Reason: "package quota is no longer available"}
			}
			return err
		}
		return s.contestRepo.Create(ctx, exec, contest)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contest created",
		zap.Int("contest_id", contest.ID),
		zap.Int("creator_id", actor.UserID),
	)
	return toContestView(contest, now), nil
}

func (s *contestService) Update(ctx context.Context, actor models.Actor, contestID int, input ContestInput) (*ContestView, error) {
	c, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleAdmin) && !(actor.Is(models.RoleCreator) && c.OwnedBy(actor.UserID)) {
		return nil, ErrForbidden
	}

	now := s.now()
	if _, err := lifecycle.Check(lifecycle.SnapshotOf(c), lifecycle.ActionEdit, now); err != nil {
		return nil, err
	}
	if err := input.Validate(now); err != nil {
		return nil, err
	}

	c.Name = input.Name
	c.Slug = slug.Make(input.Name)
	c.Description = input.Description
	c.TaskInstruction = input.TaskInstruction
	if input.ImageURL != nil {
		c.ImageURL = input.ImageURL
	}
	c.Type = input.Type
	c.Price = input.Price
	c.Prize = input.Prize
	c.Deadline = input.Deadline

	if err := s.contestRepo.Update(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrContestStateConflict) {
			return nil, raceLost(c.Status, lifecycle.ActionEdit)
		}
		return nil, err
	}
	return toContestView(c, now), nil
}

// Delete: admins may delete in any status, owners only while pending.
func (s *contestService) Delete(ctx context.Context, actor models.Actor, contestID int) error {
	c, err := s.getContest(ctx, contestID)
	if err != nil {
		return err
	}

	var (
		action        lifecycle.Action
		requireStatus *models.ContestStatus
	)
	switch {
	case actor.Is(models.RoleAdmin):
		action = lifecycle.ActionAdminDelete
	case actor.Is(models.RoleCreator) && c.OwnedBy(actor.UserID):
		action = lifecycle.ActionOwnerDelete
		pending := models.StatusPending
		requireStatus = &pending
	default:
		return ErrForbidden
	}

	if _, err := lifecycle.Check(lifecycle.SnapshotOf(c), action, s.now()); err != nil {
		return err
	}

	if err := s.contestRepo.Delete(ctx, contestID, requireStatus); err != nil {
		switch {
		case errors.Is(err, repositories.ErrContestStateConflict):
			return raceLost(c.Status, action)
		case errors.Is(err, repositories.ErrContestNotFound):
			return ErrContestNotFound
		}
		return err
	}

	if c.ImageKey != nil {
		if err := s.uploader.Delete(ctx, *c.ImageKey); err != nil && !errors.Is(err, storage.ErrUploadsDisabled) {
			s.logger.Warn("failed to delete contest image", zap.Int("contest_id", c.ID), zap.Error(err))
		}
	}

	s.logger.Info("contest deleted",
		zap.Int("contest_id", contestID),
		zap.Int("actor_id", actor.UserID),
		zap.String("status", string(c.Status)),
	)
	return nil
}

func (s *contestService) Approve(ctx context.Context, actor models.Actor, contestID int) (*ContestView, error) {
	return s.review(ctx, actor, contestID, lifecycle.ActionApprove)
}

func (s *contestService) Reject(ctx context.Context, actor models.Actor, contestID int) (*ContestView, error) {
	return s.review(ctx, actor, contestID, lifecycle.ActionReject)
}

func (s *contestService) SetStatus(ctx context.Context, actor models.Actor, contestID int, status models.ContestStatus) (*ContestView, error) {
	switch status {
	case models.StatusConfirmed:
		return s.Approve(ctx, actor, contestID)
	case models.StatusRejected:
		return s.Reject(ctx, actor, contestID)
	default:
		return nil, &ValidationError{Fields: map[string]string{"status": "must be confirmed or rejected"}}
	}
}

func (s *contestService) review(ctx context.Context, actor models.Actor, contestID int, action lifecycle.Action) (*ContestView, error) {
	if !actor.Is(models.RoleAdmin) {
		return nil, ErrForbidden
	}

	c, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, err := lifecycle.Check(lifecycle.SnapshotOf(c), action, now)
	if err != nil {
		return nil, err
	}

	if err := s.contestRepo.UpdateStatus(ctx, contestID, c.Status, next); err != nil {
		if errors.Is(err, repositories.ErrContestStateConflict) {
			return nil, raceLost(c.Status, action)
		}
		return nil, err
	}

	s.logger.Info("contest reviewed",
		zap.Int("contest_id", contestID),
		zap.String("from", string(c.Status)),
		zap.String("to", string(next)),
	)
	c.Status = next
	return toContestView(c, now), nil
}

// Join charges the entry price, then records participation and bumps the
// participated counter in one transaction.
func (s *contestService) Join(ctx context.Context, actor models.Actor, contestID int) (*JoinResult, error) {
	if !actor.Is(models.RoleUser) {
		return nil, ErrForbidden
	}

	c, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := lifecycle.Check(lifecycle.SnapshotOf(c), lifecycle.ActionJoin, now); err != nil {
		return nil, err
	}
	if c.HasParticipant(actor.UserID) {
		return nil, ErrAlreadyJoined
	}

	receipt, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		UserID:      actor.UserID,
		Amount:      c.Price,
		Description: fmt.Sprintf("entry fee for contest %d", c.ID),
	})
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.contestRepo.AddParticipant(ctx, exec, c.ID, actor.UserID, receipt.Reference, now); err != nil {
			switch {
			case errors.Is(err, repositories.ErrAlreadyParticipant):
				return ErrAlreadyJoined
			case errors.Is(err, repositories.ErrContestStateConflict):
				return raceLost(c.Status, lifecycle.ActionJoin)
			}
			return err
		}
		if err := s.paymentRepo.Record(ctx, exec, &models.Payment{
			Reference: receipt.Reference,
			UserID:    actor.UserID,
			Purpose:   models.PaymentPurposeContestEntry,
			SubjectID: c.ID,
			Amount:    receipt.Amount,
		}); err != nil {
			return err
		}
		return s.userRepo.IncrementParticipated(ctx, exec, actor.UserID)
	})
	if err != nil {
		refundUnsettled(ctx, s.gateway, s.logger, receipt, err,
			zap.String("operation", "join"),
			zap.Int("contest_id", c.ID),
			zap.Int("user_id", actor.UserID),
		)
		return nil, err
	}

	c.Participants = append(c.Participants, actor.UserID)
	c.ParticipantsCount = len(c.Participants)
	invalidateLeaderboard(ctx, s.leaderboard, s.logger)

	s.logger.Info("contest joined", zap.Int("contest_id", c.ID), zap.Int("user_id", actor.UserID))
	return &JoinResult{Contest: toContestView(c, now), PaymentRef: receipt.Reference}, nil
}

func (s *contestService) UploadImage(ctx context.Context, actor models.Actor, contestID int, contentType string, reader io.Reader) (*ContestView, error) {
	c, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleCreator) || !c.OwnedBy(actor.UserID) {
		return nil, ErrForbidden
	}

	now := s.now()
	if _, err := lifecycle.Check(lifecycle.SnapshotOf(c), lifecycle.ActionUploadImage, now); err != nil {
		return nil, err
	}

	key, err := storage.ObjectKey(fmt.Sprintf("contests/%d", c.ID), c.Name, contentType)
	if err != nil {
		return nil, err
	}

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, err
	}

	if err := s.contestRepo.UpdateImage(ctx, c.ID, &result.Location, &result.Key); err != nil {
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned contest image", zap.String("key", result.Key), zap.Error(delErr))
		}
		if errors.Is(err, repositories.ErrContestStateConflict) {
			return nil, raceLost(c.Status, lifecycle.ActionUploadImage)
		}
		return nil, err
	}

	if c.ImageKey != nil && *c.ImageKey != result.Key {
		if err := s.uploader.Delete(ctx, *c.ImageKey); err != nil {
			s.logger.Warn("failed to delete previous contest image", zap.String("key", *c.ImageKey), zap.Error(err))
		}
	}

	c.ImageURL = &result.Location
	c.ImageKey = &result.Key
	return toContestView(c, now), nil
}

// Get hides contests that are not yet public from everyone but the owner and admins.
func (s *contestService) Get(ctx context.Context, actor models.Actor, contestID int) (*ContestView, error) {
	c, err := s.getContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusConfirmed && !actor.Is(models.RoleAdmin) && !c.OwnedBy(actor.UserID) {
		return nil, ErrContestNotFound
	}
	return toContestView(c, s.now()), nil
}

func (s *contestService) ListPublic(ctx context.Context, filter PublicContestFilter) ([]ContestView, error) {
	confirmed := models.StatusConfirmed
	contests, err := s.contestRepo.List(ctx, repositories.ListContestsFilter{
		Status: &confirmed,
		Type:   filter.Type,
		Search: filter.Search,
	})
	if err != nil {
		return nil, err
	}
	return toContestViews(contests, s.now()), nil
}

func (s *contestService) ListAll(ctx context.Context, actor models.Actor, status *models.ContestStatus) ([]ContestView, error) {
	if !actor.Is(models.RoleAdmin) {
		return nil, ErrForbidden
	}
	contests, err := s.contestRepo.List(ctx, repositories.ListContestsFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return toContestViews(contests, s.now()), nil
}

func (s *contestService) ListByCreator(ctx context.Context, actor models.Actor) ([]ContestView, error) {
	if !actor.Is(models.RoleCreator) {
		return nil, ErrForbidden
	}
	creatorID := actor.UserID
	contests, err := s.contestRepo.List(ctx, repositories.ListContestsFilter{CreatorID: &creatorID})
	if err != nil {
		return nil, err
	}
	return toContestViews(contests, s.now()), nil
}

func (s *contestService) Popular(ctx context.Context) ([]ContestView, error) {
	contests, err := s.contestRepo.Popular(ctx, popularContestsLimit)
	if err != nil {
		return nil, err
	}
	return toContestViews(contests, s.now()), nil
}

func (s *contestService) RecentWinners(ctx context.Context) ([]models.RecentWinner, error) {
	return s.contestRepo.RecentWinners(ctx, recentWinnersLimit)
}
