package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/payments"
	"github.com/Dosada05/contesthub/repositories"
	"go.uber.org/zap"
)

type PackageStatus struct {
	HasPackage bool            `json:"has_package"`
	Package    *PackageSummary `json:"package,omitempty"`
}

type PackageSummary struct {
	models.CreatorPackage
	Remaining int  `json:"remaining"`
	Expired   bool `json:"expired"`
}

type CreateEligibility struct {
	CanCreate       bool   `json:"can_create"`
	Reason          string `json:"reason,omitempty"`
	RequiresPackage bool   `json:"requires_package"`
}

type PackageService interface {
	ListPlans(ctx context.Context) ([]models.PackagePlan, error)
	Current(ctx context.Context, actor models.Actor) (*PackageStatus, error)
	CanCreate(ctx context.Context, actor models.Actor) (*CreateEligibility, error)
	Purchase(ctx context.Context, actor models.Actor, planID int) (*PackageSummary, error)
}

type packageService struct {
	tx          repositories.Transactor
	packageRepo repositories.PackageRepository
	paymentRepo repositories.PaymentRepository
	gateway     payments.Gateway
	logger      *zap.Logger
	now         func() time.Time
}

func NewPackageService(
	tx repositories.Transactor,
	packageRepo repositories.PackageRepository,
	paymentRepo repositories.PaymentRepository,
	gateway payments.Gateway,
	logger *zap.Logger,
) PackageService {
	return &packageService{
		tx:          tx,
		packageRepo: packageRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		logger:      logger,
		now:         time.Now,
	}
}

func summarize(pkg *models.CreatorPackage, now time.Time) *PackageSummary {
	return &PackageSummary{
		CreatorPackage: *pkg,
		Remaining:      pkg.Remaining(),
		Expired:        pkg.Expired(now),
	}
}

func (s *packageService) latest(ctx context.Context, userID int) (*models.CreatorPackage, error) {
	pkg, err := s.packageRepo.GetLatestForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPackageNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load creator package: %w", err)
	}
	return pkg, nil
}

func (s *packageService) ListPlans(ctx context.Context) ([]models.PackagePlan, error) {
	return s.packageRepo.ListPlans(ctx)
}

func (s *packageService) Current(ctx context.Context, actor models.Actor) (*PackageStatus, error) {
	pkg, err := s.latest(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return &PackageStatus{HasPackage: false}, nil
	}
	return &PackageStatus{HasPackage: true, Package: summarize(pkg, s.now())}, nil
}

func (s *packageService) CanCreate(ctx context.Context, actor models.Actor) (*CreateEligibility, error) {
	if !actor.Is(models.RoleCreator) {
		return &CreateEligibility{CanCreate: false, Reason: "only creators can create contests"}, nil
	}
	pkg, err := s.latest(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := quotaCheck(pkg, s.now()); err != nil {
		var qe *QuotaError
		if errors.As(err, &qe) {
			return &CreateEligibility{CanCreate: false, Reason: qe.Reason, RequiresPackage: true}, nil
		}
		return nil, err
	}
	return &CreateEligibility{CanCreate: true}, nil
}

// Purchase is refused while the latest package is still running.
func (s *packageService) Purchase(ctx context.Context, actor models.Actor, planID int) (*PackageSummary, error) {
	if !actor.Is(models.RoleCreator) {
		return nil, ErrForbidden
	}

	plan, err := s.packageRepo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	now := s.now()
	current, err := s.latest(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if current != nil && !current.Expired(now) {
		return nil, ErrPackageActive
	}

	receipt, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		UserID:      actor.UserID,
		Amount:      plan.Price,
		Description: fmt.Sprintf("%s package", plan.Name),
	})
	if err != nil {
		return nil, err
	}

	pkg := &models.CreatorPackage{
		UserID:       actor.UserID,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
		ContestLimit: plan.ContestLimit,
		PaymentRef:   receipt.Reference,
		PurchasedAt:  now,
		ExpiresAt:    now.AddDate(0, 0, plan.DurationDays),
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.packageRepo.Create(ctx, exec, pkg); err != nil {
			return err
		}
		return s.paymentRepo.Record(ctx, exec, &models.Payment{
			Reference: receipt.Reference,
			UserID:    actor.UserID,
			Purpose:   models.PaymentPurposePackage,
			SubjectID: plan.ID,
			Amount:    receipt.Amount,
		})
	})
	if err != nil {
		refundUnsettled(ctx, s.gateway, s.logger, receipt, err,
			zap.String("operation", "package_purchase"),
			zap.Int("user_id", actor.UserID),
			zap.Int("plan_id", plan.ID),
		)
		return nil, err
	}

	s.logger.Info("package purchased",
		zap.Int("user_id", actor.UserID),
		zap.String("plan", plan.Name),
		zap.Time("expires_at", pkg.ExpiresAt),
	)
	return summarize(pkg, now), nil
}
