package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Dosada05/contesthub/cache"
	"github.com/Dosada05/contesthub/lifecycle"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/payments"
	"github.com/Dosada05/contesthub/repositories"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ContestView is a contest plus the countdown derived at read time.
type ContestView struct {
	models.Contest
	TimeLeft lifecycle.Countdown `json:"time_left"`
}

func toContestView(c *models.Contest, now time.Time) *ContestView {
	if c.Participants == nil {
		c.Participants = []int{}
	}
	return &ContestView{Contest: *c, TimeLeft: lifecycle.CountdownTo(c.Deadline, now)}
}

func toContestViews(contests []models.Contest, now time.Time) []ContestView {
	views := make([]ContestView, len(contests))
	for i := range contests {
		views[i] = *toContestView(&contests[i], now)
	}
	return views
}

func mapContestLookupError(err error) error {
	if errors.Is(err, repositories.ErrContestNotFound) {
		return ErrContestNotFound
	}
	return err
}

func mapUserLookupError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

// raceLost reports a conditional write that matched no row because the
// contest moved on between read and write.
func raceLost(from models.ContestStatus, action lifecycle.Action) error {
	return &lifecycle.TransitionError{From: from, Action: action, Reason: repositories.ErrContestStateConflict}
}

// refundUnsettled reverses a charge whose transaction did not commit. The
// reference is always logged so a failed refund can be reconciled by hand.
func refundUnsettled(ctx context.Context, gateway payments.Gateway, logger *zap.Logger, receipt *payments.Receipt, cause error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("payment_ref", receipt.Reference),
		zap.String("amount", receipt.Amount.StringFixed(2)),
		zap.NamedError("cause", cause),
	)

	if err := gateway.Refund(context.WithoutCancel(ctx), receipt.Reference); err != nil {
		logger.Error("charge not settled and refund failed", append(fields, zap.Error(err))...)
		return
	}
	logger.Warn("charge not settled, refunded", fields...)
}

// invalidateLeaderboard drops cached leaderboard pages after a write that
// changes ranking data. Failures only leave pages stale until their TTL.
func invalidateLeaderboard(ctx context.Context, lb cache.LeaderboardCache, logger *zap.Logger) {
	if err := lb.Invalidate(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}

// quotaCheck returns nil when pkg allows one more contest at now.
func quotaCheck(pkg *models.CreatorPackage, now time.Time) error {
	switch {
	case pkg == nil:
		return &QuotaError{Reason: "no package found, purchase a package to create contests"}
	case pkg.Expired(now):
		return &QuotaError{Reason: "your package has expired, purchase a new package to create contests"}
	case !pkg.HasQuota(now):
		return &QuotaError{Reason: "you have used all contests in your package, wait for it to expire and purchase a new one"}
	}
	return nil
}

func winRate(won, participated int) float64 {
	if participated <= 0 {
		return 0
	}
	return float64(won) / float64(participated)
}

// winPercentage is rounded to two decimals.
func winPercentage(won, participated int) float64 {
	return math.Round(winRate(won, participated)*10000) / 100
}

func badgesFor(participated, won int) []string {
	badges := make([]string, 0, 4)
	if participated >= 1 {
		badges = append(badges, "first-contest")
	}
	if won >= 1 {
		badges = append(badges, "first-win")
	}
	if participated >= 5 {
		badges = append(badges, "regular")
	}
	if participated > 0 && winPercentage(won, participated) >= 50 {
		badges = append(badges, "sharpshooter")
	}
	return badges
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func sanitizeUser(u *models.User) {
	if u != nil {
		u.PasswordHash = ""
	}
}
