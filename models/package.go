package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnlimitedContests marks a plan without a contest cap.
const UnlimitedContests = -1

type PackagePlan struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ContestLimit int             `json:"contest_limit"`
	DurationDays int             `json:"duration_days"`
	Features     []string        `json:"features"`
	Color        string          `json:"color"`
	Popular      bool            `json:"popular"`
}

type CreatorPackage struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	PlanID       int       `json:"plan_id"`
	PlanName     string    `json:"plan_name"`
	ContestLimit int       `json:"contest_limit"`
	ContestsUsed int       `json:"contests_used"`
	PaymentRef   string    `json:"payment_ref"`
	PurchasedAt  time.Time `json:"purchased_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (p *CreatorPackage) Unlimited() bool {
	return p.ContestLimit == UnlimitedContests
}

func (p *CreatorPackage) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Remaining returns -1 for unlimited packages.
func (p *CreatorPackage) Remaining() int {
	if p.Unlimited() {
		return UnlimitedContests
	}
	if left := p.ContestLimit - p.ContestsUsed; left > 0 {
		return left
	}
	return 0
}

func (p *CreatorPackage) HasQuota(now time.Time) bool {
	if p.Expired(now) {
		return false
	}
	return p.Unlimited() || p.ContestsUsed < p.ContestLimit
}
