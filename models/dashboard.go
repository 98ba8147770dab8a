package models

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalUsers      int             `json:"total_users"`
	TotalContests   int             `json:"total_contests"`
	PendingContests int             `json:"pending_contests"`
	TotalPrizePool  decimal.Decimal `json:"total_prize_pool"`
}

type UserStats struct {
	TotalParticipated int      `json:"total_participated"`
	TotalWon          int      `json:"total_won"`
	WinPercentage     float64  `json:"win_percentage"`
	Badges            []string `json:"badges"`
}

type Winnings struct {
	Contests   []Contest       `json:"winnings"`
	TotalPrize decimal.Decimal `json:"total_prize"`
}

type LeaderboardEntry struct {
	Rank         int      `json:"rank"`
	UserID       int      `json:"user_id"`
	Name         string   `json:"name"`
	PhotoURL     *string  `json:"photo_url,omitempty"`
	Wins         int      `json:"wins"`
	Participated int      `json:"participated"`
	WinRate      float64  `json:"win_rate"`
	Role         UserRole `json:"role"`
}

type LeaderboardPage struct {
	Entries []LeaderboardEntry `json:"entries"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Total   int                `json:"total"`
	Pages   int                `json:"pages"`
}

// Payment is the record of a charge made through the payment gateway.
type Payment struct {
	ID        int             `json:"id"`
	Reference string          `json:"reference"`
	UserID    int             `json:"user_id"`
	Purpose   string          `json:"purpose"`
	SubjectID int             `json:"subject_id"`
	Amount    decimal.Decimal `json:"amount"`
}

const (
	PaymentPurposeContestEntry = "contest_entry"
	PaymentPurposePackage      = "package"
)
