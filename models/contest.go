package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContestStatus string

const (
	StatusPending   ContestStatus = "pending"
	StatusConfirmed ContestStatus = "confirmed"
	StatusRejected  ContestStatus = "rejected"
)

func (s ContestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

type ContestType string

const (
	TypeLogoDesign     ContestType = "Logo Design"
	TypeArticleWriting ContestType = "Article Writing"
	TypeWebDesign      ContestType = "Web Design"
	TypeUIUX           ContestType = "UI/UX"
	TypeImageDesign    ContestType = "Image Design"
)

var ContestTypes = []ContestType{
	TypeLogoDesign,
	TypeArticleWriting,
	TypeWebDesign,
	TypeUIUX,
	TypeImageDesign,
}

func (t ContestType) Valid() bool {
	for _, ct := range ContestTypes {
		if ct == t {
			return true
		}
	}
	return false
}

type Contest struct {
	ID                int             `json:"id"`
	CreatorID         int             `json:"creator_id"`
	Name              string          `json:"name"`
	Slug              string          `json:"slug"`
	Description       string          `json:"description"`
	TaskInstruction   string          `json:"task_instruction"`
	ImageURL          *string         `json:"image_url,omitempty"`
	ImageKey          *string         `json:"-"`
	Type              ContestType     `json:"type"`
	Price             decimal.Decimal `json:"price"`
	Prize             decimal.Decimal `json:"prize"`
	Deadline          time.Time       `json:"deadline"`
	Status            ContestStatus   `json:"status"`
	Participants      []int           `json:"participants"`
	ParticipantsCount int             `json:"participants_count"`
	WinnerID          *int            `json:"winner_id,omitempty"`
	WinnerDeclaredAt  *time.Time      `json:"winner_declared_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`

	Creator *User `json:"creator,omitempty"`
	Winner  *User `json:"winner,omitempty"`
}

func (c *Contest) HasParticipant(userID int) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Contest) OwnedBy(userID int) bool {
	return c.CreatorID == userID
}

// RecentWinner is a contest with a declared winner, shown on the landing page.
type RecentWinner struct {
	ContestID   int             `json:"contest_id"`
	ContestName string          `json:"contest_name"`
	ContestType ContestType     `json:"contest_type"`
	Prize       decimal.Decimal `json:"prize"`
	WinnerID    int             `json:"winner_id"`
	WinnerName  string          `json:"winner_name"`
	WinnerPhoto *string         `json:"winner_photo,omitempty"`
	DeclaredAt  time.Time       `json:"declared_at"`
}
