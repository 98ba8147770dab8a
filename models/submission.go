package models

import "time"

type Submission struct {
	ID          int       `json:"id"`
	ContestID   int       `json:"contest_id"`
	UserID      int       `json:"user_id"`
	Payload     string    `json:"payload"`
	SubmittedAt time.Time `json:"submitted_at"`

	User *User `json:"user,omitempty"`
}
