package models

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleCreator UserRole = "creator"
	RoleAdmin   UserRole = "admin"
)

var UserRoles = []UserRole{RoleUser, RoleCreator, RoleAdmin}

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	PasswordHash      string    `json:"-"`
	Role              UserRole  `json:"role"`
	PhotoURL          *string   `json:"photo_url,omitempty"`
	PhotoKey          *string   `json:"-"`
	Bio               string    `json:"bio"`
	Address           string    `json:"address"`
	ParticipatedCount int       `json:"participated_count"`
	WonCount          int       `json:"won_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// Public strips fields that only the owner may see.
func (u User) Public() User {
	u.Email = ""
	u.Address = ""
	return u
}

// Actor identifies who performs an operation.
type Actor struct {
	UserID int
	Role   UserRole
}

func (a Actor) Is(role UserRole) bool {
	return a.Role == role
}

type UserFilter struct {
	Search string
	Role   *UserRole
	Page   int
	Limit  int
}

type UserListResponse struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}
