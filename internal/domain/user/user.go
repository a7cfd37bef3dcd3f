package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleMedia Role = "MEDIA"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMedia
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected:
		return true
	default:
		return false
	}
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Image     *string   `json:"image"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName falls back to nil when the user never set a name.
func (u *User) DisplayName() *string {
	if u.Name == nil || *u.Name == "" {
		return nil
	}
	return u.Name
}

// WithEventCount is the admin listing projection.
type WithEventCount struct {
	User
	EventCount int `json:"eventCount"`
}

type CreateUserInput struct {
	Email  string
	Name   *string
	Role   Role
	Status Status
}

type UpdateUserInput struct {
	Role   *Role
	Status *Status
}

type ListFilter struct {
	Role   *Role
	Status *Status
}
