package event

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusReviewed      Status = "REVIEWED"
	StatusArchived      Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusReviewed, StatusArchived:
		return true
	default:
		return false
	}
}

type Event struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	ChurchID    uuid.UUID `json:"churchId"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedByID uuid.UUID `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Stats struct {
	PhotoCount    int `json:"photoCount"`
	ApprovedCount int `json:"approvedCount"`
	RejectedCount int `json:"rejectedCount"`
	PendingCount  int `json:"pendingCount"`
}

type WithStats struct {
	Event
	ChurchName string `json:"churchName"`
	Stats      Stats  `json:"stats"`
}

type CreateEventInput struct {
	Name        string
	Date        time.Time
	ChurchID    uuid.UUID
	Description *string
	CreatedByID uuid.UUID
}

type UpdateEventInput struct {
	Name        *string
	Date        *time.Time
	ChurchID    *uuid.UUID
	Description *string
	Status      *Status
}

type ListFilter struct {
	CreatedByID *uuid.UUID
	Status      *Status
	ChurchID    *uuid.UUID
}
