package project

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ChurchID    uuid.UUID `json:"churchId"`
	Description *string   `json:"description"`
	CreatedByID uuid.UUID `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Stats summarises a project's media by type and review state.
type Stats struct {
	MediaCount    int `json:"mediaCount"`
	VisualCount   int `json:"visualCount"`
	VideoCount    int `json:"videoCount"`
	PendingCount  int `json:"pendingCount"`
	ApprovedCount int `json:"approvedCount"`
}

type WithStats struct {
	Project
	ChurchName string `json:"churchName"`
	Stats      Stats  `json:"stats"`
}

type CreateProjectInput struct {
	Name        string
	ChurchID    uuid.UUID
	Description *string
	CreatedByID uuid.UUID
}

type UpdateProjectInput struct {
	Name        *string
	ChurchID    *uuid.UUID
	Description *string
}

// ListFilter restricts listings. A nil CreatedByID means unrestricted.
type ListFilter struct {
	CreatedByID *uuid.UUID
	ChurchID    *uuid.UUID
}
