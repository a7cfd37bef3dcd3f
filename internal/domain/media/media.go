package media

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePhoto  Type = "PHOTO"
	TypeVisual Type = "VISUAL"
	TypeVideo  Type = "VIDEO"
)

var Types = []Type{TypePhoto, TypeVisual, TypeVideo}

func (t Type) Valid() bool {
	switch t {
	case TypePhoto, TypeVisual, TypeVideo:
		return true
	default:
		return false
	}
}

// IsProjectMedia reports whether t belongs to the project review workflow.
func (t Type) IsProjectMedia() bool {
	return t == TypeVisual || t == TypeVideo
}

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusDraft             Status = "DRAFT"
	StatusInReview          Status = "IN_REVIEW"
	StatusRevisionRequested Status = "REVISION_REQUESTED"
	StatusFinalApproved     Status = "FINAL_APPROVED"

	errInvalidStatusFmt = "invalid media status: %s"
)

var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusDraft,
	StatusInReview,
	StatusRevisionRequested,
	StatusFinalApproved,
}

func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf(errInvalidStatusFmt, s)
}

// InitialStatus is the status a freshly uploaded item of type t starts in.
func InitialStatus(t Type) Status {
	if t == TypePhoto {
		return StatusPending
	}
	return StatusDraft
}

// IsApproved covers both the photo and the project-media approval states.
func (s Status) IsApproved() bool {
	return s == StatusApproved || s == StatusFinalApproved
}

// IsAwaitingReview covers every status still waiting on a reviewer.
func (s Status) IsAwaitingReview() bool {
	return s == StatusPending || s == StatusDraft || s == StatusInReview
}

type Media struct {
	ID                  uuid.UUID  `json:"id"`
	Type                Type       `json:"type"`
	Status              Status     `json:"status"`
	Filename            string     `json:"filename"`
	MimeType            string     `json:"mimeType"`
	Size                int64      `json:"size"`
	Width               *int       `json:"width"`
	Height              *int       `json:"height"`
	Duration            *int       `json:"duration"`
	EventID             *uuid.UUID `json:"eventId"`
	ProjectID           *uuid.UUID `json:"projectId"`
	ScheduledDeletionAt *time.Time `json:"scheduledDeletionAt"`
	ValidatedAt         *time.Time `json:"validatedAt"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Owner is the creator of the event or project a media item belongs to.
type Owner struct {
	EventID     *uuid.UUID
	ProjectID   *uuid.UUID
	CreatedByID uuid.UUID
}

// WithOwner is a media item joined with its owning resource.
type WithOwner struct {
	Media
	Owner Owner
}

type Version struct {
	ID            uuid.UUID `json:"id"`
	MediaID       uuid.UUID `json:"mediaId"`
	VersionNumber int       `json:"versionNumber"`
	OriginalKey   string    `json:"-"`
	ThumbnailKey  string    `json:"-"`
	Notes         *string   `json:"notes"`
	CreatedByID   uuid.UUID `json:"createdById"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StorageKeys returns every object key a version references.
func (v *Version) StorageKeys() []string {
	keys := []string{v.OriginalKey}
	if v.ThumbnailKey != "" && v.ThumbnailKey != v.OriginalKey {
		keys = append(keys, v.ThumbnailKey)
	}
	return keys
}

// WithLatestVersion pairs an item with its newest version.
type WithLatestVersion struct {
	Media
	Latest Version `json:"-"`
}

type CreateMediaInput struct {
	ID           uuid.UUID
	Type         Type
	Filename     string
	MimeType     string
	Size         int64
	Width        *int
	Height       *int
	EventID      *uuid.UUID
	ProjectID    *uuid.UUID
	OriginalKey  string
	ThumbnailKey string
	CreatedByID  uuid.UUID
}

type CreateVersionInput struct {
	MediaID      uuid.UUID
	OriginalKey  string
	ThumbnailKey string
	Notes        *string
	CreatedByID  uuid.UUID
	Size         int64
	MimeType     string
	Width        *int
	Height       *int
}

type ListFilter struct {
	EventID   *uuid.UUID
	ProjectID *uuid.UUID
	Status    *Status
}

// Projection is the externally visible result of a status transition.
type Projection struct {
	ID        uuid.UUID `json:"id"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Media) Projection() Projection {
	return Projection{ID: m.ID, Status: m.Status, UpdatedAt: m.UpdatedAt}
}
