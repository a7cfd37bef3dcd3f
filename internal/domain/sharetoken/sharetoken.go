package sharetoken

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeValidator Type = "VALIDATOR"
	TypeMedia     Type = "MEDIA"
	// TypeAny disables the type check during validation.
	TypeAny Type = ""

	validatorPathSegment = "v"
	downloadPathSegment  = "d"

	MinExpiresInDays = 1
	MaxExpiresInDays = 365
	MaxLabelLength   = 255
)

var (
	ErrScopeRequired  = errors.New("exactly one of eventId or projectId must be set")
	ErrInvalidType    = errors.New("token type must be VALIDATOR or MEDIA")
	ErrExpiryOutRange = errors.New("expiresInDays must be between 1 and 365")
)

func (t Type) Valid() bool {
	return t == TypeValidator || t == TypeMedia
}

// Scope is the single event or project a token grants access to.
type Scope struct {
	EventID   *uuid.UUID `json:"eventId"`
	ProjectID *uuid.UUID `json:"projectId"`
}

func EventScope(id uuid.UUID) Scope {
	return Scope{EventID: &id}
}

func ProjectScope(id uuid.UUID) Scope {
	return Scope{ProjectID: &id}
}

func (s Scope) Validate() error {
	if (s.EventID == nil) == (s.ProjectID == nil) {
		return ErrScopeRequired
	}
	return nil
}

func (s Scope) IsEvent(id uuid.UUID) bool {
	return s.EventID != nil && *s.EventID == id
}

func (s Scope) IsProject(id uuid.UUID) bool {
	return s.ProjectID != nil && *s.ProjectID == id
}

type ShareToken struct {
	ID         uuid.UUID  `json:"id"`
	Token      string     `json:"token"`
	Type       Type       `json:"type"`
	Label      *string    `json:"label"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	UsageCount int        `json:"usageCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	Scope
}

// IsExpired is true once now is strictly after the expiry.
func (t *ShareToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// AuthorName is the display name used for comments left through the token.
func (t *ShareToken) AuthorName() string {
	if t.Label != nil && *t.Label != "" {
		return *t.Label
	}
	return "Validator"
}

// URL builds the public share link: /v/ for validator tokens, /d/ otherwise.
func URL(baseURL string, t Type, token string) string {
	segment := downloadPathSegment
	if t == TypeValidator {
		segment = validatorPathSegment
	}
	return strings.TrimRight(baseURL, "/") + "/" + segment + "/" + token
}

type CreateInput struct {
	Type          Type
	Label         *string
	ExpiresInDays *int
	Scope
}

func (in CreateInput) Validate() error {
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if in.ExpiresInDays != nil && (*in.ExpiresInDays < MinExpiresInDays || *in.ExpiresInDays > MaxExpiresInDays) {
		return ErrExpiryOutRange
	}
	return in.Scope.Validate()
}

// ExpiresAt converts ExpiresInDays into an absolute expiry from now.
func (in CreateInput) ExpiresAt(now time.Time) *time.Time {
	if in.ExpiresInDays == nil {
		return nil
	}
	at := now.Add(time.Duration(*in.ExpiresInDays) * 24 * time.Hour)
	return &at
}

// NewRecord is what the store persists for a fresh token.
type NewRecord struct {
	Token     string
	Type      Type
	Label     *string
	ExpiresAt *time.Time
	Scope
}

// Created is a new token together with its public share URL.
type Created struct {
	*ShareToken
	URL string `json:"url"`
}
