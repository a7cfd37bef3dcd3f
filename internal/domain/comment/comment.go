package comment

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Type string

const (
	TypeGeneral  Type = "GENERAL"
	TypeTimecode Type = "TIMECODE"

	MaxContentLength = 5000
)

var (
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content must not exceed 5000 characters")
	ErrTimecodeMissing = errors.New("timecode is required for TIMECODE comment type")
	ErrTimecodeInvalid = errors.New("timecode must not be negative")
	ErrInvalidType     = errors.New("comment type must be GENERAL or TIMECODE")
)

type Comment struct {
	ID         uuid.UUID  `json:"id"`
	MediaID    uuid.UUID  `json:"mediaId"`
	Type       Type       `json:"type"`
	Content    string     `json:"content"`
	Timecode   *int       `json:"timecode"`
	AuthorID   *uuid.UUID `json:"authorId"`
	AuthorName *string    `json:"authorName"`
	ParentID   *uuid.UUID `json:"parentId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	MediaID    uuid.UUID
	Type       Type
	Content    string
	Timecode   *int
	AuthorID   *uuid.UUID
	AuthorName *string
	ParentID   *uuid.UUID
}

// Normalize trims content and defaults the type to GENERAL.
func (in *CreateInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
	if in.Type == "" {
		in.Type = TypeGeneral
	}
}

func (in CreateInput) Validate() error {
	if in.Content == "" {
		return ErrContentRequired
	}
	if utf8.RuneCountInString(in.Content) > MaxContentLength {
		return ErrContentTooLong
	}

	switch in.Type {
	case TypeGeneral:
	case TypeTimecode:
		if in.Timecode == nil {
			return ErrTimecodeMissing
		}
	default:
		return ErrInvalidType
	}

	if in.Timecode != nil && *in.Timecode < 0 {
		return ErrTimecodeInvalid
	}

	return nil
}

// RevisionRequest builds the GENERAL comment recorded alongside a
// REVISION_REQUESTED transition.
func RevisionRequest(mediaID uuid.UUID, content string, authorID *uuid.UUID, authorName *string) CreateInput {
	return CreateInput{
		MediaID:    mediaID,
		Type:       TypeGeneral,
		Content:    strings.TrimSpace(content),
		AuthorID:   authorID,
		AuthorName: authorName,
	}
}
