package review

import (
	"context"
	"errors"

	"mediaflow/internal/access"
	"mediaflow/internal/domain/comment"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/domain/sharetoken"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
)

const (
	msgNotAuthorizedReview = "Not authorized to review this media"
	msgNotAuthorizedUpdate = "Not authorized to update this media"
	msgAuthRequired        = "Authentication required"
)

// Outcome labels reported to the Observer.
const (
	ResultApplied         = "applied"
	ResultForbidden       = "forbidden"
	ResultInvalid         = "invalid"
	ResultCommentRequired = "comment_required"
	ResultCommentInvalid  = "comment_invalid"
	ResultConflict        = "conflict"
	ResultError           = "error"
)

type Store interface {
	GetWithOwner(ctx context.Context, id uuid.UUID) (*media.WithOwner, error)
	ApplyTransition(ctx context.Context, in media.TransitionInput) (*media.Media, error)
}

// Observer receives one call per attempted transition on an existing item.
type Observer interface {
	ObserveTransition(from, to media.Status, result string)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(from, to media.Status, result string)

func (f ObserverFunc) ObserveTransition(from, to media.Status, result string) {
	f(from, to, result)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(media.Status, media.Status, string) {}

type Request struct {
	Status  media.Status
	Comment *string
	// EventReview admits VALIDATOR tokens scoped to the photo's event. Only
	// the event validation page sets it; the media status route is
	// project-scoped.
	EventReview bool
}

type Service struct {
	store    Store
	observer Observer
}

func NewService(store Store, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{store: store, observer: observer}
}

// Transition moves a media item to req.Status on behalf of actor. Checks run
// in a fixed order: existence, authorization, legality, then the revision
// comment. Nothing is written unless all of them pass.
func (s *Service) Transition(ctx context.Context, actor access.Actor, mediaID uuid.UUID, req Request) (media.Projection, error) {
	m, err := s.store.GetWithOwner(ctx, mediaID)
	if err != nil {
		return media.Projection{}, err
	}

	from := m.Status
	fail := func(result string, err error) (media.Projection, error) {
		s.observer.ObserveTransition(from, req.Status, result)
		return media.Projection{}, err
	}

	check := Authorize
	if req.EventReview {
		check = AuthorizeResource
	}
	if err := check(actor, m.Owner); err != nil {
		return fail(ResultForbidden, err)
	}

	if !media.CanTransition(from, req.Status, m.Type) {
		return fail(ResultInvalid, apperrors.InvalidTransition())
	}

	in := media.TransitionInput{
		MediaID: m.ID,
		Type:    m.Type,
		From:    from,
		To:      req.Status,
	}

	if media.RequiresComment(req.Status) {
		var content string
		if req.Comment != nil {
			content = *req.Comment
		}
		c := revisionComment(actor, m.ID, content)
		if c.Content == "" {
			return fail(ResultCommentRequired, apperrors.CommentRequired())
		}
		if err := c.Validate(); err != nil {
			return fail(ResultCommentInvalid, apperrors.Validation(err.Error()))
		}
		in.Comment = &c
	}

	updated, err := s.store.ApplyTransition(ctx, in)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaleStatus) {
			return fail(ResultConflict, err)
		}
		return fail(ResultError, err)
	}

	s.observer.ObserveTransition(from, updated.Status, ResultApplied)
	return updated.Projection(), nil
}

// Authorize decides whether actor may change the review status of media
// owned by owner. A token must be a VALIDATOR token scoped to the owning
// project. A session user must have created the owning event or project.
func Authorize(actor access.Actor, owner media.Owner) error {
	return authorize(actor, owner, func(scope sharetoken.Scope) bool {
		return owner.ProjectID != nil && scope.IsProject(*owner.ProjectID)
	})
}

// AuthorizeResource is Authorize with tokens scoped to the owning event also
// accepted. Comment threads and event photo decisions use it.
func AuthorizeResource(actor access.Actor, owner media.Owner) error {
	return authorize(actor, owner, func(scope sharetoken.Scope) bool {
		return InScope(scope, owner)
	})
}

func authorize(actor access.Actor, owner media.Owner, inScope func(sharetoken.Scope) bool) error {
	if tok, ok := actor.Token(); ok {
		if tok.Type != sharetoken.TypeValidator || !inScope(tok.Scope) {
			return apperrors.Forbidden(msgNotAuthorizedReview)
		}
		return nil
	}

	if _, ok := actor.User(); ok {
		if !access.IsCreator(actor, owner.CreatedByID) {
			return apperrors.Forbidden(msgNotAuthorizedUpdate)
		}
		return nil
	}

	return apperrors.Unauthorized(msgAuthRequired)
}

// InScope reports whether a token scope covers the resource owning a media
// item.
func InScope(scope sharetoken.Scope, owner media.Owner) bool {
	if owner.ProjectID != nil {
		return scope.IsProject(*owner.ProjectID)
	}
	if owner.EventID != nil {
		return scope.IsEvent(*owner.EventID)
	}
	return false
}

func revisionComment(actor access.Actor, mediaID uuid.UUID, content string) comment.CreateInput {
	if tok, ok := actor.Token(); ok {
		name := tok.AuthorName()
		return comment.RevisionRequest(mediaID, content, nil, &name)
	}

	u, _ := actor.User()
	id := u.ID
	return comment.RevisionRequest(mediaID, content, &id, u.DisplayName())
}
