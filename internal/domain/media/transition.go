package media

import (
	"mediaflow/internal/domain/comment"

	"github.com/google/uuid"
)

// photoTransitions is single-shot: a photo leaves PENDING exactly once.
var photoTransitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected},
}

// projectTransitions drives VISUAL and VIDEO review. PENDING is accepted as
// a current state alongside DRAFT but is never a target.
var projectTransitions = map[Status][]Status{
	StatusDraft:             {StatusInReview, StatusFinalApproved, StatusRejected, StatusRevisionRequested},
	StatusPending:           {StatusInReview, StatusFinalApproved, StatusRejected, StatusRevisionRequested},
	StatusInReview:          {StatusFinalApproved, StatusRejected, StatusRevisionRequested, StatusInReview},
	StatusRevisionRequested: {StatusInReview, StatusFinalApproved, StatusRejected, StatusRevisionRequested},
	StatusRejected:          {StatusInReview, StatusFinalApproved, StatusRevisionRequested, StatusRejected},
	StatusFinalApproved:     {StatusInReview, StatusRejected, StatusRevisionRequested, StatusFinalApproved},
	StatusApproved:          {},
}

// CanTransition reports whether moving an item of type t from one status to
// another is a legal review step.
func CanTransition(from, to Status, t Type) bool {
	for _, target := range Targets(from, t) {
		if target == to {
			return true
		}
	}
	return false
}

// Targets lists the legal next statuses for an item of type t.
func Targets(from Status, t Type) []Status {
	switch {
	case t == TypePhoto:
		return photoTransitions[from]
	case t.IsProjectMedia():
		return projectTransitions[from]
	default:
		return nil
	}
}

// RequiresComment reports whether entering status needs a reviewer comment.
func RequiresComment(to Status) bool {
	return to == StatusRevisionRequested
}

// StampsValidation reports whether entering status records a review decision
// on the item.
func StampsValidation(to Status, t Type) bool {
	return t == TypePhoto && (to == StatusApproved || to == StatusRejected)
}

// TransitionInput is a checked status change ready to persist. From is the
// status the decision was made against; the store refuses the write if the
// row has moved on since.
type TransitionInput struct {
	MediaID uuid.UUID
	Type    Type
	From    Status
	To      Status
	Comment *comment.CreateInput
}
