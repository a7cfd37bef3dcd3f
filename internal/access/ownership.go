package access

import "github.com/google/uuid"

// OwnershipFilter returns the creator constraint for list and mutate
// queries: nil for ADMIN sessions, the user's id otherwise. Token actors
// are never owners.
func OwnershipFilter(a Actor) *uuid.UUID {
	if a.IsAdmin() {
		return nil
	}
	id := a.ID()
	if a.kind != KindSession {
		id = uuid.Nil
	}
	return &id
}

// IsCreator reports whether the actor is the session user that created a
// resource.
func IsCreator(a Actor, createdByID uuid.UUID) bool {
	u, ok := a.User()
	return ok && u.ID == createdByID
}

// CanMutate applies the ownership rule to a single resource.
func CanMutate(a Actor, createdByID uuid.UUID) bool {
	return a.IsAdmin() || IsCreator(a, createdByID)
}
