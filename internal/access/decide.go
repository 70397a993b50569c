// ABOUTME: Authorization decisions for document create, read, update, and delete.
// ABOUTME: Pure functions over an Actor and a DocView; no store access.
package access

import "github.com/google/uuid"

// Actor is the authenticated user issuing a request, with the effective
// access level already resolved from the rank table.
type Actor struct {
	ID        uuid.UUID
	RoleTitle string
	Level     Level
}

// DocView is the slice of a document the decision functions need.
type DocView struct {
	OwnerID        uuid.UUID
	OwnerRoleTitle string
	AccessRank     int
	Deleted        bool
}

// AuthorizeCreate reports whether an actor at actorLevel may assign requested
// to a document. The requested rank must be at or below the actor's own
// privilege rank (numerically greater or equal).
func AuthorizeCreate(actorLevel, requested Level) error {
	if requested.Rank < actorLevel.Rank {
		return ErrLevelUnauthorized
	}
	return nil
}

// CanRead reports whether the actor may see the document. Visibility is a
// disjunction of four independent rules:
//
//  1. public documents are visible to everyone;
//  2. private documents are visible to their owner;
//  3. role-scoped documents are visible to same-role peers holding exactly
//     that rank;
//  4. admins see everything.
//
// Callers respond "not found" (not "forbidden") on a false result so that the
// existence of inaccessible documents is never confirmed.
func CanRead(actor Actor, doc DocView) bool {
	if doc.Deleted {
		return false
	}
	switch {
	case doc.AccessRank == RankPublic:
		return true
	case doc.AccessRank == RankPrivate && doc.OwnerID == actor.ID:
		return true
	case doc.OwnerRoleTitle == actor.RoleTitle && doc.AccessRank == actor.Level.Rank:
		return true
	case actor.Level.Rank == RankAdmin:
		return true
	}
	return false
}

// CanUpdate reports whether the actor may modify the document. Only the owner
// may update; there is no admin override on the update path.
func CanUpdate(actor Actor, doc DocView) bool {
	return !doc.Deleted && doc.OwnerID == actor.ID
}

// CanDelete reports whether the actor may soft-delete the document. Deletion
// requires BOTH ownership AND admin rank. The conjunction is deliberate
// policy, preserved from the original system; see DESIGN.md.
func CanDelete(actor Actor, doc DocView) bool {
	return !doc.Deleted && doc.OwnerID == actor.ID && actor.Level.Rank == RankAdmin
}
