// Package scope computes which issues an actor may see and change.
//
// A Predicate is a plain value derived from the actor alone. Repositories
// translate it into SQL; the orchestrator uses it for single-row checks.
package scope

import "issueapi/internal/model"

// Kind is the breadth of a predicate.
type Kind int

const (
	// None matches nothing. Used for actors without an identity.
	None Kind = iota
	// OwnOrAssigned matches rows created by or assigned to UserID.
	OwnOrAssigned
	// All matches every row.
	All
)

// Predicate is the row-visibility rule for one actor.
type Predicate struct {
	Kind       Kind
	UserID     string
	Privileged bool
}

// For returns the predicate for actor. It performs no I/O.
func For(actor model.Actor) Predicate {
	switch {
	case actor.ID == "":
		return Predicate{Kind: None}
	case actor.Privileged():
		return Predicate{Kind: All, UserID: actor.ID, Privileged: true}
	default:
		return Predicate{Kind: OwnOrAssigned, UserID: actor.ID}
	}
}

// Restricted reports whether queries must be narrowed to UserID.
func (p Predicate) Restricted() bool { return p.Kind != All }

// CanRead reports whether the issue is visible.
func (p Predicate) CanRead(is *model.Issue) bool {
	switch p.Kind {
	case All:
		return true
	case OwnOrAssigned:
		return is.OwnedBy(p.UserID) || is.AssignedToUser(p.UserID)
	}
	return false
}

// CanWrite reports whether the issue may be updated. Standard actors may
// change their own issues and the ones assigned to them.
func (p Predicate) CanWrite(is *model.Issue) bool {
	return p.CanRead(is)
}

// CanDelete reports whether the issue may be deleted. Assignees may not.
func (p Predicate) CanDelete(is *model.Issue) bool {
	switch p.Kind {
	case All:
		return true
	case OwnOrAssigned:
		return is.OwnedBy(p.UserID)
	}
	return false
}

// CanAssign reports whether the actor may change assignment and map references.
func (p Predicate) CanAssign() bool { return p.Privileged }
