// Package policy decides who may do what. Every service asks the same
// evaluator instead of checking roles inline.
package policy

import (
	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
)

type Action string

const (
	ActionRead               Action = "read"
	ActionCreate             Action = "create"
	ActionUpdateStatus       Action = "update_status"
	ActionDelete             Action = "delete"
	ActionPay                Action = "pay"
	ActionManageAvailability Action = "manage_availability"
)

type Subject struct {
	UserID int64
	Role   domain.UserRole
}

// Resource describes the thing acted on. OwnerID is the owning user (0 when
// the resource has no owner, e.g. an availability block); ManagerID is the
// manager of the location the resource belongs to.
type Resource struct {
	Kind      string
	OwnerID   int64
	ManagerID int64
}

type Decision struct {
	Allow  bool
	Reason string
}

func allow(reason string) Decision { return Decision{Allow: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allow: false, Reason: reason} }

var ownerActions = map[Action]bool{
	ActionRead:   true,
	ActionCreate: true,
	ActionDelete: true,
	ActionPay:    true,
}

var managerActions = map[Action]bool{
	ActionRead:               true,
	ActionCreate:             true,
	ActionUpdateStatus:       true,
	ActionManageAvailability: true,
}

type Evaluator interface {
	Evaluate(s Subject, r Resource, a Action) Decision
}

type RoleEvaluator struct{}

func New() RoleEvaluator { return RoleEvaluator{} }

func (RoleEvaluator) Evaluate(s Subject, r Resource, a Action) Decision {
	if s.UserID == 0 {
		return deny("anonymous")
	}
	switch s.Role {
	case domain.RoleAdmin:
		return allow("admin")
	case domain.RoleManager:
		if r.ManagerID == s.UserID && managerActions[a] {
			return allow("manager of location")
		}
	}
	if r.OwnerID != 0 && r.OwnerID == s.UserID && ownerActions[a] {
		return allow("owner")
	}
	return deny("not permitted")
}

// Authorize turns a deny decision into a Forbidden error.
func Authorize(e Evaluator, s Subject, r Resource, a Action) error {
	if d := e.Evaluate(s, r, a); !d.Allow {
		return apperror.Forbidden("you are not allowed to " + string(a) + " this " + r.Kind)
	}
	return nil
}

type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeOwned
	ScopeManaged
)

// Scope tells list operations which rows a subject may see.
func Scope(s Subject) ScopeKind {
	if s.UserID == 0 {
		return ScopeNone
	}
	switch s.Role {
	case domain.RoleAdmin:
		return ScopeAll
	case domain.RoleManager:
		return ScopeManaged
	case domain.RoleUser:
		return ScopeOwned
	}
	return ScopeNone
}

func BookingResource(b *domain.Booking, managerID int64) Resource {
	return Resource{Kind: "booking", OwnerID: b.UserID, ManagerID: managerID}
}

func SpaceResource(sp *domain.Space) Resource {
	r := Resource{Kind: "space"}
	if sp.Location != nil {
		r.ManagerID = sp.Location.ManagerID
	}
	return r
}
