// Package policy decides whether an actor may perform an action on a resource.
//
// Rules are evaluated in a fixed order (fail-fast):
//  1. Unauthenticated actors are denied everything.
//  2. Admins are allowed everything.
//  3. Admin-only actions are denied to everyone else.
//  4. Owner-scoped actions require the actor to own the resource.
//  5. Remaining actions are open to any authenticated actor.
package policy

import (
	"fmt"

	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
)

// RoleAdmin is the role name that grants every action.
const RoleAdmin = "admin"

// Action names a capability checked by Authorize.
type Action string

const (
	ActionDonorCreate      Action = "donor:create"
	ActionDonorList        Action = "donor:list"
	ActionDonorRead        Action = "donor:read"
	ActionDonorUpdate      Action = "donor:update"
	ActionDonorDelete      Action = "donor:delete"
	ActionDonorEligibility Action = "donor:eligibility"
	ActionDonorStatistics  Action = "donor:statistics"
	ActionDonorListAll     Action = "donor:list_all"
	ActionUserList         Action = "user:list"
	ActionUserUpdate       Action = "user:update"
	ActionUserDelete       Action = "user:delete"
)

type scope int

const (
	scopeAny scope = iota
	scopeOwner
	scopeAdmin
)

var scopes = map[Action]scope{
	ActionDonorCreate:      scopeAny,
	ActionDonorList:        scopeAny,
	ActionDonorRead:        scopeOwner,
	ActionDonorUpdate:      scopeOwner,
	ActionDonorDelete:      scopeOwner,
	ActionDonorEligibility: scopeOwner,
	ActionDonorStatistics:  scopeAdmin,
	ActionDonorListAll:     scopeAdmin,
	ActionUserList:         scopeAdmin,
	ActionUserUpdate:       scopeAdmin,
	ActionUserDelete:       scopeAdmin,
}

// Actor is the authenticated caller.
type Actor struct {
	ID   id.UserID
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Reason explains a Decision.
type Reason string

const (
	ReasonAdmin           Reason = "admin"
	ReasonOwner           Reason = "owner"
	ReasonAuthenticated   Reason = "authenticated"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonAdminRequired   Reason = "admin_required"
	ReasonNotOwner        Reason = "not_owner"
	ReasonUnknownAction   Reason = "unknown_action"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Action  Action
	Allowed bool
	Reason  Reason
}

// Authorize evaluates action for actor against the owner of the target
// resource. owner may be nil for actions without a single target.
func Authorize(actor Actor, owner *id.UserID, action Action) Decision {
	sc, known := scopes[action]
	switch {
	case !known:
		return deny(action, ReasonUnknownAction)
	case actor.ID.IsNil():
		return deny(action, ReasonUnauthenticated)
	case actor.IsAdmin():
		return allow(action, ReasonAdmin)
	case sc == scopeAdmin:
		return deny(action, ReasonAdminRequired)
	case sc == scopeOwner:
		if owner == nil || *owner != actor.ID {
			return deny(action, ReasonNotOwner)
		}
		return allow(action, ReasonOwner)
	default:
		return allow(action, ReasonAuthenticated)
	}
}

// Err converts a denial into a domain error. It returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	case ReasonAdminRequired:
		return dErrors.New(dErrors.CodeForbidden, "admin access required")
	case ReasonNotOwner:
		return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("not permitted to %s this donor", verb(d.Action)))
	default:
		return dErrors.New(dErrors.CodeForbidden, "action not permitted")
	}
}

func verb(action Action) string {
	switch action {
	case ActionDonorUpdate:
		return "modify"
	case ActionDonorDelete:
		return "delete"
	default:
		return "view"
	}
}

func allow(action Action, reason Reason) Decision {
	return Decision{Action: action, Allowed: true, Reason: reason}
}

func deny(action Action, reason Reason) Decision {
	return Decision{Action: action, Allowed: false, Reason: reason}
}
