package audit

import (
	"context"
	"time"

	id "bloodbank/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	// ActorID is the authenticated user performing the action. Nil for
	// anonymous actions such as registration or a failed login.
	ActorID id.UserID `json:"actor_id"`
	// Subject is the identifier of the resource acted on (user or donor ID).
	Subject  string `json:"subject,omitempty"`
	Resource string `json:"resource,omitempty"`
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`
	// Email is masked before it reaches an Event.
	Email     string `json:"email,omitempty"`
	Device    string `json:"device,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Action string

const (
	ActionUserRegistered     Action = "user_registered"
	ActionLoginSucceeded     Action = "login_succeeded"
	ActionLoginFailed        Action = "login_failed"
	ActionLogout             Action = "logout"
	ActionUserUpdated        Action = "user_updated"
	ActionUserDeleted        Action = "user_deleted"
	ActionDonorCreated       Action = "donor_created"
	ActionDonorUpdated       Action = "donor_updated"
	ActionDonorDeleted       Action = "donor_deleted"
	ActionEligibilityChecked Action = "eligibility_checked"
	ActionStatisticsViewed   Action = "statistics_viewed"
	ActionAccessDenied       Action = "access_denied"
)

const (
	ResourceUser  = "user"
	ResourceDonor = "donor"
)

// Store persists audit events. Implementations are append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
}
