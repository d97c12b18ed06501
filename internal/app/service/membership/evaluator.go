package membership

import (
	"time"

	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/types"
)

// Decision is the evaluator's verdict on a membership snapshot.
type Decision struct {
	Allowed bool              `json:"allowed"`
	Warning bool              `json:"warning"`
	State   types.AccessState `json:"state"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
}

// Evaluate maps a membership snapshot to an access decision. It is pure and
// deterministic: only Status and EndsAt matter, and the same snapshot always
// yields the same decision.
//
// An expired EndsAt overrides the status entirely, so a nominally "active"
// grant past its end date is still denied. Unknown status values deny rather
// than panic.
func Evaluate(m *models.Membership, now time.Time) Decision {
	if m.EndsAt != nil && m.EndsAt.Before(now) {
		return Decision{
			Allowed: false,
			State:   types.AccessStateDenied,
			Code:    types.CodeMembershipExpired,
			Message: "membership has expired",
		}
	}

	switch m.Status {
	case types.MembershipStatusActive:
		return Decision{
			Allowed: true,
			State:   types.AccessStateOK,
			Message: "access granted",
		}
	case types.MembershipStatusPastDue:
		// Grace access while billing retries the payment.
		return Decision{
			Allowed: true,
			Warning: true,
			State:   types.AccessStatePastDue,
			Code:    types.CodePastDue,
			Message: "payment is overdue, access granted",
		}
	case types.MembershipStatusFrozen:
		return Decision{
			Allowed: false,
			State:   types.AccessStateDenied,
			Code:    types.CodeMembershipFrozen,
			Message: "membership is frozen",
		}
	case types.MembershipStatusExpired, types.MembershipStatusCanceled:
		return Decision{
			Allowed: false,
			State:   types.AccessStateDenied,
			Code:    types.CodeNoActiveMembership,
			Message: "no active membership",
		}
	default:
		return Decision{
			Allowed: false,
			State:   types.AccessStateDenied,
			Code:    types.CodeInvalidMembershipStatus,
			Message: "membership status is not recognized",
		}
	}
}
