package types

// MembershipStatus is the billing-owned lifecycle state of a membership.
// Billing events mutate it; this service only reads it.
type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusPastDue  MembershipStatus = "past_due"
	MembershipStatusFrozen   MembershipStatus = "frozen"
	MembershipStatusExpired  MembershipStatus = "expired"
	MembershipStatusCanceled MembershipStatus = "canceled"
)

// AcceptableStatuses is the status set considered when selecting a member's
// current membership at the gate. Memberships are never hard-deleted, so the
// set covers every status a lookup may legitimately return.
var AcceptableStatuses = []MembershipStatus{
	MembershipStatusActive,
	MembershipStatusPastDue,
	MembershipStatusFrozen,
	MembershipStatusExpired,
	MembershipStatusCanceled,
}

// AccessState is the evaluator's verdict bucket.
type AccessState string

const (
	AccessStateOK      AccessState = "OK"
	AccessStatePastDue AccessState = "PAST_DUE"
	AccessStateDenied  AccessState = "DENIED"
)
