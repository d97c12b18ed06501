package types

// Stable rejection codes returned to kiosks. The kiosk UI maps these to
// localized, actionable text, so values must never change once shipped.
const (
	CodeInvalidFormat           = "INVALID_FORMAT"
	CodeMemberNotFound          = "MEMBER_NOT_FOUND"
	CodeMemberInactive          = "MEMBER_INACTIVE"
	CodeNoMembership            = "NO_MEMBERSHIP"
	CodeMembershipExpired       = "MEMBERSHIP_EXPIRED"
	CodePastDue                 = "PAST_DUE"
	CodeMembershipFrozen        = "MEMBERSHIP_FROZEN"
	CodeNoActiveMembership      = "NO_ACTIVE_MEMBERSHIP"
	CodeInvalidMembershipStatus = "INVALID_MEMBERSHIP_STATUS"
	CodeDuplicateCheckin        = "DUPLICATE_CHECKIN"
	CodeVisitNotFound           = "VISIT_NOT_FOUND"
)
