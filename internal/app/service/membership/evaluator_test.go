package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/types"
)

func ts(t time.Time) *time.Time { return &t }

func TestEvaluate_ExpiredEndsAtOverridesStatus(t *testing.T) {
	now := time.Now()
	past := ts(now.Add(-time.Hour))

	for _, status := range []types.MembershipStatus{
		types.MembershipStatusActive,
		types.MembershipStatusPastDue,
		types.MembershipStatusFrozen,
		types.MembershipStatusExpired,
		types.MembershipStatusCanceled,
		"something_else",
	} {
		dec := Evaluate(&models.Membership{Status: status, EndsAt: past}, now)
		require.False(t, dec.Allowed, "status %s", status)
		require.Equal(t, types.CodeMembershipExpired, dec.Code, "status %s", status)
		require.Equal(t, types.AccessStateDenied, dec.State)
	}
}

func TestEvaluate_StatusTable(t *testing.T) {
	now := time.Now()
	future := ts(now.Add(30 * 24 * time.Hour))

	cases := []struct {
		status  types.MembershipStatus
		allowed bool
		warning bool
		state   types.AccessState
		code    string
	}{
		{types.MembershipStatusActive, true, false, types.AccessStateOK, ""},
		{types.MembershipStatusPastDue, true, true, types.AccessStatePastDue, types.CodePastDue},
		{types.MembershipStatusFrozen, false, false, types.AccessStateDenied, types.CodeMembershipFrozen},
		{types.MembershipStatusExpired, false, false, types.AccessStateDenied, types.CodeNoActiveMembership},
		{types.MembershipStatusCanceled, false, false, types.AccessStateDenied, types.CodeNoActiveMembership},
	}
	for _, tc := range cases {
		dec := Evaluate(&models.Membership{Status: tc.status, EndsAt: future}, now)
		require.Equal(t, tc.allowed, dec.Allowed, "status %s", tc.status)
		require.Equal(t, tc.warning, dec.Warning, "status %s", tc.status)
		require.Equal(t, tc.state, dec.State, "status %s", tc.status)
		require.Equal(t, tc.code, dec.Code, "status %s", tc.status)
		require.NotEmpty(t, dec.Message)
	}
}

func TestEvaluate_NilEndsAtUsesStatusOnly(t *testing.T) {
	dec := Evaluate(&models.Membership{Status: types.MembershipStatusActive}, time.Now())
	require.True(t, dec.Allowed)
	require.Equal(t, types.AccessStateOK, dec.State)
}

func TestEvaluate_UnknownStatusDeniesWithoutPanic(t *testing.T) {
	dec := Evaluate(&models.Membership{Status: "trial_gift"}, time.Now())
	require.False(t, dec.Allowed)
	require.Equal(t, types.CodeInvalidMembershipStatus, dec.Code)
}

func TestEvaluate_Idempotent(t *testing.T) {
	now := time.Now()
	m := &models.Membership{Status: types.MembershipStatusPastDue, EndsAt: ts(now.Add(24 * time.Hour))}
	first := Evaluate(m, now)
	second := Evaluate(m, now)
	require.Equal(t, first, second)
}
