package checkin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/gymgate/pkg/types"
)

func TestParseIdentifier_RawUUID(t *testing.T) {
	id, derr := ParseIdentifier("0190b7a3-0f0e-7c1a-9a5e-3f6d2c1b0a99")
	require.Nil(t, derr)
	raw, ok := id.(RawID)
	require.True(t, ok)
	require.Equal(t, "0190b7a3-0f0e-7c1a-9a5e-3f6d2c1b0a99", raw.MemberID)
}

func TestParseIdentifier_QRPayload(t *testing.T) {
	id, derr := ParseIdentifier(`{"member_id":"0190b7a3-0f0e-7c1a-9a5e-3f6d2c1b0a99","issued_at":"2026-08-01T10:00:00Z"}`)
	require.Nil(t, derr)
	enc, ok := id.(EncodedPayload)
	require.True(t, ok)
	require.Equal(t, "0190b7a3-0f0e-7c1a-9a5e-3f6d2c1b0a99", enc.MemberID)
}

func TestParseIdentifier_BiometricStub(t *testing.T) {
	id, derr := ParseIdentifier("bio:fp-9c2d1e")
	require.Nil(t, derr)
	bio, ok := id.(BiometricStub)
	require.True(t, ok)
	require.Equal(t, "fp-9c2d1e", bio.Token)
}

func TestParseIdentifier_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not-json-not-uuid",
		"bio:",
		`{"member_id":"not-a-uuid"}`,
		`{ broken json`,
	} {
		_, derr := ParseIdentifier(raw)
		require.NotNil(t, derr, "input %q", raw)
		require.Equal(t, types.CodeInvalidFormat, derr.Code, "input %q", raw)
	}
}
