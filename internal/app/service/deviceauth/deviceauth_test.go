package deviceauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService() *Service {
	return &Service{
		log:    zap.NewNop().Sugar(),
		secret: []byte("test-secret"),
		ttl:    time.Hour,
	}
}

func signToken(t *testing.T, s *Service, claims deviceClaims, method jwt.SigningMethod, secret []byte) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func validClaims() deviceClaims {
	now := time.Now()
	return deviceClaims{
		CompanyID: "company-a",
		StandardClaims: jwt.StandardClaims{
			Subject:   "device-1",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
	}
}

func TestVerifyToken_RoundTrip(t *testing.T) {
	s := testService()
	signed := signToken(t, s, validClaims(), jwt.SigningMethodHS256, s.secret)

	dc, err := s.VerifyToken(signed)
	require.NoError(t, err)
	require.Equal(t, "device-1", dc.DeviceID)
	require.Equal(t, "company-a", dc.CompanyID)
}

func TestVerifyToken_Expired(t *testing.T) {
	s := testService()
	claims := validClaims()
	claims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	signed := signToken(t, s, claims, jwt.SigningMethodHS256, s.secret)

	_, err := s.VerifyToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	s := testService()
	signed := signToken(t, s, validClaims(), jwt.SigningMethodHS256, []byte("other-secret"))

	_, err := s.VerifyToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_RejectsNonHMAC(t *testing.T) {
	s := testService()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.VerifyToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_MissingClaims(t *testing.T) {
	s := testService()

	claims := validClaims()
	claims.CompanyID = ""
	_, err := s.VerifyToken(signToken(t, s, claims, jwt.SigningMethodHS256, s.secret))
	require.ErrorIs(t, err, ErrInvalidToken)

	claims = validClaims()
	claims.Subject = ""
	_, err = s.VerifyToken(signToken(t, s, claims, jwt.SigningMethodHS256, s.secret))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
