package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/deviceauth"
	cfgpkg "github.com/fatflowers/gymgate/pkg/config"
)

const testSecret = "test-secret"

func testAuthService() *deviceauth.Service {
	cfg := &cfgpkg.Config{}
	cfg.Auth.DeviceTokenSecret = testSecret
	cfg.Auth.DeviceTokenTTL = time.Hour
	return deviceauth.NewService(nil, cfg, zap.NewNop().Sugar())
}

func mintToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"company_id": "company-a",
		"sub":        "device-1",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestDeviceAuthMiddleware_BearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var captured *deviceauth.DeviceContext
	r := gin.New()
	r.Use(DeviceAuthMiddleware(testAuthService()))
	r.GET("/probe", func(c *gin.Context) {
		captured = DeviceFromGin(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	require.Equal(t, "device-1", captured.DeviceID)
	require.Equal(t, "company-a", captured.CompanyID)
}

func TestDeviceAuthMiddleware_QueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DeviceAuthMiddleware(testAuthService()))
	r.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/probe?token="+mintToken(t), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestDeviceAuthMiddleware_RejectsMissingAndInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DeviceAuthMiddleware(testAuthService()))
	r.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tc := range []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"no token", func(req *http.Request) {}},
		{"garbage bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") }},
		{"non-bearer scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic abc") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestDeviceFromGin_UnauthedRouteReturnsNil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var captured *deviceauth.DeviceContext
	set := false
	r := gin.New()
	r.GET("/open", func(c *gin.Context) {
		captured = DeviceFromGin(c)
		set = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))

	require.True(t, set)
	require.Nil(t, captured)
}
