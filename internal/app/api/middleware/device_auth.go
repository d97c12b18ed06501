package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/gymgate/internal/app/service/deviceauth"
	"github.com/fatflowers/gymgate/pkg/response"
)

const deviceContextKey = "device"

// DeviceAuthMiddleware authenticates kiosk/dashboard requests with a device
// session token and attaches the resulting DeviceContext. Tenant scoping
// downstream relies on this context, never on client-supplied company ids.
func DeviceAuthMiddleware(svc *deviceauth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "missing device token", nil))
			return
		}
		dc, err := svc.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "invalid device token", nil))
			return
		}

		c.Set(deviceContextKey, dc)
		ctx := context.WithValue(c.Request.Context(), "device_id", dc.DeviceID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// DeviceFromGin returns the authenticated device context, or nil when the
// route is not device-authed.
func DeviceFromGin(c *gin.Context) *deviceauth.DeviceContext {
	if v, ok := c.Get(deviceContextKey); ok {
		if dc, ok := v.(*deviceauth.DeviceContext); ok {
			return dc
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// EventSource cannot set headers; allow the token as a query parameter
	// on streaming routes.
	return c.Query("token")
}
