package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	RegisterHealthRoutes(r)

	apiV1 := r.Group("/api/v1")
	RegisterCheckinRoutes(apiV1.Group("/checkin"), nil, nil)
	RegisterStreamRoutes(apiV1.Group("/events"), nil, nil)
	RegisterActivityRoutes(apiV1, nil, nil)

	admin := r.Group("/api/v1/admin")
	RegisterAdminRoutes(admin, nil, nil)
	RegisterDeviceRoutes(admin, nil, nil)
	RegisterAuditRoutes(admin, nil, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("GET /healthz"))
	require.True(t, contains("POST /api/v1/checkin/scan"))
	require.True(t, contains("POST /api/v1/checkin/checkout"))
	require.True(t, contains("GET /api/v1/events/stream"))
	require.True(t, contains("GET /api/v1/activity"))
	require.True(t, contains("POST /api/v1/admin/members"))
	require.True(t, contains("GET /api/v1/admin/members"))
	require.True(t, contains("POST /api/v1/admin/memberships"))
	require.True(t, contains("POST /api/v1/admin/devices"))
	require.True(t, contains("POST /api/v1/admin/devices/token"))
	require.True(t, contains("POST /api/v1/admin/audit/scan"))
}
