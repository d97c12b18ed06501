package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/api/middleware"
	"github.com/fatflowers/gymgate/internal/app/service/visit"
	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/logctx"
	"github.com/fatflowers/gymgate/pkg/response"
)

type activityResponse struct {
	Visits []*visitView `json:"visits"`
}

// @Summary      Recent activity
// @Description  Lists the tenant's recent visits. Streaming clients call this after a reconnect, since missed events are never replayed.
// @Tags         Events
// @Produce      json
// @Param        gym_id query string false "Narrow to a single gym"
// @Param        since  query string false "RFC3339 lower bound, default one hour ago"
// @Param        limit  query int    false "Max rows, default 50"
// @Success      200  {object}  RespActivity
// @Security     BearerAuth
// @Router       /api/v1/activity [get]
func ApiRecentActivity(ledger *visit.Ledger, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dc := middleware.DeviceFromGin(c)

		since := time.Now().Add(-time.Hour)
		if raw := c.Query("since"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "since must be RFC3339", nil))
				return
			}
			since = t
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		var gymID *string
		if g := c.Query("gym_id"); g != "" {
			gymID = &g
		}

		rows, err := ledger.RecentActivity(c.Request.Context(), dc.CompanyID, gymID, since, limit)
		if err != nil {
			logctx.FromGin(c, log).Errorw("recent activity query failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}

		c.JSON(http.StatusOK, response.OKT(activityResponse{
			Visits: lo.Map(rows, func(v *models.Visit, _ int) *visitView { return toVisitView(v) }),
		}))
	}
}

func RegisterActivityRoutes(r gin.IRouter, ledger *visit.Ledger, log *zap.SugaredLogger) {
	r.GET("/activity", ApiRecentActivity(ledger, log))
}
