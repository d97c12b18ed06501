package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/audit"
	"github.com/fatflowers/gymgate/pkg/logctx"
	"github.com/fatflowers/gymgate/pkg/response"
)

// @Summary      Scan audit logs
// @Description  Paginated compliance review of gate decisions with optional field filters.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body audit.ScanAuditLogsRequest true "Query"
// @Success      200  {object}  RespOK
// @Router       /api/v1/admin/audit/scan [post]
func ApiScanAuditLogs(rec *audit.Recorder, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req audit.ScanAuditLogsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		res, err := rec.ScanAuditLogs(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("audit scan failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAuditRoutes(r gin.IRouter, rec *audit.Recorder, log *zap.SugaredLogger) {
	r.POST("/audit/scan", ApiScanAuditLogs(rec, log))
}
