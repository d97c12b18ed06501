package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/deviceauth"
	"github.com/fatflowers/gymgate/pkg/logctx"
	"github.com/fatflowers/gymgate/pkg/response"
)

type registerDeviceRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

type issueTokenRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

type issueTokenResponse struct {
	Token string `json:"token"`
}

// @Summary      Register device
// @Description  Creates a kiosk/scanner bound to one company.
// @Tags         Devices
// @Accept       json
// @Produce      json
// @Param        request body registerDeviceRequest true "Device registration"
// @Success      200  {object}  RespOK
// @Router       /api/v1/admin/devices [post]
func ApiRegisterDevice(svc *deviceauth.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerDeviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		d, err := svc.Register(c.Request.Context(), req.CompanyID, req.Name)
		if err != nil {
			logctx.FromGin(c, log).Errorw("device registration failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(d))
	}
}

// @Summary      Issue device token
// @Description  Mints a time-limited session token for an active device.
// @Tags         Devices
// @Accept       json
// @Produce      json
// @Param        request body issueTokenRequest true "Token request"
// @Success      200  {object}  RespOK
// @Router       /api/v1/admin/devices/token [post]
func ApiIssueDeviceToken(svc *deviceauth.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req issueTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		token, err := svc.IssueToken(c.Request.Context(), req.DeviceID)
		if err != nil {
			if errors.Is(err, deviceauth.ErrInvalidToken) {
				c.JSON(http.StatusNotFound, response.ErrorMsgT[any](response.APIResponseCodeNotFound, "device not found or inactive", nil))
				return
			}
			logctx.FromGin(c, log).Errorw("token issue failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(issueTokenResponse{Token: token}))
	}
}

func RegisterDeviceRoutes(r gin.IRouter, svc *deviceauth.Service, log *zap.SugaredLogger) {
	r.POST("/devices", ApiRegisterDevice(svc, log))
	r.POST("/devices/token", ApiIssueDeviceToken(svc, log))
}
