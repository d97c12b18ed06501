package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/gymgate/internal/app/api/middleware"
	"github.com/fatflowers/gymgate/internal/app/service/checkin"
	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/logctx"
	"github.com/fatflowers/gymgate/pkg/response"
	"go.uber.org/zap"
)

type scanRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	GymID      string `json:"gym_id" binding:"required"`
}

type visitView struct {
	ID           string     `json:"id"`
	MembershipID string     `json:"membership_id"`
	GymID        string     `json:"gym_id"`
	CheckIn      time.Time  `json:"check_in"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
}

type scanResponse struct {
	Allowed  bool              `json:"allowed"`
	Warning  bool              `json:"warning"`
	State    string            `json:"state"`
	Code     string            `json:"code,omitempty"`
	Message  string            `json:"message"`
	Visit    *visitView        `json:"visit,omitempty"`
	Conflict *checkin.VisitRef `json:"conflict,omitempty"`
}

type checkoutRequest struct {
	VisitID string `json:"visit_id" binding:"required"`
}

type checkoutResponse struct {
	Visit           *visitView `json:"visit"`
	DurationMinutes int64      `json:"duration_minutes"`
}

// @Summary      Scan at the gate
// @Description  Decides whether the scanned member may enter and opens a visit on admission.
// @Tags         Checkin
// @Accept       json
// @Produce      json
// @Param        request body scanRequest true "Scan request"
// @Success      200  {object}  scanResponse
// @Failure      400  {object}  scanResponse
// @Failure      403  {object}  scanResponse
// @Failure      409  {object}  scanResponse
// @Security     BearerAuth
// @Router       /api/v1/checkin/scan [post]
func ApiScan(coord *checkin.Coordinator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		dc := middleware.DeviceFromGin(c)

		res, err := coord.Scan(c.Request.Context(), &checkin.ScanRequest{
			DeviceID:   dc.DeviceID,
			CompanyID:  dc.CompanyID,
			GymID:      req.GymID,
			Identifier: req.Identifier,
		})
		if err != nil {
			var derr *checkin.DomainError
			if errors.As(err, &derr) {
				c.JSON(derr.Status, scanResponse{
					Allowed:  false,
					Code:     derr.Code,
					Message:  derr.Message,
					State:    "DENIED",
					Conflict: derr.Conflict,
				})
				return
			}
			logctx.FromGin(c, log).Errorw("scan failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}

		c.JSON(http.StatusOK, scanResponse{
			Allowed: true,
			Warning: res.Decision.Warning,
			State:   string(res.Decision.State),
			Code:    res.Decision.Code,
			Message: res.Decision.Message,
			Visit:   toVisitView(res.Visit),
		})
	}
}

// @Summary      Check out
// @Description  Closes an open visit and reports its duration in minutes.
// @Tags         Checkin
// @Accept       json
// @Produce      json
// @Param        request body checkoutRequest true "Checkout request"
// @Success      200  {object}  checkoutResponse
// @Failure      404  {object}  scanResponse
// @Security     BearerAuth
// @Router       /api/v1/checkin/checkout [post]
func ApiCheckout(coord *checkin.Coordinator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		dc := middleware.DeviceFromGin(c)

		res, err := coord.Checkout(c.Request.Context(), &checkin.CheckoutRequest{
			VisitID:   req.VisitID,
			CompanyID: dc.CompanyID,
		})
		if err != nil {
			var derr *checkin.DomainError
			if errors.As(err, &derr) {
				c.JSON(derr.Status, scanResponse{Allowed: false, Code: derr.Code, Message: derr.Message, State: "DENIED"})
				return
			}
			logctx.FromGin(c, log).Errorw("checkout failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}

		c.JSON(http.StatusOK, checkoutResponse{
			Visit:           toVisitView(res.Visit),
			DurationMinutes: res.DurationMinutes,
		})
	}
}

func toVisitView(v *models.Visit) *visitView {
	if v == nil {
		return nil
	}
	return &visitView{
		ID:           v.ID,
		MembershipID: v.MembershipID,
		GymID:        v.GymID,
		CheckIn:      v.CheckIn,
		CheckOut:     v.CheckOut,
	}
}

func RegisterCheckinRoutes(r gin.IRouter, coord *checkin.Coordinator, log *zap.SugaredLogger) {
	r.POST("/scan", ApiScan(coord, log))
	r.POST("/checkout", ApiCheckout(coord, log))
}
