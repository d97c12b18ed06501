package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/membership"
	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/logctx"
	"github.com/fatflowers/gymgate/pkg/response"
	"github.com/fatflowers/gymgate/pkg/types"
)

type createMemberRequest struct {
	CompanyID      string  `json:"company_id" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	BiometricToken *string `json:"biometric_token"`
}

type createMembershipRequest struct {
	CompanyID string     `json:"company_id" binding:"required"`
	MemberID  string     `json:"member_id" binding:"required,uuid"`
	Status    string     `json:"status" binding:"required"`
	EndsAt    *time.Time `json:"ends_at"`
}

type listMembersResponse struct {
	Members []*models.Member `json:"members"`
	Total   int64            `json:"total"`
}

// @Summary      Create member
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body createMemberRequest true "Member"
// @Success      200  {object}  RespOK
// @Router       /api/v1/admin/members [post]
func ApiCreateMember(repo *membership.Repository, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		m := &models.Member{
			CompanyID:      req.CompanyID,
			Name:           req.Name,
			Email:          req.Email,
			Active:         true,
			BiometricToken: req.BiometricToken,
		}
		if err := repo.CreateMember(c.Request.Context(), m); err != nil {
			logctx.FromGin(c, log).Errorw("create member failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(m))
	}
}

// @Summary      Create membership
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body createMembershipRequest true "Membership grant"
// @Success      200  {object}  RespOK
// @Router       /api/v1/admin/memberships [post]
func ApiCreateMembership(repo *membership.Repository, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMembershipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}
		status := types.MembershipStatus(req.Status)
		if !validMembershipStatus(status) {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "unknown membership status", nil))
			return
		}
		ms := &models.Membership{
			CompanyID: req.CompanyID,
			MemberID:  req.MemberID,
			Status:    status,
			EndsAt:    req.EndsAt,
		}
		if err := repo.CreateMembership(c.Request.Context(), ms); err != nil {
			logctx.FromGin(c, log).Errorw("create membership failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ms))
	}
}

// @Summary      List members
// @Tags         Admin
// @Produce      json
// @Param        company_id query string true "Tenant"
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Success      200  {object}  RespOK
// @Router       /api/v1/admin/members [get]
func ApiListMembers(repo *membership.Repository, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.Query("company_id")
		if companyID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorMsgT[any](response.APIResponseCodeBadRequest, "company_id is required", nil))
			return
		}
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		rows, total, err := repo.ListMembers(c.Request.Context(), companyID, offset, limit)
		if err != nil {
			logctx.FromGin(c, log).Errorw("list members failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(listMembersResponse{Members: rows, Total: total}))
	}
}

func validMembershipStatus(s types.MembershipStatus) bool {
	for _, v := range types.AcceptableStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func RegisterAdminRoutes(r gin.IRouter, repo *membership.Repository, log *zap.SugaredLogger) {
	r.POST("/members", ApiCreateMember(repo, log))
	r.GET("/members", ApiListMembers(repo, log))
	r.POST("/memberships", ApiCreateMembership(repo, log))
}
