package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/service"
)

// AdminHandler exposes the operator surface: manual refresh, trading
// suspension, explicit settlement and the audit trail. When Token is empty
// the endpoints are open, which is the expected mode behind a gateway that
// already authenticates.
type AdminHandler struct {
	Refresh  *service.RefreshService
	Settler  *service.SettlementService
	Controls *risk.Manager
	Ledger   *ledger.Ledger
	Audit    *ledger.AuditLog
	Token    string
}

func (h *AdminHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/admin")
	g.Use(h.guard)
	g.POST("/refresh", h.refresh)
	g.POST("/matches/:id/suspend", h.suspendMatch)
	g.POST("/matches/:id/resume", h.resumeMatch)
	g.POST("/users/:id/suspend", h.suspendUser)
	g.POST("/users/:id/resume", h.resumeUser)
	g.POST("/settle", h.settle)

	audit := r.Group("/api/v1")
	audit.Use(h.guard)
	audit.GET("/audit", h.auditTrail)
}

func (h *AdminHandler) guard(c *gin.Context) {
	if h.Token == "" {
		c.Next()
		return
	}
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if !strings.HasPrefix(auth, "Bearer ") ||
		strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) != h.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			apiResponse{Code: "unauthorized", Error: "valid bearer token required"})
		return
	}
	c.Next()
}

// @Summary Trigger a refresh cycle
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/refresh [post]
func (h *AdminHandler) refresh(c *gin.Context) {
	res, err := h.Refresh.Refresh(c.Request.Context())
	if err != nil {
		FailErr(c, err)
		return
	}
	h.Audit.Record(ledger.AuditKindAdminRefresh, 0, "", "manual refresh", res)
	Ok(c, res)
}

type suspendMatchRequest struct {
	Reason string `json:"reason"`
}

// @Summary Suspend trading on a match
// @Tags admin
// @Param id path int true "match id"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/matches/{id}/suspend [post]
func (h *AdminHandler) suspendMatch(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	var req suspendMatchRequest
	_ = c.ShouldBindJSON(&req) // body is optional
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "suspended by operator"
	}
	h.Controls.SuspendMatch(id, reason)
	h.Audit.Record(ledger.AuditKindAdminSuspend, id, "", reason, nil)
	Ok(c, gin.H{"matchId": id, "suspended": true, "reason": reason})
}

// @Summary Resume trading on a match
// @Tags admin
// @Param id path int true "match id"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/matches/{id}/resume [post]
func (h *AdminHandler) resumeMatch(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	was := h.Controls.ResumeMatch(id)
	h.Audit.Record(ledger.AuditKindAdminResume, id, "", "trading resumed", nil)
	Ok(c, gin.H{"matchId": id, "suspended": false, "wasSuspended": was})
}

// @Summary Suspend a user from opening positions
// @Tags admin
// @Param id path string true "user id"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/users/{id}/suspend [post]
func (h *AdminHandler) suspendUser(c *gin.Context) {
	h.setUserSuspended(c, true)
}

// @Summary Resume a suspended user
// @Tags admin
// @Param id path string true "user id"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/users/{id}/resume [post]
func (h *AdminHandler) resumeUser(c *gin.Context) {
	h.setUserSuspended(c, false)
}

func (h *AdminHandler) setUserSuspended(c *gin.Context, suspended bool) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		Fail(c, http.StatusBadRequest, "invalid_user", "user id must not be empty")
		return
	}
	user := h.Ledger.SetUserSuspended(c.Request.Context(), userID, suspended)
	detail := "user suspended"
	if !suspended {
		detail = "user resumed"
	}
	h.Audit.Record(ledger.AuditKindAdminUser, 0, userID, detail, nil)
	Ok(c, user)
}

type settleRequest struct {
	MatchID int64  `json:"matchId"`
	Winner  string `json:"winner"`
}

// @Summary Settle a match, optionally forcing the winner
// @Tags admin
// @Accept json
// @Param body body settleRequest true "settle request"
// @Success 200 {object} apiResponse
// @Router /api/v1/admin/settle [post]
func (h *AdminHandler) settle(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	if req.MatchID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid_match_id", "matchId must be a positive number")
		return
	}
	report, err := h.Settler.Settle(c.Request.Context(), req.MatchID, strings.TrimSpace(req.Winner))
	if err != nil {
		FailErr(c, err)
		return
	}
	h.Audit.Record(ledger.AuditKindAdminSettle, req.MatchID, "",
		"settled via admin endpoint", gin.H{"winner": report.WinnerLabel})
	Ok(c, report)
}

// @Summary Recent audit entries
// @Tags admin
// @Param limit query int false "max entries, default 50"
// @Success 200 {object} apiResponse
// @Router /api/v1/audit [get]
func (h *AdminHandler) auditTrail(c *gin.Context) {
	limit := 50
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			Fail(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive number")
			return
		}
		limit = n
	}
	Ok(c, gin.H{"entries": h.Audit.Recent(limit)})
}
