package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
)

type PortfolioHandler struct {
	Ledger *ledger.Ledger
}

func (h *PortfolioHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/portfolio", h.portfolio)
}

// @Summary User balance, open positions and recent orders
// @Tags portfolio
// @Param user_id query string true "user id"
// @Success 200 {object} apiResponse
// @Router /api/v1/portfolio [get]
func (h *PortfolioHandler) portfolio(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		Fail(c, http.StatusBadRequest, "invalid_user", "user_id query parameter required")
		return
	}
	Ok(c, h.Ledger.Portfolio(userID))
}
