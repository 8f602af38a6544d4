package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/service"
)

// MatchHandler serves the published read-model: match list, per-match
// markets, price history and the trade tape.
type MatchHandler struct {
	Book     *market.Book
	Ledger   *ledger.Ledger
	Refresh  *service.RefreshService
	Controls *risk.Manager
}

func (h *MatchHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/matches")
	g.GET("", h.list)
	g.GET("/:id/markets", h.markets)
	g.GET("/:id/history", h.history)
	g.GET("/:id/orders", h.orders)
}

// @Summary List live matches with headline prices
// @Tags matches
// @Success 200 {object} apiResponse
// @Router /api/v1/matches [get]
func (h *MatchHandler) list(c *gin.Context) {
	out := gin.H{"matches": h.Book.Matches()}
	if at := h.Book.LastRefresh(); !at.IsZero() {
		out["refreshedAt"] = at
	}
	if h.Refresh != nil {
		out["stale"] = h.Refresh.Stale()
	}
	Ok(c, out)
}

// @Summary Markets for one match
// @Tags matches
// @Param id path int true "match id"
// @Success 200 {object} apiResponse
// @Router /api/v1/matches/{id}/markets [get]
func (h *MatchHandler) markets(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	m, found := h.Book.Match(id)
	if !found {
		Fail(c, http.StatusNotFound, "match_not_found", "match does not exist")
		return
	}
	markets, _ := h.Book.Markets(id)
	out := gin.H{"match": m, "markets": markets}
	if h.Controls != nil {
		out["tradingStatus"] = h.Controls.TradingStatus(id)
	}
	Ok(c, out)
}

// @Summary Retained price history for one match
// @Tags matches
// @Param id path int true "match id"
// @Success 200 {object} apiResponse
// @Router /api/v1/matches/{id}/history [get]
func (h *MatchHandler) history(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	if _, found := h.Book.Match(id); !found {
		Fail(c, http.StatusNotFound, "match_not_found", "match does not exist")
		return
	}
	Ok(c, gin.H{"matchId": id, "points": h.Book.History(id)})
}

// @Summary Recent orders on one match
// @Tags matches
// @Param id path int true "match id"
// @Success 200 {object} apiResponse
// @Router /api/v1/matches/{id}/orders [get]
func (h *MatchHandler) orders(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	if _, found := h.Book.Match(id); !found {
		Fail(c, http.StatusNotFound, "match_not_found", "match does not exist")
		return
	}
	Ok(c, gin.H{"matchId": id, "orders": h.Ledger.OrdersByMatch(id)})
}

// matchIDParam parses the :id path segment, answering 400 itself on junk.
func matchIDParam(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, "invalid_match_id", "matchId must be a positive number")
		return 0, false
	}
	return id, true
}
