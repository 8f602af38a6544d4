package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/metrics"
)

// TradeHandler owns the money-moving endpoints: order placement and
// position close. Both delegate every rule to the ledger and only translate
// transport concerns here.
type TradeHandler struct {
	Ledger *ledger.Ledger
}

func (h *TradeHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/orders", h.place)
	r.POST("/api/v1/positions/:id/close", h.close)
}

type placeOrderRequest struct {
	UserID      string          `json:"userId"`
	MatchID     int64           `json:"matchId"`
	MarketID    int             `json:"marketId"`
	OptionLabel string          `json:"optionLabel"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
}

// @Summary Place an order
// @Tags trading
// @Accept json
// @Param body body placeOrderRequest true "order"
// @Success 200 {object} apiResponse
// @Router /api/v1/orders [post]
func (h *TradeHandler) place(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	res, err := h.Ledger.PlaceOrder(c.Request.Context(), ledger.PlaceOrderInput{
		UserID:      strings.TrimSpace(req.UserID),
		MatchID:     req.MatchID,
		MarketID:    req.MarketID,
		OptionLabel: req.OptionLabel,
		Side:        strings.ToLower(strings.TrimSpace(req.Side)),
		Amount:      req.Amount,
	})
	if err != nil {
		var rej *ledger.RejectionError
		if errors.As(err, &rej) {
			metrics.OrdersRejected.WithLabelValues(rej.Code).Inc()
		}
		FailErr(c, err)
		return
	}
	metrics.OrdersTotal.WithLabelValues(res.Order.Side).Inc()
	Ok(c, res)
}

type closePositionRequest struct {
	UserID        string          `json:"userId"`
	SharesToClose decimal.Decimal `json:"sharesToClose"`
}

// @Summary Close a position, fully or partially
// @Tags trading
// @Accept json
// @Param id path int true "position id"
// @Param body body closePositionRequest true "close request"
// @Success 200 {object} apiResponse
// @Router /api/v1/positions/{id}/close [post]
func (h *TradeHandler) close(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, "invalid_position_id", "position id must be a positive number")
		return
	}
	var req closePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	res, err := h.Ledger.ClosePosition(c.Request.Context(), ledger.CloseInput{
		UserID:        strings.TrimSpace(req.UserID),
		PositionID:    id,
		SharesToClose: req.SharesToClose,
	})
	if err != nil {
		FailErr(c, err)
		return
	}
	metrics.PositionsClosed.Inc()
	Ok(c, res)
}
