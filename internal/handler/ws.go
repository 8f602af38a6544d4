package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/metrics"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/push"
)

type WSHandler struct {
	Hub    *push.Hub
	Logger *zap.Logger
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/ws", h.serve)
}

// @Summary Live price and portfolio event stream
// @Tags push
// @Param user_id query string false "user id for targeted events"
// @Router /ws [get]
func (h *WSHandler) serve(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))

	metrics.WebSocketClients.Inc()
	defer metrics.WebSocketClients.Dec()

	if err := h.Hub.Serve(c.Writer, c.Request, userID); err != nil {
		h.Logger.Debug("websocket session ended", zap.String("user_id", userID), zap.Error(err))
	}
}
