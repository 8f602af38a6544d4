package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/cache"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/feed"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/push"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/service"
)

type HealthHandler struct {
	Scores  feed.ScoreSource
	Odds    []feed.OddsSource
	Book    *market.Book
	Locks   *market.ThresholdLocks
	Ledger  *ledger.Ledger
	Refresh *service.RefreshService
	Hub     *push.Hub
	Store   repository.Repository
	Cache   *cache.Client
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	providers := make(map[string]feed.Health)
	if h.Scores != nil {
		providers[h.Scores.Name()] = h.Scores.Health()
	}
	for _, src := range h.Odds {
		providers[src.Name()] = src.Health()
	}

	out := gin.H{
		"status":    "ok",
		"providers": providers,
		"store":     h.Store != nil,
		"cache":     h.Cache != nil,
		"wsClients": h.Hub.Clients(),
	}
	if h.Book != nil {
		out["matches"] = h.Book.Len()
		if at := h.Book.LastRefresh(); !at.IsZero() {
			out["lastRefreshAt"] = at.Format(time.RFC3339)
		}
	}
	if h.Refresh != nil {
		out["stale"] = h.Refresh.Stale()
	}
	if h.Ledger != nil {
		out["ledger"] = h.Ledger.Stats()
	}
	if h.Locks != nil {
		out["pinnedLines"] = h.Locks.Count()
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Readiness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if h.Refresh != nil && h.Refresh.Stale() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "feed_stale"})
		return
	}
	if h.Store != nil {
		if err := h.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_unreachable"})
			return
		}
	}
	if h.Cache != nil {
		if err := h.Cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "cache_unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
