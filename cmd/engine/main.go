package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/cache"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/config"
	cronrunner "github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/cron"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/db"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/feed"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/handler"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/logger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/metrics"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/push"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/reconcile"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
	gormrepository "github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository/gorm"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/service"

	_ "github.com/abhijeetsaherawat13/yesno-cricket-sub000/docs"
)

func main() {
	cfgPath := os.Getenv("YN_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if raw := os.Getenv("YN_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var store repository.Repository
	if cfg.DB.DSN != "" {
		dbConn, err := db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)
		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(dbConn.Gorm)
	} else {
		logger.Info("no db dsn configured, ledger state is in-memory only")
	}

	var snapCache *cache.Client
	if cfg.Redis.URL != "" {
		snapCache, err = cache.New(cfg.Redis.URL, cfg.Redis.TTL, logger)
		if err != nil {
			logger.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
			snapCache = nil
		} else {
			defer snapCache.Close()
		}
	}

	controls := risk.NewManager(risk.Limits{
		StartingBalance:  decimal.NewFromFloat(cfg.Risk.StartingBalance),
		MaxUserExposure:  decimal.NewFromFloat(cfg.Risk.MaxUserExposure),
		MaxMatchExposure: decimal.NewFromFloat(cfg.Risk.MaxMatchExposure),
	}, logger)

	book := market.NewBook(cfg.Engine.HistoryRetention)
	locks := market.NewThresholdLocks()
	builder := &market.Builder{Locks: locks}
	hub := push.NewHub(cfg.Push.SendBuffer, logger)
	auditLog := ledger.NewAuditLog(cfg.Engine.AuditRetention, store, logger)

	led := ledger.New(controls, book, store, hub, logger)
	if err := led.Hydrate(context.Background()); err != nil {
		logger.Warn("ledger hydrate failed, starting empty", zap.Error(err))
	}

	var scores feed.ScoreSource
	if cfg.Feed.ScoreURL != "" {
		scores = feed.NewScoreboard(cfg.Feed.ScoreURL, cfg.Feed.Timeout, cfg.Feed.DetailWorkers, logger)
	}
	var odds []feed.OddsSource
	if cfg.Feed.OddsPrimaryURL != "" {
		odds = append(odds, feed.NewOddsboard(cfg.Feed.OddsPrimaryURL, cfg.Feed.Timeout))
	}
	if cfg.Feed.OddsSecondaryURL != "" {
		odds = append(odds, feed.NewExchange(cfg.Feed.OddsSecondaryURL, cfg.Feed.Timeout))
	}
	if scores == nil && len(odds) == 0 {
		logger.Warn("no feed providers configured, book will stay empty until one is added")
	}

	refreshSvc := &service.RefreshService{
		Scores:     scores,
		Odds:       odds,
		Reconciler: reconcile.New(logger),
		Builder:    builder,
		Book:       book,
		Controls:   controls,
		Hub:        hub,
		Cache:      snapCache,
		Store:      store,
		Logger:     logger,
		Timeout:    cfg.Engine.RefreshTimeout,
		StaleAfter: cfg.Engine.StaleAfter,
	}
	settler := &service.SettlementService{
		Book:   book,
		Ledger: led,
		Locks:  locks,
		Hub:    hub,
		Audit:  auditLog,
		Store:  store,
		Logger: logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(metrics.Middleware())

	healthHandler := &handler.HealthHandler{
		Scores:  scores,
		Odds:    odds,
		Book:    book,
		Locks:   locks,
		Ledger:  led,
		Refresh: refreshSvc,
		Hub:     hub,
		Store:   store,
		Cache:   snapCache,
	}
	healthHandler.Register(engine)
	(&handler.MatchHandler{Book: book, Ledger: led, Refresh: refreshSvc, Controls: controls}).Register(engine)
	(&handler.TradeHandler{Ledger: led}).Register(engine)
	(&handler.PortfolioHandler{Ledger: led}).Register(engine)
	(&handler.AdminHandler{
		Refresh:  refreshSvc,
		Settler:  settler,
		Controls: controls,
		Ledger:   led,
		Audit:    auditLog,
		Token:    cfg.Admin.Token,
	}).Register(engine)
	(&handler.WSHandler{Hub: hub, Logger: logger}).Register(engine)

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Serve cached prices while the first live cycle runs.
	if refreshSvc.Prime(ctx) {
		logger.Info("serving cached snapshot until first refresh")
	}
	go func() {
		if _, err := refreshSvc.Refresh(ctx); err != nil {
			logger.Warn("initial refresh failed", zap.Error(err))
		}
	}()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.Refresh, func(ctx context.Context) {
			if _, err := refreshSvc.Refresh(ctx); err != nil {
				logger.Warn("cron refresh failed", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("cron register refresh failed", zap.Error(err))
		}
		if _, err := cronRunner.Add(cfg.Cron.SettleSweep, func(ctx context.Context) {
			if n := settler.Sweep(ctx); n > 0 {
				logger.Info("settlement sweep", zap.Int("settled", n))
			}
		}); err != nil {
			logger.Warn("cron register settle sweep failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	} else {
		logger.Info("cron disabled, refresh and sweep run on demand only")
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	hub.Close()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
