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
	"go.uber.org/zap"

	"github.com/piyawatSritavong/upgrade-order-report/internal/client/recycle"
	"github.com/piyawatSritavong/upgrade-order-report/internal/config"
	cronrunner "github.com/piyawatSritavong/upgrade-order-report/internal/cron"
	"github.com/piyawatSritavong/upgrade-order-report/internal/db"
	"github.com/piyawatSritavong/upgrade-order-report/internal/handler"
	"github.com/piyawatSritavong/upgrade-order-report/internal/logger"
	gormrepository "github.com/piyawatSritavong/upgrade-order-report/internal/repository/gorm"
	"github.com/piyawatSritavong/upgrade-order-report/internal/service"
)

func main() {
	cfgPath := os.Getenv("RT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
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

	feedHTTP := &http.Client{Timeout: cfg.Feed.Timeout}
	feedClient := recycle.NewClient(feedHTTP, cfg.Feed.BaseURL)
	store := gormrepository.New(dbConn.Gorm)

	syncService := &service.SyncService{
		Store:  store,
		Feeds:  feedClient,
		Logger: logger,
	}
	reportService := &service.ReportService{Store: store}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	reportHandler := &handler.ReportHandler{
		Service:      reportService,
		Logger:       logger,
		DefaultLimit: cfg.Report.DefaultLimit,
		MaxLimit:     cfg.Report.MaxLimit,
	}
	reportHandler.Register(engine)
	syncHandler := &handler.SyncHandler{Service: syncService, Logger: logger}
	syncHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.Sync, func(ctx context.Context) {
			result, err := syncService.SyncAll(ctx)
			if err != nil {
				logger.Warn("cron sync finished with errors", zap.Error(err))
			}
			logger.Info("cron sync done",
				zap.Int("categories", result.Categories),
				zap.Int("subcategories", result.Subcategories),
				zap.Int("orders", result.Orders),
				zap.Int("items", result.Items),
				zap.Int("skipped_groups", result.SkippedGroups),
				zap.Int("item_errors", result.ItemErrors),
			)
		})
		if err != nil {
			logger.Warn("cron register sync failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()

		// Eager first run so the dashboard has data before the first tick.
		go func() {
			if _, err := syncService.SyncAll(ctx); err != nil {
				logger.Warn("initial sync finished with errors", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)

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
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
