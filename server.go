package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/middlewares"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/mmdatafocus/billing_backend/workflow"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// app holds the writer once dependencies are connected. Until then every
// /api route answers 503.
type app struct {
	w atomic.Pointer[models.DocumentWriter]
}

func (a *app) writer() *models.DocumentWriter {
	return a.w.Load()
}

func (a *app) store() *models.Store {
	return a.writer().Store()
}

func (a *app) ready() bool {
	return a.w.Load() != nil
}

func (a *app) setWriter(w *models.DocumentWriter) {
	a.w.Store(w)
}

func (a *app) readinessGate(c *gin.Context) {
	if !a.ready() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service not ready"})
		return
	}
	c.Next()
}

func (a *app) loaderMiddleware(c *gin.Context) {
	middlewares.LoaderMiddleware(a.store())(c)
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// newRouter wires the middleware chain and all routes. rateLimiter may be nil.
func newRouter(a *app, logger *logrus.Logger, rateLimiter *middlewares.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(cors.New(corsConfig()))
	if rateLimiter != nil {
		r.Use(rateLimiter.RateLimitMiddleware)
	}
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/pubsub", middlewares.PubSubPushAuth(), documentEventPubSubHandler())

	api := r.Group("/api", a.readinessGate, middlewares.AuthMiddleware(), a.loaderMiddleware)
	registerDocumentRoutes(api, a)
	registerEntityRoutes(api, a)
	registerReportRoutes(api, a)

	r.NoRoute(customNotFoundHandler)
	return r
}

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// deny all; cors.New rejects an empty allowlist without a func
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	return corsConfig
}

// Optional rate limiting.
// Env:
// - RATE_LIMIT_ENABLED=true
// - RATE_LIMIT_WINDOW_SECONDS=60
// - RATE_LIMIT_MAX_REQUESTS=600
func rateLimiterFromEnv() *middlewares.RateLimiter {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		return nil
	}
	limit := int64(600)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	windowSec := int64(60)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			windowSec = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDRESS"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return middlewares.NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
}

// connectStore opens the configured backing store. The returned func closes it.
func connectStore(logger *logrus.Logger) (*models.Store, func()) {
	if config.StoreDriver() == "memory" {
		logger.WithFields(logrus.Fields{"field": "store"}).Warn("STORE_DRIVER=memory; data is not persisted")
		return models.NewMemoryStore(), func() {}
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	// AutoMigrate can run DDL that blocks tables; allow running it as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable(db)
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}
	return models.NewGormStore(db), func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	if err := utils.CheckJwtSecret(); err != nil {
		log.Fatal(err)
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	a := &app{}
	r := newRouter(a, logger, rateLimiterFromEnv())

	// Start listening immediately; /api answers 503 until the store is ready.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	store, closeStore := connectStore(logger)
	defer closeStore()
	if config.ReportCacheEnabled() || config.PubSubTopic() != "" {
		config.ConnectRedisWithRetry()
	}

	var opts []models.DocumentWriterOption
	if publisher := workflow.NewDocumentEventPublisher(); publisher != nil {
		opts = append(opts, models.WithEventPublisher(publisher))
	}
	a.setWriter(models.NewDocumentWriter(store, opts...))

	logger.WithFields(logrus.Fields{
		"info":            "Connection Established",
		"store":           config.StoreDriver(),
		"stock_reversal":  config.GetStockReversalPolicy(),
		"atomic_writes":   config.AtomicDocumentWrites(),
		"event_publisher": config.PubSubTopic() != "",
	}).Info("listening on port ", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	config.ClosePubSub()
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			ctx := c.Request.Context()
			cid, _ := utils.GetCorrelationIdFromContext(ctx)
			businessId, _ := utils.GetBusinessIdFromContext(ctx)
			userId, _ := utils.GetUserIdFromContext(ctx)
			role, _ := utils.GetRoleFromContext(ctx)
			logger.WithFields(logrus.Fields{
				"path":           c.FullPath(),
				"status":         c.Writer.Status(),
				"correlation_id": cid,
				"business_id":    businessId,
				"user_id":        userId,
				"role":           role,
			}).Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
