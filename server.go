package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/middlewares"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
)

const defaultPort = "8080"

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the DB is ready; app endpoints answer 503
	// until dependencies come up.
	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production the allowlist must be explicit; anything else is a
	// developer setup and convenience wins.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
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
		rateLimiter := &RateLimiter{client: client, limit: limit, window: time.Duration(windowSec) * time.Second}
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.SessionMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/auth/login", loginHandler())
	r.POST("/auth/logout", logoutHandler())

	api := r.Group("/api", middlewares.RequireSession())
	{
		api.GET("/products", listProductsHandler())
		api.POST("/products", createProductHandler())
		api.GET("/products/:id", getProductHandler())
		api.PUT("/products/:id", updateProductHandler())
		api.DELETE("/products/:id", deleteProductHandler())
		api.GET("/products/:id/movements", listProductMovementsHandler())
		api.GET("/products/:id/stock", productStockHandler())

		api.POST("/stock-movements", recordStockMovementHandler())
		api.PUT("/stock-movements/:id", updateStockMovementHandler())
		api.DELETE("/stock-movements/:id", deleteStockMovementHandler())
		api.POST("/stock-reconciliations", stockReconciliationHandler())

		api.GET("/suppliers", listSuppliersHandler())
		api.POST("/suppliers", createSupplierHandler())
		api.GET("/suppliers/:id", getSupplierHandler())
		api.PUT("/suppliers/:id", updateSupplierHandler())
		api.DELETE("/suppliers/:id", deleteSupplierHandler())
		api.GET("/suppliers/:id/balance", supplierBalanceHandler())
		api.GET("/suppliers/:id/ledger", supplierLedgerHandler())

		api.GET("/supplier-credits", listSupplierCreditsHandler())
		api.POST("/supplier-credits", createSupplierCreditHandler())
		api.GET("/supplier-credits/:id", getSupplierCreditHandler())
		api.PUT("/supplier-credits/:id", updateSupplierCreditHandler())
		api.DELETE("/supplier-credits/:id", deleteSupplierCreditHandler())
		api.POST("/supplier-payments", createSupplierPaymentHandler())
		api.DELETE("/supplier-payments/:id", deleteSupplierPaymentHandler())

		api.GET("/customers", listCustomersHandler())
		api.POST("/customers", createCustomerHandler())
		api.GET("/customers/:id", getCustomerHandler())
		api.PUT("/customers/:id", updateCustomerHandler())
		api.DELETE("/customers/:id", deleteCustomerHandler())
		api.GET("/customers/:id/ledger", customerLedgerHandler())
		api.POST("/customer-debts", createCustomerDebtHandler())
		api.DELETE("/customer-debts/:id", deleteCustomerDebtHandler())
		api.POST("/credit-collections", createCreditCollectionHandler())
		api.DELETE("/credit-collections/:id", deleteCreditCollectionHandler())

		api.GET("/sales", listSalesHandler())
		api.POST("/sales", createSaleHandler())
		api.GET("/sales/:id", getSaleHandler())
		api.DELETE("/sales/:id", deleteSaleHandler())
		api.POST("/sales/:id/payments", recordSalePaymentHandler())

		api.GET("/bank-transfers", listBankTransfersHandler())
		api.POST("/bank-transfers", createBankTransferHandler())
		api.DELETE("/bank-transfers/:id", deleteBankTransferHandler())

		api.GET("/reports/profit-by-product", profitByProductReportHandler())
		api.GET("/reports/supplier-balances", supplierBalancesReportHandler())
		api.GET("/reports/stock-summary", stockSummaryReportHandler())
	}

	// Ops tooling (admin only): also runnable as cmd/recalc-credit-status.
	r.POST("/internal/ops/recalc-credit-status", middlewares.RequireSession(), recalcCreditStatusHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Set the session isolation level to READ COMMITTED
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
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

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			username, _ := utils.GetUserNameFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"correlation_id": cid,
				"username":       username,
				"path":           c.Request.URL.Path,
			}).Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
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
