package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/growth-audit/backend/audit"
	"github.com/growth-audit/backend/cache"
	"github.com/growth-audit/backend/logging"
	"github.com/growth-audit/backend/middleware"
	"github.com/growth-audit/backend/mockup"
	"github.com/growth-audit/backend/screenshot"
	"github.com/growth-audit/backend/stats"
)

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			logrus.Info("No .env file found, using environment variables")
		}
	}
}

func setupLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}
	return logrus.NewEntry(logger)
}

func setupGinMode() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		// Default to release mode if not specified
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func auditTTL() time.Duration {
	if v := os.Getenv("AUDIT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Minute
}

func main() {
	loadEnv()
	setupGinMode()
	log := setupLogger()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Shared cache database for audits and mockups
	store, err := cache.NewBadgerStore(dataDir, log.WithField("component", "cache"))
	if err != nil {
		log.Fatalf("Failed to open cache store: %v", err)
	}
	defer store.Close()

	stopGC := make(chan struct{})
	go store.RunGC(stopGC, 10*time.Minute)

	statsStorage, err := stats.NewStorage(dataDir)
	if err != nil {
		log.Fatalf("Failed to initialize stats storage: %v", err)
	}

	shots := screenshot.New(os.Getenv("SCREENSHOT_SERVICE_URL"), 45*time.Second, log.WithField("component", "screenshot"))
	if shots == nil {
		log.Info("No screenshot service configured, running in static-fetch mode")
	}

	auditService, err := audit.NewService(audit.Options{
		Cache:       store,
		Screenshots: shots,
		Stats:       statsStorage,
		TTL:         auditTTL(),
		Logger:      log.WithField("component", "audit"),
	})
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	mockupGenerator := mockup.New(mockup.Options{
		Endpoint: os.Getenv("MOCKUP_PROVIDER_URL"),
		APIKey:   os.Getenv("MOCKUP_PROVIDER_KEY"),
		Cache:    store,
		Stats:    statsStorage,
		Logger:   log.WithField("component", "mockup"),
	})

	visitorStats := logging.Initialize()
	rateLimiter := middleware.NewRateLimiter(2, 5) // 2 requests per second, bucket size of 5

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler(log.WithField("component", "http")))
	r.Use(rateLimiter.RateLimit())
	r.Use(corsMiddleware())
	r.Use(middleware.Stats(visitorStats, log.WithField("component", "http")))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/audit", handleAudit(auditService, log))
		api.GET("/audit", handleInvalidate(auditService, log))
		api.POST("/generate-mockup", handleMockup(mockupGenerator, log))

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, visitorStats.GetStatistics())
		})
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.Infof("Server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	close(stopGC)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
	if err := statsStorage.Shutdown(); err != nil {
		log.Errorf("Stats shutdown: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type auditRequest struct {
	URL      string `json:"url" binding:"required"`
	PageType string `json:"pageType" binding:"required"`
}

func handleAudit(service *audit.Service, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request auditRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_url"})
			return
		}
		if !audit.ValidPageType(request.PageType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_page_type"})
			return
		}
		c.Set(middleware.AuditURLKey, request.URL)

		result, err := service.Audit(c.Request.Context(), request.URL, audit.PageType(request.PageType))
		if err != nil {
			if errors.Is(err, audit.ErrInvalidURL) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_url"})
				return
			}
			log.WithField("url", request.URL).Errorf("Audit failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis_error"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func handleInvalidate(service *audit.Service, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		pageType := c.Query("pageType")
		if rawURL == "" || !audit.ValidPageType(pageType) || c.Query("invalidate") != "true" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_url"})
			return
		}

		if err := service.Invalidate(rawURL, audit.PageType(pageType)); err != nil {
			if errors.Is(err, audit.ErrInvalidURL) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_url"})
				return
			}
			// Invalidation failure is not fatal: the next audit simply
			// reuses the stale entry until its TTL runs out.
			log.WithField("url", rawURL).Warnf("Cache invalidation failed: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{"invalidated": true})
	}
}

func handleMockup(generator *mockup.Generator, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request mockup.Request
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "generation_error"})
			return
		}

		result, err := generator.Generate(c.Request.Context(), request)
		if err != nil {
			if errors.Is(err, mockup.ErrRateLimited) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limit"})
				return
			}
			log.Errorf("Mockup generation failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "generation_error"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
