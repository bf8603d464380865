package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workstudy/internal/auth"
	"workstudy/internal/cache"
	"workstudy/internal/config"
	"workstudy/internal/engine"
	"workstudy/internal/httpmiddleware"
	"workstudy/internal/queue"
	"workstudy/internal/roster"
	"workstudy/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "workstudy:recompute")
	}

	cal := engine.NewCalendar(cfg.ReferenceTZ)
	reports := cache.New(redisClient.Client, cfg.ReportCacheTTL)
	repo := roster.NewRepository(db.Client)
	svc := roster.NewService(repo, reports, cal, q)

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/staff/register", func(c *gin.Context) {
		var req struct {
			StaffID string `json:"staff_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tokens, err := auth.Issue(req.StaffID, "staff", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		_ = repo.SaveRefreshToken(c.Request.Context(), req.StaffID, tokens.RefreshToken, tokens.RefreshExp)

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	// Rotate a refresh token: the old one is revoked and a fresh pair
	// issued, so a leaked token stops working after first use.
	r.POST("/v1/staff/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims, err := auth.Parse(req.RefreshToken, cfg.JWTSigningKey, cfg.JWTIssuer)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		staffID, revoked, expiresAt, err := repo.GetRefreshToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if staffID == "" || staffID != claims.Subject || revoked || time.Now().After(expiresAt) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token no longer valid"})
			return
		}

		_ = repo.RevokeRefreshToken(c.Request.Context(), req.RefreshToken)

		tokens, err := auth.Issue(claims.Subject, claims.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		_ = repo.SaveRefreshToken(c.Request.Context(), claims.Subject, tokens.RefreshToken, tokens.RefreshExp)

		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.StaffAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.POST("/swipes", func(c *gin.Context) {
		var req struct {
			StudentID string `json:"student_id" binding:"required"`
			TermID    string `json:"term_id" binding:"required"`
			Kind      string `json:"kind" binding:"required"`
			At        string `json:"at"`
			Manual    bool   `json:"is_manual"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		at := time.Now().UTC()
		if req.At != "" {
			parsed, err := time.Parse(time.RFC3339, req.At)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "at must be RFC 3339"})
				return
			}
			at = parsed
		}

		ev, err := svc.RecordSwipe(c.Request.Context(), req.StudentID, req.TermID, engine.EventKind(req.Kind), at, req.Manual)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"event": ev})
	})

	authGroup.PUT("/events/:id", func(c *gin.Context) {
		var req struct {
			At   string `json:"at" binding:"required"`
			Kind string `json:"kind" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		at, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at must be RFC 3339"})
			return
		}
		ev, err := svc.AmendEvent(c.Request.Context(), c.Param("id"), at, engine.EventKind(req.Kind))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if ev == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": ev})
	})

	authGroup.DELETE("/events/:id", func(c *gin.Context) {
		ev, err := svc.RemoveEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if ev == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": ev})
	})

	authGroup.GET("/students/:id/terms/:term/events", func(c *gin.Context) {
		events, err := svc.Events(c.Request.Context(), c.Param("id"), c.Param("term"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	})

	authGroup.GET("/students/:id/terms/:term/reports/days", func(c *gin.Context) {
		from, to := c.Query("from"), c.Query("to")
		if from == "" || to == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required (YYYY-MM-DD)"})
			return
		}
		days, err := svc.Days(c.Request.Context(), c.Param("id"), c.Param("term"), from, to)
		if err != nil {
			reportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days})
	})

	authGroup.GET("/students/:id/terms/:term/reports/weeks", func(c *gin.Context) {
		weeks, err := svc.Weeks(c.Request.Context(), c.Param("id"), c.Param("term"))
		if err != nil {
			reportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"weeks": weeks})
	})

	authGroup.GET("/students/:id/terms/:term/reports/months", func(c *gin.Context) {
		months, err := svc.Months(c.Request.Context(), c.Param("id"), c.Param("term"))
		if err != nil {
			reportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"months": months})
	})

	authGroup.GET("/students/:id/terms/:term/reports/punctuality", func(c *gin.Context) {
		counts, err := svc.Punctuality(c.Request.Context(), c.Param("id"), c.Param("term"))
		if err != nil {
			reportError(c, err)
			return
		}
		c.JSON(http.StatusOK, counts)
	})

	authGroup.GET("/students/:id/terms/:term/live", func(c *gin.Context) {
		status, err := svc.Live(c.Request.Context(), c.Param("id"), c.Param("term"), time.Now())
		if err != nil {
			reportError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func reportError(c *gin.Context, err error) {
	if err == roster.ErrTermNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
