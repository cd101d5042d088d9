package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/projectpulse/pulse-server/internal/adapters"
	"github.com/projectpulse/pulse-server/internal/cache"
	"github.com/projectpulse/pulse-server/internal/errors"
	"github.com/projectpulse/pulse-server/internal/monitoring"
	"github.com/projectpulse/pulse-server/internal/ratelimit"
	"github.com/projectpulse/pulse-server/internal/resilience"
	"github.com/projectpulse/pulse-server/internal/scoring"
	"github.com/projectpulse/pulse-server/internal/service"
	"github.com/projectpulse/pulse-server/internal/store"
)

// serverDeps bundles everything the router needs, so tests can assemble
// a full HTTP surface against in-memory collaborators.
type serverDeps struct {
	analytics *service.AnalyticsService
	limiter   *ratelimit.RateLimiter
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	db        *store.DB
	cache     *cache.Cache
	jira      *adapters.JiraAdapter
	github    *adapters.GitHubAdapter
}

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	appMetrics := monitoring.NewMetrics()

	port := getEnvOrDefault("PORT", "8080")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")

	db, err := store.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	repo := store.NewRepository(db)

	cacheTTL := 5 * time.Minute
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cacheTTL = d
		} else {
			slog.Warn("Invalid CACHE_TTL, using default", "value", raw, "default", cacheTTL.String())
		}
	}
	appCache := cache.New(cacheTTL)

	breakerHook := func(from, to resilience.CircuitBreakerState) {
		switch to {
		case resilience.StateOpen:
			appMetrics.IncrementCircuitBreakerOpen()
		case resilience.StateClosed:
			appMetrics.IncrementCircuitBreakerClose()
		}
	}

	// External sources are optional; the analytics pipeline runs on
	// ingested records alone when they are absent.
	var jiraAdapter *adapters.JiraAdapter
	if jiraURL := os.Getenv("JIRA_BASE_URL"); jiraURL != "" {
		jiraAdapter = adapters.NewJiraAdapter(jiraURL, os.Getenv("JIRA_TOKEN"))
		jiraAdapter.OnCircuitStateChange(breakerHook)
		slog.Info("Tracker sync enabled", "base_url", jiraURL)
	}

	var githubAdapter *adapters.GitHubAdapter
	repoOwner := os.Getenv("GITHUB_ORG")
	if repoOwner != "" {
		githubAdapter = adapters.NewGitHubAdapter(os.Getenv("GITHUB_API_URL"), os.Getenv("GITHUB_TOKEN"))
		githubAdapter.OnCircuitStateChange(breakerHook)
		slog.Info("Repository sync enabled", "org", repoOwner)
	}

	redisClient, err := ratelimit.NewRedisClient(
		os.Getenv("REDIS_URL"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}

	limiterConfig := ratelimit.DefaultConfig()
	if raw := os.Getenv("RATE_LIMIT_PER_MIN"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limiterConfig.IPLimitPerMin = n
		}
	}
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)

	analytics := service.NewAnalyticsService(service.Config{
		Repo:      repo,
		Cache:     appCache,
		Logger:    appLogger,
		Metrics:   appMetrics,
		Jira:      jiraAdapter,
		GitHub:    githubAdapter,
		RepoOwner: repoOwner,
	})

	if getEnvOrDefault("GIN_MODE", "release") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := setupRouter(serverDeps{
		analytics: analytics,
		limiter:   limiter,
		metrics:   appMetrics,
		logger:    appLogger,
		db:        db,
		cache:     appCache,
		jira:      jiraAdapter,
		github:    githubAdapter,
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port, "data_dir", dataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if jiraAdapter != nil {
		if err := jiraAdapter.Close(); err != nil {
			slog.Error("Failed to close tracker adapter", "error", err)
		}
	}
	if githubAdapter != nil {
		if err := githubAdapter.Close(); err != nil {
			slog.Error("Failed to close repository adapter", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}

	appCache.Close()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}

	slog.Info("Server exited")
}

// setupRouter wires middleware and all API routes.
func setupRouter(deps serverDeps) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(deps.metrics, deps.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(deps.limiter.IPRateLimitMiddleware())

	r.GET("/health", func(c *gin.Context) {
		healthResponse := gin.H{
			"status":     "ok",
			"timestamp":  time.Now().Format(time.RFC3339),
			"version":    "1.0.0",
			"metrics":    deps.metrics.GetStats(),
			"database":   deps.db.GetPoolStats(),
			"cache":      deps.cache.Stats(),
			"rate_limit": deps.limiter.GetStats(),
		}

		if deps.jira != nil {
			healthResponse["tracker_circuit"] = deps.jira.CircuitState().String()
		}
		if deps.github != nil {
			healthResponse["repo_circuit"] = deps.github.CircuitState().String()
		}

		c.JSON(http.StatusOK, healthResponse)
	})

	api := r.Group("/api")

	api.GET("/dashboard/:role", func(c *gin.Context) {
		role, ok := scoring.ParseRole(c.Param("role"))
		if !ok {
			respondError(c, errors.NewValidationError("unknown role: "+c.Param("role")))
			return
		}

		dashboard, err := deps.analytics.Dashboard(c.Request.Context(), role)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, dashboard)
	})

	api.GET("/projects/:id/risk", func(c *gin.Context) {
		view, err := deps.analytics.ProjectRisk(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if view == nil {
			respondError(c, errors.NewNotFoundError("project", c.Param("id")))
			return
		}

		c.JSON(http.StatusOK, view)
	})

	api.GET("/developers/:id/scores", func(c *gin.Context) {
		view, err := deps.analytics.DeveloperScores(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if view == nil {
			respondError(c, errors.NewNotFoundError("developer", c.Param("id")))
			return
		}

		c.JSON(http.StatusOK, view)
	})

	api.GET("/scores/:id/history", func(c *gin.Context) {
		kind := c.DefaultQuery("kind", store.ScoreKindRisk)
		switch kind {
		case store.ScoreKindRisk, store.ScoreKindBurnout, store.ScoreKindPerformance:
		default:
			respondError(c, errors.NewValidationError("unknown score kind: "+kind))
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

		history, err := deps.analytics.ScoreHistory(c.Request.Context(), c.Param("id"), kind, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"entity_id": c.Param("id"),
			"kind":      kind,
			"history":   history,
		})
	})

	api.GET("/notifications/:role", func(c *gin.Context) {
		role, ok := scoring.ParseRole(c.Param("role"))
		if !ok {
			respondError(c, errors.NewValidationError("unknown role: "+c.Param("role")))
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		notifications, err := deps.analytics.Notifications(c.Request.Context(), role, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"role":          string(role),
			"notifications": notifications,
		})
	})

	api.POST("/notifications/:id/ack", func(c *gin.Context) {
		err := deps.analytics.AcknowledgeNotification(c.Request.Context(), c.Param("id"))
		if err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				respondError(c, errors.NewNotFoundError("notification", c.Param("id")))
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":           c.Param("id"),
			"acknowledged": true,
		})
	})

	api.PUT("/projects", func(c *gin.Context) {
		var record store.ProjectRecord
		if err := c.ShouldBindJSON(&record); err != nil {
			respondError(c, errors.NewValidationError("invalid project payload: "+err.Error()))
			return
		}

		if err := deps.analytics.UpsertProject(c.Request.Context(), &record); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, record)
	})

	api.PUT("/developers", func(c *gin.Context) {
		var record store.DeveloperRecord
		if err := c.ShouldBindJSON(&record); err != nil {
			respondError(c, errors.NewValidationError("invalid developer payload: "+err.Error()))
			return
		}

		if err := deps.analytics.UpsertDeveloper(c.Request.Context(), &record); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, record)
	})

	api.POST("/analytics/compute", deps.limiter.ComputeRateLimitMiddleware(), func(c *gin.Context) {
		summary, err := deps.analytics.Recompute(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, summary)
	})

	return r
}

// respondError converts any error into a structured response. Validation
// failures from the scoring core map to 400, everything else keeps the
// category the error carries.
func respondError(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
