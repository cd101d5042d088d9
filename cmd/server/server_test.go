package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectpulse/pulse-server/internal/cache"
	"github.com/projectpulse/pulse-server/internal/monitoring"
	"github.com/projectpulse/pulse-server/internal/ratelimit"
	"github.com/projectpulse/pulse-server/internal/scoring"
	"github.com/projectpulse/pulse-server/internal/service"
	"github.com/projectpulse/pulse-server/internal/store"
)

func newTestRouter(t *testing.T, limiterConfig ratelimit.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	payloadCache := cache.New(time.Minute)
	t.Cleanup(payloadCache.Close)

	appLogger := monitoring.NewLogger()
	appMetrics := monitoring.NewMetrics()

	redisClient, err := ratelimit.NewRedisClient("", "", 0)
	require.NoError(t, err)
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)

	repo := store.NewRepository(db)
	analytics := service.NewAnalyticsService(service.Config{
		Repo:    repo,
		Cache:   payloadCache,
		Logger:  appLogger,
		Metrics: appMetrics,
	})

	return setupRouter(serverDeps{
		analytics: analytics,
		limiter:   limiter,
		metrics:   appMetrics,
		logger:    appLogger,
		db:        db,
		cache:     payloadCache,
	})
}

func openTestRouter(t *testing.T) *gin.Engine {
	return newTestRouter(t, ratelimit.Config{
		IPLimitPerMin:      10000,
		ComputeLimitPerMin: 10000,
		BurstMultiplier:    2,
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seedPortfolio(t *testing.T, r *gin.Engine) {
	t.Helper()

	deadline := time.Now().UTC().Add(3 * 24 * time.Hour)
	project := store.ProjectRecord{
		ID:                "proj-rebuild",
		Name:              "Platform rebuild",
		Description:       "microservices architecture migration",
		Status:            "at_risk",
		Deadline:          &deadline,
		TeamMemberCount:   1,
		HasRepo:           true,
		HasTrackerProject: true,
		CreatedAt:         time.Now().UTC().AddDate(0, -3, 0),
	}
	w := doJSON(t, r, "PUT", "/api/projects", project)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	developer := store.DeveloperRecord{
		ID:             "dev-strained",
		Name:           "Jordan",
		Role:           "developer",
		TotalTasks:     10,
		CompletedTasks: 2,
		OverdueTasks:   8,
		AvgDelayDays:   10,
		ReopenedCount:  5,
	}
	w = doJSON(t, r, "PUT", "/api/developers", developer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	r := openTestRouter(t)

	w := doJSON(t, r, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "metrics")
	assert.Contains(t, body, "database")
	assert.Contains(t, body, "cache")
	assert.Contains(t, body, "rate_limit")
}

func TestDashboardEndpoint(t *testing.T) {
	r := openTestRouter(t)
	seedPortfolio(t, r)

	w := doJSON(t, r, "GET", "/api/dashboard/manager", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var dash service.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))

	assert.Equal(t, scoring.RoleManager, dash.Role)
	assert.Equal(t, scoring.ThresholdProfile{Warning: 50, Danger: 70}, dash.Thresholds)
	require.Len(t, dash.Projects, 1)
	assert.Equal(t, 83, dash.Projects[0].Risk.Score)
	assert.Equal(t, scoring.LevelCritical, dash.Projects[0].Risk.Level)
	require.Len(t, dash.Developers, 1)
	assert.Greater(t, dash.Developers[0].Burnout.Score, 60)
}

func TestDashboardRejectsUnknownRole(t *testing.T) {
	r := openTestRouter(t)

	w := doJSON(t, r, "GET", "/api/dashboard/wizard", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectRiskNotFound(t *testing.T) {
	r := openTestRouter(t)

	w := doJSON(t, r, "GET", "/api/projects/ghost/risk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestRejectsInvalidProject(t *testing.T) {
	r := openTestRouter(t)

	w := doJSON(t, r, "PUT", "/api/projects", store.ProjectRecord{
		ID:              "proj-bad",
		Name:            "Bad",
		Status:          "active",
		TeamMemberCount: -3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestComputeEndpointPersistsHistory(t *testing.T) {
	r := openTestRouter(t)
	seedPortfolio(t, r)

	w := doJSON(t, r, "POST", "/api/analytics/compute", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary service.ComputeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Projects)
	assert.Equal(t, 1, summary.Developers)
	assert.Equal(t, 3, summary.Escalations)

	w = doJSON(t, r, "GET", "/api/scores/proj-rebuild/history?kind=risk", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		EntityID string              `json:"entity_id"`
		Kind     string              `json:"kind"`
		History  []store.ScoreRecord `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.History, 1)
	assert.Equal(t, 83, history.History[0].Score)

	w = doJSON(t, r, "GET", "/api/notifications/manager", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var inbox struct {
		Role          string               `json:"role"`
		Notifications []store.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "proj-rebuild", inbox.Notifications[0].SourceID)

	w = doJSON(t, r, "POST", "/api/notifications/"+inbox.Notifications[0].ID+"/ack", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScoreHistoryRejectsUnknownKind(t *testing.T) {
	r := openTestRouter(t)

	w := doJSON(t, r, "GET", "/api/scores/proj-rebuild/history?kind=vibes", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAckUnknownNotification(t *testing.T) {
	r := openTestRouter(t)

	w := doJSON(t, r, "POST", "/api/notifications/missing/ack", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComputeRateLimit(t *testing.T) {
	r := newTestRouter(t, ratelimit.Config{
		IPLimitPerMin:      10000,
		ComputeLimitPerMin: 2,
		BurstMultiplier:    1,
	})

	// Fallback limiter enforces a minimum burst of 5, so the sixth rapid
	// trigger is the first one rejected.
	var lastCode int
	for i := 0; i < 6; i++ {
		w := doJSON(t, r, "POST", "/api/analytics/compute", nil)
		lastCode = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
