package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectpulse/pulse-server/internal/adapters"
	"github.com/projectpulse/pulse-server/internal/cache"
	"github.com/projectpulse/pulse-server/internal/monitoring"
	"github.com/projectpulse/pulse-server/internal/scoring"
	"github.com/projectpulse/pulse-server/internal/store"
)

func newTestService(t *testing.T) *AnalyticsService {
	t.Helper()

	db, err := store.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	payloadCache := cache.New(time.Minute)
	t.Cleanup(payloadCache.Close)

	return NewAnalyticsService(Config{
		Repo:    store.NewRepository(db),
		Cache:   payloadCache,
		Logger:  monitoring.NewLogger(),
		Metrics: monitoring.NewMetrics(),
	})
}

// riskyProject scores 83 (critical): 3-day deadline, solo team, keyword-heavy
// description, repo and tracker wired up.
func riskyProject() *store.ProjectRecord {
	deadline := time.Now().UTC().Add(3 * 24 * time.Hour)
	return &store.ProjectRecord{
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
}

// strainedDeveloper scores a burnout index above 60: most tasks overdue and
// chronic delivery delay.
func strainedDeveloper() *store.DeveloperRecord {
	return &store.DeveloperRecord{
		ID:             "dev-strained",
		Name:           "Jordan",
		Role:           "developer",
		TotalTasks:     10,
		CompletedTasks: 2,
		OverdueTasks:   8,
		AvgDelayDays:   10,
		ReopenedCount:  5,
	}
}

func TestDashboardComputesAndCaches(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, riskyProject()))
	require.NoError(t, svc.UpsertDeveloper(ctx, strainedDeveloper()))

	dash, err := svc.Dashboard(ctx, scoring.RoleManager)
	require.NoError(t, err)

	assert.Equal(t, scoring.RoleManager, dash.Role)
	assert.Equal(t, scoring.ThresholdProfile{Warning: 50, Danger: 70}, dash.Thresholds)
	require.Len(t, dash.Projects, 1)
	require.Len(t, dash.Developers, 1)

	project := dash.Projects[0]
	assert.Equal(t, 83, project.Risk.Score)
	assert.Equal(t, scoring.LevelCritical, project.Risk.Level)
	assert.Less(t, project.CompletionProbability, 10, "critical risk forecasts near-zero completion odds")
	assert.NotEmpty(t, project.Recommendations)

	assert.Greater(t, dash.Developers[0].Burnout.Score, 60)
	assert.NotEmpty(t, dash.Insights)
	assert.Len(t, dash.ProjectRanking, 1)

	// Second read is served from cache: same payload pointer
	again, err := svc.Dashboard(ctx, scoring.RoleManager)
	require.NoError(t, err)
	assert.Same(t, dash, again)
}

func TestDashboardRoleScopedCaching(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, riskyProject()))

	manager, err := svc.Dashboard(ctx, scoring.RoleManager)
	require.NoError(t, err)
	hr, err := svc.Dashboard(ctx, scoring.RoleHR)
	require.NoError(t, err)

	assert.NotSame(t, manager, hr)
	assert.Equal(t, scoring.ThresholdProfile{Warning: 60, Danger: 75}, hr.Thresholds)
	// Same snapshots, same scores regardless of role
	assert.Equal(t, manager.Projects[0].Risk.Score, hr.Projects[0].Risk.Score)
}

func TestUpsertInvalidatesCache(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, riskyProject()))

	first, err := svc.Dashboard(ctx, scoring.RoleManager)
	require.NoError(t, err)

	calm := &store.ProjectRecord{
		ID:              "proj-site",
		Name:            "Website refresh",
		Description:     "Update the marketing site",
		Status:          "on_track",
		TeamMemberCount: 5,
	}
	require.NoError(t, svc.UpsertProject(ctx, calm))

	second, err := svc.Dashboard(ctx, scoring.RoleManager)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, second.Projects, 2)
}

func TestUpsertRejectsInvalidSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.UpsertProject(ctx, &store.ProjectRecord{
		ID:              "proj-bad",
		Name:            "Broken",
		Status:          "active",
		TeamMemberCount: -3,
	})
	require.Error(t, err)
	assert.True(t, scoring.IsValidationError(err))

	got, err := svc.ProjectRisk(ctx, "proj-bad")
	require.NoError(t, err)
	assert.Nil(t, got, "rejected snapshot must not be persisted")
}

func TestRecomputePersistsScoresAndEscalates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, riskyProject()))
	require.NoError(t, svc.UpsertDeveloper(ctx, strainedDeveloper()))

	summary, err := svc.Recompute(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Projects)
	assert.Equal(t, 1, summary.Developers)
	// Breaches: strained developer -> team leader, critical project ->
	// manager, portfolio average 83 -> HR
	assert.Equal(t, 3, summary.Escalations)

	history, err := svc.ScoreHistory(ctx, "proj-rebuild", store.ScoreKindRisk, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 83, history[0].Score)

	burnoutHistory, err := svc.ScoreHistory(ctx, "dev-strained", store.ScoreKindBurnout, 10)
	require.NoError(t, err)
	require.Len(t, burnoutHistory, 1)

	leaderInbox, err := svc.Notifications(ctx, scoring.RoleTeamLeader, 10)
	require.NoError(t, err)
	require.Len(t, leaderInbox, 1)
	assert.Equal(t, "dev-strained", leaderInbox[0].SourceID)

	managerInbox, err := svc.Notifications(ctx, scoring.RoleManager, 10)
	require.NoError(t, err)
	require.Len(t, managerInbox, 1)
	assert.Equal(t, "proj-rebuild", managerInbox[0].SourceID)

	hrInbox, err := svc.Notifications(ctx, scoring.RoleHR, 10)
	require.NoError(t, err)
	require.Len(t, hrInbox, 1)
}

func TestRecomputeWithoutBreaches(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, &store.ProjectRecord{
		ID:              "proj-site",
		Name:            "Website refresh",
		Description:     "Update the marketing site",
		Status:          "on_track",
		TeamMemberCount: 5,
	}))

	summary, err := svc.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Escalations)

	managerInbox, err := svc.Notifications(ctx, scoring.RoleManager, 10)
	require.NoError(t, err)
	assert.Empty(t, managerInbox)
}

func TestProjectRiskOnDemand(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, riskyProject()))

	view, err := svc.ProjectRisk(ctx, "proj-rebuild")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 83, view.Risk.Score)

	missing, err := svc.ProjectRisk(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeveloperScoresOnDemand(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertDeveloper(ctx, strainedDeveloper()))

	view, err := svc.DeveloperScores(ctx, "dev-strained")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Greater(t, view.Burnout.Score, 60)
	assert.NotEmpty(t, view.Recommendations)
}

func TestRecomputeSyncsCommitStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/acme/proj-rebuild/contributors":
			w.Write([]byte(`[
				{"login": "dev-strained", "contributions": 30},
				{"login": "ghost", "contributions": 10}
			]`))
		case "/repos/acme/proj-rebuild/stats/commit_activity":
			// Oldest-first weekly series: weekly = 8, monthly = 4+4+4+8 = 20
			w.Write([]byte(`[
				{"total": 5, "week": 1717286400, "days": [0,1,1,0,1,1,1]},
				{"total": 4, "week": 1717891200, "days": [1,1,1,1,0,0,0]},
				{"total": 4, "week": 1718496000, "days": [0,1,1,1,1,0,0]},
				{"total": 4, "week": 1719100800, "days": [1,1,1,1,0,0,0]},
				{"total": 8, "week": 1719705600, "days": [2,2,1,1,1,1,0]}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	db, err := store.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	payloadCache := cache.New(time.Minute)
	t.Cleanup(payloadCache.Close)

	github := adapters.NewGitHubAdapter(server.URL, "")
	t.Cleanup(func() { github.Close() })

	svc := NewAnalyticsService(Config{
		Repo:      store.NewRepository(db),
		Cache:     payloadCache,
		Logger:    monitoring.NewLogger(),
		Metrics:   monitoring.NewMetrics(),
		GitHub:    github,
		RepoOwner: "acme",
	})
	ctx := context.Background()

	require.NoError(t, svc.UpsertProject(ctx, riskyProject()))
	require.NoError(t, svc.UpsertDeveloper(ctx, strainedDeveloper()))

	summary, err := svc.Recompute(ctx)
	require.NoError(t, err)
	// "ghost" has no developer record, so only one row updates.
	assert.Equal(t, 1, summary.SyncedRecords)

	dev, err := svc.repo.GetDeveloper(ctx, "dev-strained")
	require.NoError(t, err)
	require.NotNil(t, dev)
	assert.Equal(t, 30, dev.TotalCommits)
	// Contribution share is 30/40; weekly and monthly follow that share.
	assert.Equal(t, 6, dev.WeeklyCommits)
	assert.Equal(t, 15, dev.MonthlyCommits)
}
