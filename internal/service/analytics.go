package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/projectpulse/pulse-server/internal/adapters"
	"github.com/projectpulse/pulse-server/internal/cache"
	"github.com/projectpulse/pulse-server/internal/monitoring"
	"github.com/projectpulse/pulse-server/internal/scoring"
	"github.com/projectpulse/pulse-server/internal/store"
)

// ProjectView is one project on a dashboard: the scored snapshot plus the
// derived forecast and follow-ups.
type ProjectView struct {
	scoring.ScoredProject
	CompletionProbability int                      `json:"completion_probability"`
	Recommendations       []scoring.Recommendation `json:"recommendations,omitempty"`
}

// DeveloperView is one developer on a dashboard.
type DeveloperView struct {
	scoring.ScoredDeveloper
	Recommendations []scoring.Recommendation `json:"recommendations,omitempty"`
}

// Dashboard is the full role-scoped analytics payload.
type Dashboard struct {
	Role             scoring.Role               `json:"role"`
	Thresholds       scoring.ThresholdProfile   `json:"thresholds"`
	Summary          scoring.PortfolioMetrics   `json:"summary"`
	RiskDistribution []scoring.RiskDistribution `json:"risk_distribution"`
	Utilization      int                        `json:"team_utilization"`
	Projects         []ProjectView              `json:"projects"`
	Developers       []DeveloperView            `json:"developers"`
	ProjectRanking   []scoring.RankedEntity     `json:"project_ranking"`
	TeamPerformance  []scoring.RankedEntity     `json:"team_performance"`
	Insights         []scoring.Insight          `json:"insights"`
	ComputedAt       time.Time                  `json:"computed_at"`
}

// ComputeSummary reports one explicit recompute cycle.
type ComputeSummary struct {
	Projects      int           `json:"projects"`
	Developers    int           `json:"developers"`
	Insights      int           `json:"insights"`
	Escalations   int           `json:"escalations"`
	SyncedRecords int           `json:"synced_records"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"duration_ms"`
	ComputedAt    time.Time     `json:"computed_at"`
}

// AnalyticsService orchestrates sync, scoring, caching and escalation.
type AnalyticsService struct {
	repo      *store.Repository
	pipeline  *scoring.Pipeline
	cache     *cache.Cache
	escalator *Escalator
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics

	// Optional external sources; nil when unconfigured.
	jira      *adapters.JiraAdapter
	github    *adapters.GitHubAdapter
	repoOwner string

	computeMu sync.Mutex
}

// Config carries the service collaborators.
type Config struct {
	Repo      *store.Repository
	Cache     *cache.Cache
	Logger    *monitoring.Logger
	Metrics   *monitoring.Metrics
	Jira      *adapters.JiraAdapter
	GitHub    *adapters.GitHubAdapter
	RepoOwner string
}

// NewAnalyticsService creates the orchestrator
func NewAnalyticsService(cfg Config) *AnalyticsService {
	return &AnalyticsService{
		repo:      cfg.Repo,
		pipeline:  scoring.NewPipeline(),
		cache:     cfg.Cache,
		escalator: NewEscalator(cfg.Repo, cfg.Logger, cfg.Metrics),
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		jira:      cfg.Jira,
		github:    cfg.GitHub,
		repoOwner: cfg.RepoOwner,
	}
}

// Dashboard returns the role-scoped analytics payload, serving from cache
// when a fresh copy exists. A failed compute never evicts the last good
// payload.
func (s *AnalyticsService) Dashboard(ctx context.Context, role scoring.Role) (*Dashboard, error) {
	key := string(role)

	if cached, found := s.cache.Get(key); found {
		s.metrics.IncrementCacheHit()
		s.logger.CacheLogger("get", key, true, s.cache.Size())
		if dash, ok := cached.(*Dashboard); ok {
			return dash, nil
		}
	}
	s.metrics.IncrementCacheMiss()
	s.logger.CacheLogger("get", key, false, s.cache.Size())

	start := time.Now()
	dash, err := s.compute(ctx, role, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, dash)
	s.metrics.IncrementComputeRun()
	s.logger.ComputeLogger(key, len(dash.Projects), len(dash.Developers), len(dash.Insights), time.Since(start), false)

	return dash, nil
}

// compute loads snapshots from the store and runs the scoring pipeline.
func (s *AnalyticsService) compute(ctx context.Context, role scoring.Role, now time.Time) (*Dashboard, error) {
	projects, developers, err := s.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	profile := scoring.ProfileFor(role)
	result, err := s.pipeline.Run(projects, developers, profile, now)
	if err != nil {
		return nil, err
	}

	return s.buildDashboard(role, profile, result, now), nil
}

func (s *AnalyticsService) loadSnapshots(ctx context.Context) ([]scoring.ProjectSnapshot, []scoring.DeveloperSnapshot, error) {
	projectRecords, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, nil, err
	}
	developerRecords, err := s.repo.ListDevelopers(ctx)
	if err != nil {
		return nil, nil, err
	}

	projects := make([]scoring.ProjectSnapshot, 0, len(projectRecords))
	for i := range projectRecords {
		projects = append(projects, projectRecords[i].Snapshot())
	}
	developers := make([]scoring.DeveloperSnapshot, 0, len(developerRecords))
	for i := range developerRecords {
		developers = append(developers, developerRecords[i].Snapshot())
	}

	return projects, developers, nil
}

func (s *AnalyticsService) buildDashboard(role scoring.Role, profile scoring.ThresholdProfile, result scoring.Result, now time.Time) *Dashboard {
	projects := make([]ProjectView, 0, len(result.Projects))
	for _, p := range result.Projects {
		projects = append(projects, ProjectView{
			ScoredProject:         p,
			CompletionProbability: scoring.CompletionProbability(p.Risk.Score),
			Recommendations:       scoring.RecommendProject(p, now),
		})
	}

	developers := make([]DeveloperView, 0, len(result.Developers))
	for _, d := range result.Developers {
		developers = append(developers, DeveloperView{
			ScoredDeveloper: d,
			Recommendations: scoring.RecommendDeveloper(d),
		})
	}

	return &Dashboard{
		Role:             role,
		Thresholds:       profile,
		Summary:          result.Summary,
		RiskDistribution: result.RiskDist,
		Utilization:      scoring.Utilization(result.Projects),
		Projects:         projects,
		Developers:       developers,
		ProjectRanking:   scoring.RankProjects(result.Projects),
		TeamPerformance:  scoring.RankDevelopers(result.Developers),
		Insights:         result.Insights,
		ComputedAt:       now,
	}
}

// Recompute runs a full cycle: sync external sources, rescore everything,
// persist score history, escalate breaches and invalidate cached dashboards.
// Only one recompute runs at a time.
func (s *AnalyticsService) Recompute(ctx context.Context) (*ComputeSummary, error) {
	s.computeMu.Lock()
	defer s.computeMu.Unlock()

	start := time.Now()
	now := start.UTC()

	synced := s.syncExternal(ctx, now)

	projects, developers, err := s.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	// Scores are role-independent; the manager profile only shapes the
	// insight set recorded for this cycle.
	result, err := s.pipeline.Run(projects, developers, scoring.ProfileFor(scoring.RoleManager), now)
	if err != nil {
		return nil, err
	}

	if err := s.persistScores(ctx, result, now); err != nil {
		return nil, err
	}

	escalations, err := s.escalator.Escalate(ctx, result)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAll()
	s.metrics.IncrementComputeRun()

	duration := time.Since(start)
	s.logger.ComputeLogger("all", len(result.Projects), len(result.Developers), len(result.Insights), duration, false)

	return &ComputeSummary{
		Projects:      len(result.Projects),
		Developers:    len(result.Developers),
		Insights:      len(result.Insights),
		Escalations:   escalations,
		SyncedRecords: synced,
		Duration:      duration,
		DurationMS:    duration.Milliseconds(),
		ComputedAt:    now,
	}, nil
}

// syncExternal refreshes developer activity from the configured tracker and
// VCS sources. Sync failures are logged and skipped; a compute cycle always
// proceeds on the data already in the store.
func (s *AnalyticsService) syncExternal(ctx context.Context, now time.Time) int {
	synced := 0

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		s.logger.SyncLogger("store", 0, 0, err)
		return 0
	}

	if s.jira != nil {
		for _, p := range projects {
			if !p.HasTrackerProject {
				continue
			}
			start := time.Now()
			stats, err := s.jira.FetchProjectTaskStats(ctx, p.ID, now)
			s.metrics.RecordSyncRequest("jira", err == nil)
			if err != nil {
				s.logger.SyncLogger("jira", 0, time.Since(start), err)
				continue
			}
			n := s.applyTaskStats(ctx, stats)
			synced += n
			s.logger.SyncLogger("jira", n, time.Since(start), nil)
		}
	}

	if s.github != nil && s.repoOwner != "" {
		for _, p := range projects {
			if !p.HasRepo {
				continue
			}
			start := time.Now()
			totals, err := s.github.FetchContributors(ctx, s.repoOwner, p.ID)
			s.metrics.RecordSyncRequest("github", err == nil)
			if err != nil {
				s.logger.SyncLogger("github", 0, time.Since(start), err)
				continue
			}
			activity, err := s.github.FetchCommitActivity(ctx, s.repoOwner, p.ID)
			s.metrics.RecordSyncRequest("github", err == nil)
			if err != nil {
				// Contribution totals still apply without the series.
				s.logger.SyncLogger("github", 0, time.Since(start), err)
				activity = nil
			}
			n := s.applyCommitStats(ctx, totals, activity)
			synced += n
			s.logger.SyncLogger("github", n, time.Since(start), nil)
		}
	}

	return synced
}

// applyTaskStats merges per-assignee tracker stats into developer rows.
// Assignee accounts with no matching developer are skipped.
func (s *AnalyticsService) applyTaskStats(ctx context.Context, stats map[string]adapters.TaskStats) int {
	applied := 0
	for accountID, st := range stats {
		dev, err := s.repo.GetDeveloper(ctx, accountID)
		if err != nil || dev == nil {
			continue
		}
		dev.TotalTasks = st.Total
		dev.CompletedTasks = st.Completed
		dev.OverdueTasks = st.Overdue
		dev.AvgDelayDays = st.AvgDelayDays
		dev.ReopenedCount = st.Reopened
		if err := s.repo.UpsertDeveloper(ctx, dev); err != nil {
			continue
		}
		applied++
	}
	return applied
}

// applyCommitStats merges per-login contribution counts into developer
// rows. When the repository's weekly commit series is available, the
// recent weekly and monthly counts are attributed to each contributor in
// proportion to their share of total contributions.
func (s *AnalyticsService) applyCommitStats(ctx context.Context, totals map[string]int, activity *adapters.CommitActivity) int {
	grandTotal := 0
	for _, n := range totals {
		grandTotal += n
	}

	applied := 0
	for login, total := range totals {
		dev, err := s.repo.GetDeveloper(ctx, login)
		if err != nil || dev == nil {
			continue
		}
		dev.TotalCommits = total
		if activity != nil && grandTotal > 0 {
			share := float64(total) / float64(grandTotal)
			dev.WeeklyCommits = int(math.Round(share * float64(activity.Weekly)))
			dev.MonthlyCommits = int(math.Round(share * float64(activity.Monthly)))
		}
		if err := s.repo.UpsertDeveloper(ctx, dev); err != nil {
			continue
		}
		applied++
	}
	return applied
}

// persistScores writes one score history row per entity and score kind.
func (s *AnalyticsService) persistScores(ctx context.Context, result scoring.Result, now time.Time) error {
	for _, p := range result.Projects {
		rec := store.NewScoreRecord(store.EntityTypeProject, p.Snapshot.ID, store.ScoreKindRisk, p.Risk.Score, string(p.Risk.Level), now)
		if err := s.repo.InsertScore(ctx, rec); err != nil {
			return fmt.Errorf("failed to persist project score: %w", err)
		}
	}
	for _, d := range result.Developers {
		burnout := store.NewScoreRecord(store.EntityTypeDeveloper, d.Snapshot.ID, store.ScoreKindBurnout, d.Burnout.Score, string(d.Burnout.Level), now)
		if err := s.repo.InsertScore(ctx, burnout); err != nil {
			return fmt.Errorf("failed to persist burnout score: %w", err)
		}
		perf := store.NewScoreRecord(store.EntityTypeDeveloper, d.Snapshot.ID, store.ScoreKindPerformance, d.Performance.Score, string(d.Performance.Level), now)
		if err := s.repo.InsertScore(ctx, perf); err != nil {
			return fmt.Errorf("failed to persist performance score: %w", err)
		}
	}
	return nil
}

// ProjectRisk scores one project on demand.
func (s *AnalyticsService) ProjectRisk(ctx context.Context, id string) (*ProjectView, error) {
	record, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	snap := record.Snapshot()

	result, err := s.pipeline.Run([]scoring.ProjectSnapshot{snap}, nil, scoring.ProfileFor(scoring.RoleManager), now)
	if err != nil {
		return nil, err
	}

	p := result.Projects[0]
	return &ProjectView{
		ScoredProject:         p,
		CompletionProbability: scoring.CompletionProbability(p.Risk.Score),
		Recommendations:       scoring.RecommendProject(p, now),
	}, nil
}

// DeveloperScores scores one developer on demand. The burnout commit
// baseline still comes from the whole team.
func (s *AnalyticsService) DeveloperScores(ctx context.Context, id string) (*DeveloperView, error) {
	record, err := s.repo.GetDeveloper(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	_, developers, err := s.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.pipeline.Run(nil, developers, scoring.ProfileFor(scoring.RoleManager), now)
	if err != nil {
		return nil, err
	}

	for _, d := range result.Developers {
		if d.Snapshot.ID == id {
			return &DeveloperView{
				ScoredDeveloper: d,
				Recommendations: scoring.RecommendDeveloper(d),
			}, nil
		}
	}

	return nil, nil
}

// UpsertProject validates and persists a project, then drops stale
// dashboards.
func (s *AnalyticsService) UpsertProject(ctx context.Context, record *store.ProjectRecord) error {
	if err := scoring.ValidateProject(record.Snapshot()); err != nil {
		return err
	}
	if err := s.repo.UpsertProject(ctx, record); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	return nil
}

// UpsertDeveloper validates and persists a developer, then drops stale
// dashboards.
func (s *AnalyticsService) UpsertDeveloper(ctx context.Context, record *store.DeveloperRecord) error {
	if err := scoring.ValidateDeveloper(record.Snapshot()); err != nil {
		return err
	}
	if err := s.repo.UpsertDeveloper(ctx, record); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	return nil
}

// ScoreHistory returns recent persisted scores for an entity.
func (s *AnalyticsService) ScoreHistory(ctx context.Context, entityID, kind string, limit int) ([]store.ScoreRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.repo.ScoreHistory(ctx, entityID, kind, limit)
}

// Notifications returns recent notifications for a role.
func (s *AnalyticsService) Notifications(ctx context.Context, role scoring.Role, limit int) ([]store.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListNotifications(ctx, string(role), limit)
}

// AcknowledgeNotification marks one notification as read.
func (s *AnalyticsService) AcknowledgeNotification(ctx context.Context, id string) error {
	return s.repo.AcknowledgeNotification(ctx, id)
}
