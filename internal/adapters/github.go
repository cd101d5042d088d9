package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/projectpulse/pulse-server/internal/resilience"
)

const defaultGitHubBaseURL = "https://api.github.com"

// CommitActivity aggregates commit counts for one repository over
// fixed windows, derived from the GitHub weekly activity stats.
type CommitActivity struct {
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
	Total   int `json:"total"`
}

// githubWeeklyActivity mirrors one element of the GitHub
// stats/commit_activity response.
type githubWeeklyActivity struct {
	Total int   `json:"total"`
	Week  int64 `json:"week"`
	Days  []int `json:"days"`
}

// githubContributor mirrors one element of the contributors response.
type githubContributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// GitHubAdapter fetches commit activity from the GitHub API
type GitHubAdapter struct {
	baseURL string
	token   string
	pool    *resilience.HTTPPool
}

// NewGitHubAdapter creates a new GitHub adapter with connection pooling.
// baseURL is overridable for tests; empty means the public API.
func NewGitHubAdapter(baseURL, token string) *GitHubAdapter {
	if baseURL == "" {
		baseURL = defaultGitHubBaseURL
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	return &GitHubAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		pool:    resilience.NewHTTPPool(10, 30*time.Second, cb),
	}
}

// FetchCommitActivity fetches the weekly commit series for a repository
// and collapses it into rolling weekly, monthly and total counts.
func (g *GitHubAdapter) FetchCommitActivity(ctx context.Context, owner, repo string) (*CommitActivity, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/stats/commit_activity", g.baseURL, owner, repo)

	resp, err := g.makeRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commit activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var weeks []githubWeeklyActivity
	if err := json.NewDecoder(resp.Body).Decode(&weeks); err != nil {
		return nil, fmt.Errorf("failed to decode commit activity: %w", err)
	}

	activity := &CommitActivity{}
	for i, week := range weeks {
		activity.Total += week.Total

		// The series is oldest-first; the last entry is the current week
		remaining := len(weeks) - i
		if remaining <= 4 {
			activity.Monthly += week.Total
		}
		if remaining == 1 {
			activity.Weekly = week.Total
		}
	}

	return activity, nil
}

// FetchContributors fetches per-login contribution totals for a repository
func (g *GitHubAdapter) FetchContributors(ctx context.Context, owner, repo string) (map[string]int, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contributors", g.baseURL, owner, repo)

	resp, err := g.makeRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contributors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var contributors []githubContributor
	if err := json.NewDecoder(resp.Body).Decode(&contributors); err != nil {
		return nil, fmt.Errorf("failed to decode contributors: %w", err)
	}

	totals := make(map[string]int, len(contributors))
	for _, c := range contributors {
		totals[c.Login] = c.Contributions
	}

	return totals, nil
}

// makeRequest makes an HTTP request to the GitHub API using the pooled client
func (g *GitHubAdapter) makeRequest(ctx context.Context, url string) (*http.Response, error) {
	headers := map[string]string{
		"Accept":     "application/vnd.github.v3+json",
		"User-Agent": "ProjectPulse/1.0",
	}

	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}

	return g.pool.DoRequest(ctx, http.MethodGet, url, headers)
}

// OnCircuitStateChange registers a callback for breaker transitions,
// typically used to feed metrics.
func (g *GitHubAdapter) OnCircuitStateChange(fn resilience.StateChangeFunc) {
	g.pool.OnCircuitStateChange(fn)
}

// CircuitState exposes the breaker state for health reporting
func (g *GitHubAdapter) CircuitState() resilience.CircuitBreakerState {
	return g.pool.CircuitState()
}

// Close closes the connection pool
func (g *GitHubAdapter) Close() error {
	return g.pool.Close()
}
