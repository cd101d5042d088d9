package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/projectpulse/pulse-server/internal/resilience"
)

// TaskStats aggregates tracker issue state for one assignee.
type TaskStats struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	Overdue      int     `json:"overdue"`
	AvgDelayDays float64 `json:"avg_delay_days"`
	Reopened     int     `json:"reopened"`
}

// jiraSearchResponse mirrors the tracker search API payload.
type jiraSearchResponse struct {
	Total  int         `json:"total"`
	Issues []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string     `json:"key"`
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Status         jiraStatus    `json:"status"`
	Assignee       *jiraAssignee `json:"assignee"`
	DueDate        string        `json:"duedate"`
	ResolutionDate string        `json:"resolutiondate"`
}

type jiraStatus struct {
	Name string `json:"name"`
}

type jiraAssignee struct {
	AccountID string `json:"accountId"`
}

// JiraAdapter fetches issue data from a Jira-compatible tracker API
type JiraAdapter struct {
	baseURL string
	token   string
	pool    *resilience.HTTPPool
}

// NewJiraAdapter creates a new tracker adapter with connection pooling
func NewJiraAdapter(baseURL, token string) *JiraAdapter {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	return &JiraAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		pool:    resilience.NewHTTPPool(10, 30*time.Second, cb),
	}
}

// FetchProjectTaskStats fetches all issues for a project and aggregates
// task state per assignee account. The returned map is keyed by
// assignee account ID; unassigned issues are dropped.
func (j *JiraAdapter) FetchProjectTaskStats(ctx context.Context, projectKey string, now time.Time) (map[string]TaskStats, error) {
	jql := fmt.Sprintf("project = %s", projectKey)
	searchURL := fmt.Sprintf("%s/rest/api/2/search?jql=%s&maxResults=500", j.baseURL, url.QueryEscape(jql))

	resp, err := j.makeRequest(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracker issues: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tracker API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var search jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode tracker issues: %w", err)
	}

	return aggregateIssues(search.Issues, now), nil
}

// aggregateIssues collapses raw issues into per-assignee task stats.
func aggregateIssues(issues []jiraIssue, now time.Time) map[string]TaskStats {
	type delayAcc struct {
		totalDays float64
		count     int
	}

	stats := make(map[string]TaskStats)
	delays := make(map[string]delayAcc)

	for _, issue := range issues {
		if issue.Fields.Assignee == nil {
			continue
		}
		assignee := issue.Fields.Assignee.AccountID

		s := stats[assignee]
		s.Total++

		statusName := strings.ToLower(issue.Fields.Status.Name)
		completed := statusName == "done" || statusName == "closed" || statusName == "resolved"
		if completed {
			s.Completed++
		}
		if statusName == "reopened" {
			s.Reopened++
		}

		dueDate, hasDue := parseJiraDate(issue.Fields.DueDate)

		if hasDue && !completed && now.After(dueDate) {
			s.Overdue++
		}

		// Completed late: accumulate resolution slip against the due date
		if completed && hasDue && issue.Fields.ResolutionDate != "" {
			if resolved, ok := parseJiraTimestamp(issue.Fields.ResolutionDate); ok && resolved.After(dueDate) {
				acc := delays[assignee]
				acc.totalDays += resolved.Sub(dueDate).Hours() / 24
				acc.count++
				delays[assignee] = acc
			}
		}

		stats[assignee] = s
	}

	for assignee, acc := range delays {
		if acc.count > 0 {
			s := stats[assignee]
			s.AvgDelayDays = acc.totalDays / float64(acc.count)
			stats[assignee] = s
		}
	}

	return stats
}

func parseJiraDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseJiraTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// makeRequest makes an HTTP request to the tracker API using the pooled client
func (j *JiraAdapter) makeRequest(ctx context.Context, url string) (*http.Response, error) {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": "ProjectPulse/1.0",
	}

	if j.token != "" {
		headers["Authorization"] = "Bearer " + j.token
	}

	return j.pool.DoRequest(ctx, http.MethodGet, url, headers)
}

// OnCircuitStateChange registers a callback for breaker transitions.
func (j *JiraAdapter) OnCircuitStateChange(fn resilience.StateChangeFunc) {
	j.pool.OnCircuitStateChange(fn)
}

// CircuitState exposes the breaker state for health reporting
func (j *JiraAdapter) CircuitState() resilience.CircuitBreakerState {
	return j.pool.CircuitState()
}

// Close closes the connection pool
func (j *JiraAdapter) Close() error {
	return j.pool.Close()
}
