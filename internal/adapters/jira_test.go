package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statsNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestAggregateIssues(t *testing.T) {
	assignee := func(id string) *jiraAssignee { return &jiraAssignee{AccountID: id} }

	issues := []jiraIssue{
		{Key: "PP-1", Fields: jiraFields{Status: jiraStatus{Name: "Done"}, Assignee: assignee("dev-1"), DueDate: "2025-06-01", ResolutionDate: "2025-06-03T10:00:00.000+0000"}},
		{Key: "PP-2", Fields: jiraFields{Status: jiraStatus{Name: "In Progress"}, Assignee: assignee("dev-1"), DueDate: "2025-06-10"}},
		{Key: "PP-3", Fields: jiraFields{Status: jiraStatus{Name: "Reopened"}, Assignee: assignee("dev-1")}},
		{Key: "PP-4", Fields: jiraFields{Status: jiraStatus{Name: "To Do"}, Assignee: assignee("dev-2"), DueDate: "2025-07-01"}},
		{Key: "PP-5", Fields: jiraFields{Status: jiraStatus{Name: "To Do"}, Assignee: nil}},
	}

	stats := aggregateIssues(issues, statsNow)

	require.Contains(t, stats, "dev-1")
	require.Contains(t, stats, "dev-2")
	assert.Len(t, stats, 2, "unassigned issues are dropped")

	dev1 := stats["dev-1"]
	assert.Equal(t, 3, dev1.Total)
	assert.Equal(t, 1, dev1.Completed)
	assert.Equal(t, 1, dev1.Overdue, "PP-2 is past due and not completed")
	assert.Equal(t, 1, dev1.Reopened)
	assert.InDelta(t, 2.4, dev1.AvgDelayDays, 0.1, "PP-1 resolved ~2.4 days after due")

	dev2 := stats["dev-2"]
	assert.Equal(t, 1, dev2.Total)
	assert.Equal(t, 0, dev2.Overdue, "future due date is not overdue")
	assert.Equal(t, 0.0, dev2.AvgDelayDays)
}

func TestAggregateIssuesCompletedNeverOverdue(t *testing.T) {
	issues := []jiraIssue{
		{Key: "PP-9", Fields: jiraFields{
			Status:   jiraStatus{Name: "Closed"},
			Assignee: &jiraAssignee{AccountID: "dev-3"},
			DueDate:  "2025-06-01",
		}},
	}

	stats := aggregateIssues(issues, statsNow)
	assert.Equal(t, 0, stats["dev-3"].Overdue)
	assert.Equal(t, 1, stats["dev-3"].Completed)
}

func TestJiraAdapterFetchProjectTaskStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("jql"), "project = PP")
		assert.Equal(t, "Bearer jira_token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 2,
			"issues": [
				{"key": "PP-1", "fields": {"status": {"name": "Done"}, "assignee": {"accountId": "dev-1"}}},
				{"key": "PP-2", "fields": {"status": {"name": "To Do"}, "assignee": {"accountId": "dev-1"}, "duedate": "2025-06-01"}}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewJiraAdapter(server.URL, "jira_token")
	defer adapter.Close()

	stats, err := adapter.FetchProjectTaskStats(context.Background(), "PP", statsNow)
	require.NoError(t, err)

	require.Contains(t, stats, "dev-1")
	assert.Equal(t, 2, stats["dev-1"].Total)
	assert.Equal(t, 1, stats["dev-1"].Completed)
	assert.Equal(t, 1, stats["dev-1"].Overdue)
}

func TestJiraAdapterServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessages": ["Unauthorized"]}`))
	}))
	defer server.Close()

	adapter := NewJiraAdapter(server.URL, "bad")
	defer adapter.Close()

	_, err := adapter.FetchProjectTaskStats(context.Background(), "PP", statsNow)
	assert.Error(t, err)
}
