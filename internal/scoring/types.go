package scoring

import "time"

// ProjectStatus is the lifecycle state of a project as reported by the store.
type ProjectStatus string

const (
	StatusPlanning  ProjectStatus = "planning"
	StatusActive    ProjectStatus = "active"
	StatusOnTrack   ProjectStatus = "on_track"
	StatusAtRisk    ProjectStatus = "at_risk"
	StatusDelayed   ProjectStatus = "delayed"
	StatusCompleted ProjectStatus = "completed"
	StatusCancelled ProjectStatus = "cancelled"
)

// ProjectSnapshot is a point-in-time, read-only view of a project. Scores are
// always recomputed from the snapshot fields; nothing is carried over between
// calls.
type ProjectSnapshot struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Status            ProjectStatus `json:"status"`
	Deadline          *time.Time    `json:"deadline,omitempty"`
	TeamMemberCount   int           `json:"team_member_count"`
	HasRepo           bool          `json:"has_repo"`
	HasTrackerProject bool          `json:"has_tracker_project"`
	CreatedAt         time.Time     `json:"created_at"`
}

// CommitCounts aggregates commit activity over fixed windows.
type CommitCounts struct {
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
	Total   int `json:"total"`
}

// TaskCounts aggregates task state for one developer.
type TaskCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// DeveloperSnapshot is a point-in-time, read-only view of a developer's
// activity.
type DeveloperSnapshot struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Role          Role         `json:"role"`
	Commits       CommitCounts `json:"commits"`
	Tasks         TaskCounts   `json:"tasks"`
	AvgDelayDays  float64      `json:"avg_delay_days"`
	ReopenedCount int          `json:"reopened_count"`
}

// Level is a banded interpretation of a 0-100 score. Risk uses
// low/medium/high/critical, burnout uses low/moderate/critical and
// performance uses needs_improvement/average/good/excellent.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
	LevelModerate Level = "moderate"

	LevelExcellent        Level = "excellent"
	LevelGood             Level = "good"
	LevelAverage          Level = "average"
	LevelNeedsImprovement Level = "needs_improvement"
)

// ScoreResult is the immutable outcome of scoring one entity. It is created
// fresh on every request and never mutated after being returned.
type ScoreResult struct {
	EntityID   string             `json:"entity_id"`
	Score      int                `json:"score"`
	Level      Level              `json:"level"`
	Features   map[string]float64 `json:"contributing_features"`
	ComputedAt time.Time          `json:"computed_at"`
}

// ScoredProject pairs a project snapshot with its risk result.
type ScoredProject struct {
	Snapshot ProjectSnapshot `json:"snapshot"`
	Risk     ScoreResult     `json:"risk"`
}

// ScoredDeveloper pairs a developer snapshot with its burnout and
// performance results.
type ScoredDeveloper struct {
	Snapshot    DeveloperSnapshot `json:"snapshot"`
	Burnout     ScoreResult       `json:"burnout"`
	Performance ScoreResult       `json:"performance"`
}
