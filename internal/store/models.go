package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/projectpulse/pulse-server/internal/scoring"
)

// ProjectRecord is a persisted project row.
type ProjectRecord struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Description       string     `json:"description" db:"description"`
	Status            string     `json:"status" db:"status"`
	Deadline          *time.Time `json:"deadline,omitempty" db:"deadline"`
	TeamMemberCount   int        `json:"team_member_count" db:"team_member_count"`
	HasRepo           bool       `json:"has_repo" db:"has_repo"`
	HasTrackerProject bool       `json:"has_tracker_project" db:"has_tracker_project"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Snapshot converts the record into a read-only scoring view.
func (p *ProjectRecord) Snapshot() scoring.ProjectSnapshot {
	return scoring.ProjectSnapshot{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Status:            scoring.ProjectStatus(p.Status),
		Deadline:          p.Deadline,
		TeamMemberCount:   p.TeamMemberCount,
		HasRepo:           p.HasRepo,
		HasTrackerProject: p.HasTrackerProject,
		CreatedAt:         p.CreatedAt,
	}
}

// DeveloperRecord is a persisted developer row with aggregated activity.
type DeveloperRecord struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Role           string    `json:"role" db:"role"`
	WeeklyCommits  int       `json:"weekly_commits" db:"weekly_commits"`
	MonthlyCommits int       `json:"monthly_commits" db:"monthly_commits"`
	TotalCommits   int       `json:"total_commits" db:"total_commits"`
	TotalTasks     int       `json:"total_tasks" db:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks" db:"completed_tasks"`
	OverdueTasks   int       `json:"overdue_tasks" db:"overdue_tasks"`
	AvgDelayDays   float64   `json:"avg_delay_days" db:"avg_delay_days"`
	ReopenedCount  int       `json:"reopened_count" db:"reopened_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Snapshot converts the record into a read-only scoring view.
func (d *DeveloperRecord) Snapshot() scoring.DeveloperSnapshot {
	return scoring.DeveloperSnapshot{
		ID:   d.ID,
		Name: d.Name,
		Role: scoring.Role(d.Role),
		Commits: scoring.CommitCounts{
			Weekly:  d.WeeklyCommits,
			Monthly: d.MonthlyCommits,
			Total:   d.TotalCommits,
		},
		Tasks: scoring.TaskCounts{
			Total:     d.TotalTasks,
			Completed: d.CompletedTasks,
			Overdue:   d.OverdueTasks,
		},
		AvgDelayDays:  d.AvgDelayDays,
		ReopenedCount: d.ReopenedCount,
	}
}

// ScoreRecord is one historical score observation for an entity.
type ScoreRecord struct {
	ID         string    `json:"id" db:"id"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Kind       string    `json:"kind" db:"kind"`
	Score      int       `json:"score" db:"score"`
	Level      string    `json:"level" db:"level"`
	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}

// Score kinds persisted in score_history.
const (
	ScoreKindRisk        = "risk"
	ScoreKindBurnout     = "burnout"
	ScoreKindPerformance = "performance"

	EntityTypeProject   = "project"
	EntityTypeDeveloper = "developer"
)

// Notification is a persisted escalation or insight delivery.
type Notification struct {
	ID            string    `json:"id" db:"id"`
	RecipientRole string    `json:"recipient_role" db:"recipient_role"`
	SourceType    string    `json:"source_type" db:"source_type"`
	SourceID      string    `json:"source_id" db:"source_id"`
	InsightType   string    `json:"insight_type" db:"insight_type"`
	Severity      string    `json:"severity" db:"severity"`
	Message       string    `json:"message" db:"message"`
	Action        string    `json:"action" db:"action"`
	Score         int       `json:"score" db:"score"`
	Acknowledged  bool      `json:"acknowledged" db:"acknowledged"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewNotification creates a notification with a generated ID.
func NewNotification(recipientRole, sourceType, sourceID, insightType, severity, message, action string, score int) *Notification {
	return &Notification{
		ID:            uuid.New().String(),
		RecipientRole: recipientRole,
		SourceType:    sourceType,
		SourceID:      sourceID,
		InsightType:   insightType,
		Severity:      severity,
		Message:       message,
		Action:        action,
		Score:         score,
		CreatedAt:     time.Now(),
	}
}

// NewScoreRecord creates a score history row with a generated ID.
func NewScoreRecord(entityType, entityID, kind string, score int, level string, computedAt time.Time) *ScoreRecord {
	return &ScoreRecord{
		ID:         uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		Kind:       kind,
		Score:      score,
		Level:      level,
		ComputedAt: computedAt,
	}
}
