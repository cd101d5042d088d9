package scoring

import (
	"math"
	"time"
)

// Priority of a recommendation.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Recommendation is a suggested follow-up derived from a score. Transient,
// rebuilt on every compute cycle.
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
}

// RecommendProject derives follow-ups for one scored project.
func RecommendProject(p ScoredProject, now time.Time) []Recommendation {
	var recs []Recommendation

	if p.Risk.Score > 70 {
		recs = append(recs, Recommendation{
			Type:        "high_risk",
			Priority:    PriorityCritical,
			Title:       "Immediate Risk Mitigation Required",
			Description: "This project has a high risk score. Consider reassigning resources or adjusting deadlines.",
			Action:      ActionReviewProject,
		})
	}

	if p.Snapshot.Deadline != nil {
		daysUntil := p.Snapshot.Deadline.Sub(now).Hours() / 24
		if daysUntil > 0 && daysUntil < 7 {
			recs = append(recs, Recommendation{
				Type:        "deadline",
				Priority:    PriorityHigh,
				Title:       "Deadline Approaching",
				Description: "Project deadline is less than a week away. Review progress and resource allocation.",
				Action:      ActionReviewTimeline,
			})
		}
	}

	if p.Snapshot.TeamMemberCount < 2 {
		recs = append(recs, Recommendation{
			Type:        "team_size",
			Priority:    PriorityMedium,
			Title:       "Consider Team Expansion",
			Description: "Project has minimal team coverage. Consider adding more team members to reduce risk.",
			Action:      ActionAssignTeam,
		})
	}

	return recs
}

// RecommendDeveloper derives follow-ups for one scored developer. Nothing is
// recommended below a burnout index of 50; above it, the dominant signals
// drive the suggestions.
func RecommendDeveloper(d ScoredDeveloper) []Recommendation {
	if d.Burnout.Score <= 50 {
		return nil
	}

	var recs []Recommendation
	signals := d.Burnout.Features

	if signals[SignalOverdueRatio] > 50 {
		recs = append(recs, Recommendation{
			Type:        "workload",
			Priority:    PriorityHigh,
			Title:       "Redistribute Tasks",
			Description: "More than half of assigned tasks are overdue. Redistribute work across the team.",
			Action:      ActionReviewWorkload,
		})
	}
	if signals[SignalAvgDelay] > 30 {
		recs = append(recs, Recommendation{
			Type:        "estimation",
			Priority:    PriorityMedium,
			Title:       "Review Estimation Accuracy",
			Description: "Tasks are consistently slipping past their estimates. Review planning assumptions.",
			Action:      ActionReviewTimeline,
		})
	}
	if signals[SignalReopenedRatio] > 20 {
		recs = append(recs, Recommendation{
			Type:        "quality",
			Priority:    PriorityMedium,
			Title:       "Review Rework Rate",
			Description: "A notable share of closed tasks is being reopened. Check review coverage and scope clarity.",
			Action:      ActionReprioritizeTasks,
		})
	}
	if math.Round(signals[SignalCommitDeviation]) > 50 {
		recs = append(recs, Recommendation{
			Type:        "cadence",
			Priority:    PriorityMedium,
			Title:       "Check In on Work Cadence",
			Description: "Commit cadence deviates strongly from the team baseline. A 1-on-1 check-in is recommended.",
			Action:      ActionScheduleCheckin,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Type:        "burnout",
			Priority:    PriorityHigh,
			Title:       "Schedule Check-In",
			Description: "Burnout index is elevated. Schedule a 1-on-1 check-in with the team lead.",
			Action:      ActionScheduleCheckin,
		})
	}
	return recs
}
