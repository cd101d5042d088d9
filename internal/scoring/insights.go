package scoring

import (
	"fmt"
	"math"
	"time"
)

// InsightType enumerates the generated alert/summary kinds.
type InsightType string

const (
	InsightRiskAlert       InsightType = "risk_alert"
	InsightBurnoutWarning  InsightType = "burnout_warning"
	InsightOverdueTasks    InsightType = "overdue_tasks"
	InsightPortfolioHealth InsightType = "portfolio_health"
	InsightDeadlineAlert   InsightType = "deadline_alert"
	InsightTeamWorkload    InsightType = "team_workload"
)

// Severity of an insight.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Recommended-action tags carried on insights and recommendations.
const (
	ActionReviewProject     = "review_project"
	ActionReviewTimeline    = "review_timeline"
	ActionAssignTeam        = "assign_team"
	ActionReviewWorkload    = "review_workload"
	ActionReprioritizeTasks = "reprioritize_tasks"
	ActionScheduleCheckin   = "schedule_checkin"
)

// InsightDetail names one entity backing an aggregate insight.
type InsightDetail struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Insight is a generated, human-readable alert or summary. Insights are
// transient: they are rebuilt on every compute cycle and never persisted by
// the scoring core.
type Insight struct {
	Type     InsightType     `json:"type"`
	Severity Severity        `json:"severity"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Value    int             `json:"value,omitempty"`
	Details  []InsightDetail `json:"details,omitempty"`
	Action   string          `json:"action,omitempty"`
}

// deadlineAlertWindowDays is the lookahead for the upcoming-deadline
// aggregate; past-due deadlines are excluded.
const deadlineAlertWindowDays = 14

// InsightGenerator scans scored entities against one role's threshold
// profile and emits alerts plus the standing portfolio aggregates. Callers
// must treat the result as a set; ordering is not part of the contract.
type InsightGenerator struct {
	profile ThresholdProfile
}

// NewInsightGenerator builds a generator for one threshold profile.
func NewInsightGenerator(profile ThresholdProfile) (*InsightGenerator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &InsightGenerator{profile: profile}, nil
}

// Generate produces the full insight set for one compute cycle: the standing
// portfolio aggregates, conditional deadline/overdue aggregates, and one
// alert per entity whose score crosses the profile (inclusive comparison;
// scores below warning stay silent).
func (g *InsightGenerator) Generate(projects []ScoredProject, developers []ScoredDeveloper, now time.Time) []Insight {
	insights := []Insight{
		g.portfolioHealth(projects),
		g.teamWorkload(projects),
	}

	if alert, ok := g.deadlineAlert(projects, now); ok {
		insights = append(insights, alert)
	}
	if alert, ok := g.overdueTasks(developers); ok {
		insights = append(insights, alert)
	}

	for _, p := range projects {
		if alert, ok := g.projectAlert(p); ok {
			insights = append(insights, alert)
		}
	}
	for _, d := range developers {
		if alert, ok := g.burnoutAlert(d); ok {
			insights = append(insights, alert)
		}
	}

	return insights
}

func (g *InsightGenerator) severityFor(state AlertState) (Severity, bool) {
	switch state {
	case AlertDanger:
		return SeverityHigh, true
	case AlertWarning:
		return SeverityMedium, true
	default:
		return "", false
	}
}

func (g *InsightGenerator) projectAlert(p ScoredProject) (Insight, bool) {
	severity, ok := g.severityFor(g.profile.Classify(p.Risk.Score))
	if !ok {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightRiskAlert,
		Severity: severity,
		Title:    fmt.Sprintf("Project at risk: %s", p.Snapshot.Name),
		Message:  fmt.Sprintf("Risk score %d crosses the %s threshold. Review resource allocation and deadlines.", p.Risk.Score, g.profile.Classify(p.Risk.Score)),
		Details:  []InsightDetail{{Name: p.Snapshot.Name, Score: p.Risk.Score}},
		Action:   ActionReviewProject,
	}, true
}

func (g *InsightGenerator) burnoutAlert(d ScoredDeveloper) (Insight, bool) {
	severity, ok := g.severityFor(g.profile.Classify(d.Burnout.Score))
	if !ok {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightBurnoutWarning,
		Severity: severity,
		Title:    fmt.Sprintf("Burnout signals: %s", d.Snapshot.Name),
		Message:  fmt.Sprintf("Burnout index %d crosses the %s threshold. Schedule a check-in and review workload distribution.", d.Burnout.Score, g.profile.Classify(d.Burnout.Score)),
		Details:  []InsightDetail{{Name: d.Snapshot.Name, Score: d.Burnout.Score}},
		Action:   ActionScheduleCheckin,
	}, true
}

func (g *InsightGenerator) portfolioHealth(projects []ScoredProject) Insight {
	avgRisk := averageRisk(projects)
	var description string
	switch {
	case avgRisk < 30:
		description = "Excellent"
	case avgRisk < 50:
		description = "Good"
	default:
		description = "Needs Attention"
	}
	return Insight{
		Type:     InsightPortfolioHealth,
		Severity: SeverityLow,
		Title:    "Portfolio Health",
		Message:  description,
		Value:    100 - int(math.Round(avgRisk)),
	}
}

func (g *InsightGenerator) teamWorkload(projects []ScoredProject) Insight {
	utilization := Utilization(projects)
	var status string
	switch {
	case utilization > 90:
		status = "Overloaded"
	case utilization > 70:
		status = "Optimal"
	default:
		status = "Underutilized"
	}
	severity := SeverityLow
	if utilization > 90 {
		severity = SeverityMedium
	}
	return Insight{
		Type:     InsightTeamWorkload,
		Severity: severity,
		Title:    "Team Utilization",
		Message:  status,
		Value:    utilization,
		Action:   ActionReviewWorkload,
	}
}

func (g *InsightGenerator) deadlineAlert(projects []ScoredProject, now time.Time) (Insight, bool) {
	count := 0
	details := make([]InsightDetail, 0, len(projects))
	for _, p := range projects {
		deadline := p.Snapshot.Deadline
		if deadline == nil {
			continue
		}
		daysUntil := deadline.Sub(now).Hours() / 24
		if daysUntil > 0 && daysUntil <= deadlineAlertWindowDays {
			count++
			details = append(details, InsightDetail{Name: p.Snapshot.Name, Score: p.Risk.Score})
		}
	}
	if count == 0 {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightDeadlineAlert,
		Severity: SeverityMedium,
		Title:    "Upcoming Deadlines",
		Message:  fmt.Sprintf("%d project(s) with deadlines in the next %d days", count, deadlineAlertWindowDays),
		Value:    count,
		Details:  details,
		Action:   ActionReviewTimeline,
	}, true
}

func (g *InsightGenerator) overdueTasks(developers []ScoredDeveloper) (Insight, bool) {
	overdue := 0
	for _, d := range developers {
		overdue += d.Snapshot.Tasks.Overdue
	}
	if overdue == 0 {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightOverdueTasks,
		Severity: SeverityMedium,
		Title:    fmt.Sprintf("%d overdue task(s)", overdue),
		Message:  "Review and reprioritize overdue tasks",
		Value:    overdue,
		Action:   ActionReprioritizeTasks,
	}, true
}

func averageRisk(projects []ScoredProject) float64 {
	if len(projects) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range projects {
		total += float64(p.Risk.Score)
	}
	return total / float64(len(projects))
}
