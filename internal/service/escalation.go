package service

import (
	"context"
	"fmt"

	"github.com/projectpulse/pulse-server/internal/monitoring"
	"github.com/projectpulse/pulse-server/internal/scoring"
	"github.com/projectpulse/pulse-server/internal/store"
)

// Escalation cutoffs per chain stage. A developer burnout index above the
// developer cutoff notifies the team leader; a project risk above the team
// cutoff notifies the manager; a portfolio average above the manager cutoff
// notifies HR.
const (
	developerEscalationCutoff = 60
	teamEscalationCutoff      = 65
	managerEscalationCutoff   = 70
)

// Escalator routes threshold breaches up the role chain and persists the
// resulting notifications.
type Escalator struct {
	repo    *store.Repository
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewEscalator creates an escalator backed by the given repository
func NewEscalator(repo *store.Repository, logger *monitoring.Logger, metrics *monitoring.Metrics) *Escalator {
	return &Escalator{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

// Escalate walks one compute result through the escalation chain and
// persists a notification per breach. It returns the number of
// notifications created.
func (e *Escalator) Escalate(ctx context.Context, result scoring.Result) (int, error) {
	created := 0

	for _, dev := range result.Developers {
		if dev.Burnout.Score <= developerEscalationCutoff {
			continue
		}

		n := store.NewNotification(
			string(scoring.RoleTeamLeader),
			store.EntityTypeDeveloper,
			dev.Snapshot.ID,
			string(scoring.InsightBurnoutWarning),
			string(scoring.SeverityHigh),
			fmt.Sprintf("Burnout index %d for %s needs a workload review", dev.Burnout.Score, dev.Snapshot.Name),
			scoring.ActionScheduleCheckin,
			dev.Burnout.Score,
		)
		if err := e.repo.InsertNotification(ctx, n); err != nil {
			return created, fmt.Errorf("failed to persist developer escalation: %w", err)
		}
		e.logger.EscalationLogger(dev.Snapshot.ID, string(scoring.RoleDeveloper), dev.Burnout.Score, 1)
		e.metrics.IncrementEscalation()
		created++
	}

	for _, proj := range result.Projects {
		if proj.Risk.Score <= teamEscalationCutoff {
			continue
		}

		n := store.NewNotification(
			string(scoring.RoleManager),
			store.EntityTypeProject,
			proj.Snapshot.ID,
			string(scoring.InsightRiskAlert),
			string(scoring.SeverityHigh),
			fmt.Sprintf("Project %s risk score %d needs manager attention", proj.Snapshot.Name, proj.Risk.Score),
			scoring.ActionReviewProject,
			proj.Risk.Score,
		)
		if err := e.repo.InsertNotification(ctx, n); err != nil {
			return created, fmt.Errorf("failed to persist project escalation: %w", err)
		}
		e.logger.EscalationLogger(proj.Snapshot.ID, string(scoring.RoleTeamLeader), proj.Risk.Score, 1)
		e.metrics.IncrementEscalation()
		created++
	}

	if result.Summary.TotalProjects > 0 && result.Summary.AvgRiskScore > managerEscalationCutoff {
		n := store.NewNotification(
			string(scoring.RoleHR),
			store.EntityTypeProject,
			"portfolio",
			string(scoring.InsightPortfolioHealth),
			string(scoring.SeverityHigh),
			fmt.Sprintf("Portfolio average risk %d crossed the organization cutoff", result.Summary.AvgRiskScore),
			scoring.ActionReviewWorkload,
			result.Summary.AvgRiskScore,
		)
		if err := e.repo.InsertNotification(ctx, n); err != nil {
			return created, fmt.Errorf("failed to persist portfolio escalation: %w", err)
		}
		e.logger.EscalationLogger("portfolio", string(scoring.RoleManager), result.Summary.AvgRiskScore, 1)
		e.metrics.IncrementEscalation()
		created++
	}

	return created, nil
}
