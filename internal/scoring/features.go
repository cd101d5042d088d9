package scoring

import (
	"math"
	"strings"
	"time"
)

// Feature names for the project risk scorer.
const (
	FeatureDeadline     = "deadline"
	FeatureTeamSize     = "team_size"
	FeatureComplexity   = "complexity"
	FeatureDependencies = "dependencies"
	FeatureHistorical   = "historical"
)

// Feature names for the burnout scorer.
const (
	SignalOverdueRatio    = "overdue_ratio"
	SignalAvgDelay        = "avg_delay"
	SignalReopenedRatio   = "reopened_ratio"
	SignalCommitDeviation = "commit_deviation"
)

// Feature names for the developer performance scorer.
const (
	SignalCompletionRate = "completion_rate"
	SignalOnTimeRate     = "on_time_rate"
	SignalEfficiency     = "efficiency"
	SignalCodeActivity   = "code_activity"
	SignalConsistency    = "consistency"
	SignalReliability    = "reliability"
)

// historicalBaseline is the fixed historical-performance feature. There is
// no per-project trend data in this system; the constant is a documented
// simplification, not a bug.
const historicalBaseline = 25

// complexityKeywords are scanned case-insensitively in name+description;
// each distinct match adds complexityKeywordWeight to the complexity feature.
var complexityKeywords = []string{
	"integration", "migration", "architecture", "infrastructure",
	"microservices", "distributed", "scalable", "enterprise",
}

const (
	complexityBase          = 50
	complexityKeywordWeight = 15
	complexityRepoBonus     = 10

	dependencyBase         = 30
	dependencyTrackerBonus = 20
	dependencyRepoBonus    = 15
)

// delayCapDays saturates the burnout delay signal: ten days of average
// slippage already reads as maximal.
const delayCapDays = 10.0

// ProjectFeatures turns one project snapshot into the bounded feature set
// consumed by the risk scorer. Every feature is a pure function of the
// snapshot and the supplied clock; each lands in [0,100].
func ProjectFeatures(p ProjectSnapshot, now time.Time) map[string]float64 {
	return map[string]float64{
		FeatureDeadline:     DeadlinePressure(p.Deadline, now),
		FeatureTeamSize:     teamSizeRisk(p.TeamMemberCount),
		FeatureComplexity:   ComplexityRisk(p),
		FeatureDependencies: dependencyRisk(p),
		FeatureHistorical:   historicalBaseline,
	}
}

// DeadlinePressure buckets the days remaining until a deadline. A missing
// deadline contributes nothing; a past-due deadline clamps to zero days left
// and therefore reads as maximal pressure.
func DeadlinePressure(deadline *time.Time, now time.Time) float64 {
	if deadline == nil {
		return 0
	}
	daysLeft := math.Max(0, deadline.Sub(now).Hours()/24)
	switch {
	case daysLeft < 7:
		return 100
	case daysLeft < 30:
		return 70
	case daysLeft < 60:
		return 40
	default:
		return 20
	}
}

func teamSizeRisk(members int) float64 {
	switch {
	case members < 2:
		return 80 // understaffed
	case members > 10:
		return 60 // coordination overhead
	default:
		return 30
	}
}

// ComplexityRisk scans the project text for complexity indicators on top of
// a fixed base.
func ComplexityRisk(p ProjectSnapshot) float64 {
	complexity := float64(complexityBase)
	text := strings.ToLower(p.Name + " " + p.Description)
	for _, keyword := range complexityKeywords {
		if strings.Contains(text, keyword) {
			complexity += complexityKeywordWeight
		}
	}
	if p.HasRepo {
		complexity += complexityRepoBonus
	}
	return math.Min(100, complexity)
}

func dependencyRisk(p ProjectSnapshot) float64 {
	risk := float64(dependencyBase)
	if p.HasTrackerProject {
		risk += dependencyTrackerBonus
	}
	if p.HasRepo {
		risk += dependencyRepoBonus
	}
	return math.Min(100, risk)
}

// BurnoutSignals turns a developer snapshot into the bounded signal set
// consumed by the burnout scorer. weeklyBaseline is the rolling team average
// of weekly commits; when it is unavailable (<= 0) the deviation term
// contributes zero. Ratios with a zero denominator default to zero.
func BurnoutSignals(d DeveloperSnapshot, weeklyBaseline float64) map[string]float64 {
	signals := map[string]float64{
		SignalOverdueRatio:    0,
		SignalAvgDelay:        math.Min(100, math.Max(0, d.AvgDelayDays)/delayCapDays*100),
		SignalReopenedRatio:   0,
		SignalCommitDeviation: 0,
	}
	if d.Tasks.Total > 0 {
		signals[SignalOverdueRatio] = float64(d.Tasks.Overdue) / float64(d.Tasks.Total) * 100
		signals[SignalReopenedRatio] = math.Min(100, float64(d.ReopenedCount)/float64(d.Tasks.Total)*100)
	}
	if weeklyBaseline > 0 {
		deviation := math.Abs(float64(d.Commits.Weekly)-weeklyBaseline) / weeklyBaseline * 100
		signals[SignalCommitDeviation] = math.Min(100, deviation)
	}
	return signals
}

// PerformanceSignals turns a developer snapshot into the bounded signal set
// consumed by the performance scorer.
func PerformanceSignals(d DeveloperSnapshot) map[string]float64 {
	signals := map[string]float64{
		SignalCompletionRate: 0,
		SignalOnTimeRate:     0,
		SignalEfficiency:     math.Max(0, 100-math.Max(0, d.AvgDelayDays)*10),
		SignalCodeActivity:   math.Min(100, float64(d.Commits.Monthly)/20*100),
		SignalConsistency:    math.Min(100, float64(d.Commits.Weekly)/5*100),
		SignalReliability:    100,
	}
	if d.Tasks.Total > 0 {
		signals[SignalCompletionRate] = float64(d.Tasks.Completed) / float64(d.Tasks.Total) * 100
		signals[SignalReliability] = 100 - math.Min(100, float64(d.ReopenedCount)/float64(d.Tasks.Total)*100)
	}
	if d.Tasks.Completed > 0 {
		onTime := float64(d.Tasks.Completed-d.Tasks.Overdue) / float64(d.Tasks.Completed) * 100
		signals[SignalOnTimeRate] = math.Max(0, onTime)
	}
	return signals
}

// TeamCommitBaseline is the rolling team baseline for the commit-deviation
// burnout signal: the mean weekly commit count across the batch. An empty
// batch has no baseline and returns zero.
func TeamCommitBaseline(developers []DeveloperSnapshot) float64 {
	if len(developers) == 0 {
		return 0
	}
	total := 0.0
	for _, d := range developers {
		total += float64(d.Commits.Weekly)
	}
	return total / float64(len(developers))
}
