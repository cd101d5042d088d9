package scoring

import (
	"math"
	"sort"
)

// RiskDistribution is one bucket of the portfolio risk histogram.
type RiskDistribution struct {
	RiskLevel Level `json:"risk_level"`
	Count     int   `json:"count"`
}

// RankedEntity is one row of a leaderboard ordered by descending score.
type RankedEntity struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Level    Level  `json:"level"`
}

// PortfolioMetrics summarizes the project portfolio for dashboards.
type PortfolioMetrics struct {
	TotalProjects  int `json:"total_projects"`
	AvgRiskScore   int `json:"avg_risk_score"`
	OnTrack        int `json:"on_track_projects"`
	AtRisk         int `json:"at_risk_projects"`
	Delayed        int `json:"delayed_projects"`
	Completed      int `json:"completed_projects"`
	CompletionRate int `json:"completion_rate"`
	AvgTeamSize    int `json:"avg_team_size"`
}

// weeklyCapacityHours anchors the utilization estimate to a standard week.
const weeklyCapacityHours = 40.0

// Distribution counts risk results into the default low/medium/high/critical
// bands. Buckets appear in fixed band order, including empty ones.
func Distribution(results []ScoreResult) []RiskDistribution {
	counts := make(map[Level]int, len(RiskBands))
	bander := MustWeightedScorer(RiskWeights, RiskBands)
	for _, r := range results {
		counts[bander.LevelFor(r.Score)]++
	}
	dist := make([]RiskDistribution, 0, len(RiskBands))
	for _, band := range RiskBands {
		dist = append(dist, RiskDistribution{RiskLevel: band.Level, Count: counts[band.Level]})
	}
	return dist
}

// Rank orders entities by descending score, breaking ties by ascending
// entity id for determinism. The input slice is not modified.
func Rank(entities []RankedEntity) []RankedEntity {
	ranked := append([]RankedEntity(nil), entities...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].EntityID < ranked[j].EntityID
	})
	return ranked
}

// RankProjects builds the project leaderboard from scored projects.
func RankProjects(projects []ScoredProject) []RankedEntity {
	entities := make([]RankedEntity, 0, len(projects))
	for _, p := range projects {
		entities = append(entities, RankedEntity{
			EntityID: p.Snapshot.ID,
			Name:     p.Snapshot.Name,
			Score:    p.Risk.Score,
			Level:    p.Risk.Level,
		})
	}
	return Rank(entities)
}

// RankDevelopers builds the team performance leaderboard, ranked by
// descending performance score.
func RankDevelopers(developers []ScoredDeveloper) []RankedEntity {
	entities := make([]RankedEntity, 0, len(developers))
	for _, d := range developers {
		entities = append(entities, RankedEntity{
			EntityID: d.Snapshot.ID,
			Name:     d.Snapshot.Name,
			Score:    d.Performance.Score,
			Level:    d.Performance.Level,
		})
	}
	return Rank(entities)
}

// ProjectWorkloadHours estimates the weekly hours one project demands from
// its risk score and complexity feature.
func ProjectWorkloadHours(p ScoredProject) float64 {
	return (float64(p.Risk.Score) + ComplexityRisk(p.Snapshot)) / 4
}

// Utilization estimates team workload as a percentage of a standard week,
// averaging the per-project hour estimates. Empty input reads as zero.
func Utilization(projects []ScoredProject) int {
	if len(projects) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range projects {
		total += ProjectWorkloadHours(p)
	}
	avg := total / float64(len(projects))
	return int(math.Min(100, math.Round(avg/weeklyCapacityHours*100)))
}

// Metrics rolls scored projects into the dashboard summary block.
func Metrics(projects []ScoredProject) PortfolioMetrics {
	m := PortfolioMetrics{TotalProjects: len(projects)}
	if len(projects) == 0 {
		return m
	}

	riskTotal := 0
	teamTotal := 0
	for _, p := range projects {
		riskTotal += p.Risk.Score
		teamTotal += p.Snapshot.TeamMemberCount
		switch p.Snapshot.Status {
		case StatusOnTrack:
			m.OnTrack++
		case StatusAtRisk:
			m.AtRisk++
		case StatusDelayed:
			m.Delayed++
		case StatusCompleted:
			m.Completed++
		}
	}

	n := float64(len(projects))
	m.AvgRiskScore = int(math.Round(float64(riskTotal) / n))
	m.AvgTeamSize = int(math.Round(float64(teamTotal) / n))
	m.CompletionRate = int(math.Round(float64(m.Completed) / n * 100))
	return m
}
