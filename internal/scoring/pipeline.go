package scoring

import "time"

// Pipeline bundles the scorers into the full compute pass: features ->
// risk/burnout/performance -> forecast -> insights -> aggregates. It holds
// only immutable configuration, so one Pipeline is safe for concurrent use
// and repeated runs on identical input produce identical output.
type Pipeline struct {
	risk        *RiskScorer
	burnout     *BurnoutScorer
	performance *PerformanceScorer
}

// Result is the outcome of one compute pass over a batch of snapshots.
type Result struct {
	Projects   []ScoredProject    `json:"projects"`
	Developers []ScoredDeveloper  `json:"developers"`
	Insights   []Insight          `json:"insights"`
	Summary    PortfolioMetrics   `json:"summary"`
	RiskDist   []RiskDistribution `json:"risk_distribution"`
}

// NewPipeline builds the pipeline from the fixed weight tables.
func NewPipeline() *Pipeline {
	return &Pipeline{
		risk:        NewRiskScorer(),
		burnout:     NewBurnoutScorer(),
		performance: NewPerformanceScorer(),
	}
}

// Run scores a batch against one threshold profile. Validation failures
// abort the whole batch; the caller is expected to hand over
// structurally-checked data and a failed run must not produce a partial
// result.
func (p *Pipeline) Run(projects []ProjectSnapshot, developers []DeveloperSnapshot, profile ThresholdProfile, now time.Time) (Result, error) {
	res := Result{
		Projects:   make([]ScoredProject, 0, len(projects)),
		Developers: make([]ScoredDeveloper, 0, len(developers)),
	}

	for _, snap := range projects {
		risk, err := p.risk.Score(snap, now)
		if err != nil {
			return Result{}, err
		}
		res.Projects = append(res.Projects, ScoredProject{Snapshot: snap, Risk: risk})
	}

	baseline := TeamCommitBaseline(developers)
	for _, snap := range developers {
		burnout, err := p.burnout.Score(snap, baseline, now)
		if err != nil {
			return Result{}, err
		}
		perf, err := p.performance.Score(snap, now)
		if err != nil {
			return Result{}, err
		}
		res.Developers = append(res.Developers, ScoredDeveloper{Snapshot: snap, Burnout: burnout, Performance: perf})
	}

	gen, err := NewInsightGenerator(profile)
	if err != nil {
		return Result{}, err
	}
	res.Insights = gen.Generate(res.Projects, res.Developers, now)

	riskResults := make([]ScoreResult, 0, len(res.Projects))
	for _, sp := range res.Projects {
		riskResults = append(riskResults, sp.Risk)
	}
	res.RiskDist = Distribution(riskResults)
	res.Summary = Metrics(res.Projects)

	return res, nil
}
