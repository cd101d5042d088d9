package scoring

import "time"

// PerformanceWeights is the multi-factor developer performance blend.
// Sums to exactly 1.0.
var PerformanceWeights = Weights{
	SignalCompletionRate: 0.25,
	SignalOnTimeRate:     0.20,
	SignalEfficiency:     0.20,
	SignalCodeActivity:   0.15,
	SignalConsistency:    0.10,
	SignalReliability:    0.10,
}

// PerformanceBands maps the performance score onto qualitative levels.
var PerformanceBands = []Band{
	{Min: 0, Level: LevelNeedsImprovement},
	{Min: 40, Level: LevelAverage},
	{Min: 60, Level: LevelGood},
	{Min: 80, Level: LevelExcellent},
}

// PerformanceScorer computes a 0-100 developer performance score.
type PerformanceScorer struct {
	scorer *WeightedScorer
}

// NewPerformanceScorer builds the performance scorer from the fixed weight
// table.
func NewPerformanceScorer() *PerformanceScorer {
	return &PerformanceScorer{scorer: MustWeightedScorer(PerformanceWeights, PerformanceBands)}
}

// Score validates the snapshot and blends its performance signals.
func (s *PerformanceScorer) Score(d DeveloperSnapshot, now time.Time) (ScoreResult, error) {
	if err := ValidateDeveloper(d); err != nil {
		return ScoreResult{}, err
	}
	return s.scorer.Score(d.ID, PerformanceSignals(d), now), nil
}
