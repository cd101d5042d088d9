package scoring

import "time"

// BurnoutWeights blends workload, slippage, rework and commit-cadence
// signals. Sums to exactly 1.0.
var BurnoutWeights = Weights{
	SignalOverdueRatio:    0.35,
	SignalAvgDelay:        0.25,
	SignalReopenedRatio:   0.20,
	SignalCommitDeviation: 0.20,
}

// BurnoutBands is the role-independent severity banding for the burnout
// index. Role profiles may gate alerting differently, but the underlying
// score and its band never change per role.
var BurnoutBands = []Band{
	{Min: 0, Level: LevelLow},
	{Min: 40, Level: LevelModerate},
	{Min: 70, Level: LevelCritical},
}

// BurnoutScorer computes a 0-100 overwork/strain index per developer.
type BurnoutScorer struct {
	scorer *WeightedScorer
}

// NewBurnoutScorer builds the burnout scorer from the fixed weight table.
func NewBurnoutScorer() *BurnoutScorer {
	return &BurnoutScorer{scorer: MustWeightedScorer(BurnoutWeights, BurnoutBands)}
}

// Score validates the snapshot and blends its burnout signals.
// weeklyBaseline is the team's rolling average of weekly commits; pass zero
// when no baseline is available and the deviation term drops out.
func (s *BurnoutScorer) Score(d DeveloperSnapshot, weeklyBaseline float64, now time.Time) (ScoreResult, error) {
	if err := ValidateDeveloper(d); err != nil {
		return ScoreResult{}, err
	}
	return s.scorer.Score(d.ID, BurnoutSignals(d, weeklyBaseline), now), nil
}
