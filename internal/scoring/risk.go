package scoring

import "time"

// RiskWeights is the fixed weight vector for project risk. The weights sum
// to exactly 1.0; NewRiskScorer asserts this at construction.
var RiskWeights = Weights{
	FeatureDeadline:     0.30,
	FeatureTeamSize:     0.20,
	FeatureComplexity:   0.25,
	FeatureDependencies: 0.15,
	FeatureHistorical:   0.10,
}

// RiskBands is the role-agnostic default banding for risk scores.
// ThresholdProfiles override it for alerting only, never for the score.
var RiskBands = []Band{
	{Min: 0, Level: LevelLow},
	{Min: 30, Level: LevelMedium},
	{Min: 50, Level: LevelHigh},
	{Min: 70, Level: LevelCritical},
}

// RiskScorer computes 0-100 project delivery risk.
type RiskScorer struct {
	scorer *WeightedScorer
}

// NewRiskScorer builds the project risk scorer from the fixed weight table.
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{scorer: MustWeightedScorer(RiskWeights, RiskBands)}
}

// Score validates the snapshot, extracts its features and folds them into a
// single risk result. Incomplete snapshots never fail; only structurally
// invalid ones do.
func (s *RiskScorer) Score(p ProjectSnapshot, now time.Time) (ScoreResult, error) {
	if err := ValidateProject(p); err != nil {
		return ScoreResult{}, err
	}
	return s.scorer.Score(p.ID, ProjectFeatures(p, now), now), nil
}

// LevelFor exposes the default band mapping for externally computed scores.
func (s *RiskScorer) LevelFor(score int) Level {
	return s.scorer.LevelFor(score)
}
