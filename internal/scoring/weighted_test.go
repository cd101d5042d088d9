package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{
			name:    "rejects empty vector",
			weights: Weights{},
			wantErr: true,
		},
		{
			name:    "accepts vector summing to one",
			weights: Weights{"a": 0.5, "b": 0.3, "c": 0.2},
			wantErr: false,
		},
		{
			name:    "rejects vector summing below one",
			weights: Weights{"a": 0.5, "b": 0.3},
			wantErr: true,
		},
		{
			name:    "rejects vector summing above one",
			weights: Weights{"a": 0.6, "b": 0.6},
			wantErr: true,
		},
		{
			name:    "rejects negative weight",
			weights: Weights{"a": 1.5, "b": -0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFixedWeightTablesSumToOne(t *testing.T) {
	assert.NoError(t, RiskWeights.Validate())
	assert.NoError(t, BurnoutWeights.Validate())
	assert.NoError(t, PerformanceWeights.Validate())
}

func TestNewWeightedScorerRejectsBadBands(t *testing.T) {
	weights := Weights{"a": 1.0}

	_, err := NewWeightedScorer(weights, nil)
	assert.Error(t, err, "empty band list")

	_, err = NewWeightedScorer(weights, []Band{{Min: 10, Level: LevelLow}})
	assert.Error(t, err, "first band must start at 0")

	_, err = NewWeightedScorer(weights, []Band{{Min: 0, Level: LevelLow}, {Min: 0, Level: LevelHigh}})
	assert.Error(t, err, "band floors must ascend")
}

func TestWeightedScorerScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := MustWeightedScorer(
		Weights{"a": 0.5, "b": 0.5},
		[]Band{{Min: 0, Level: LevelLow}, {Min: 50, Level: LevelHigh}},
	)

	tests := []struct {
		name      string
		features  map[string]float64
		wantScore int
		wantLevel Level
	}{
		{
			name:      "averages bounded features",
			features:  map[string]float64{"a": 40, "b": 60},
			wantScore: 50,
			wantLevel: LevelHigh,
		},
		{
			name:      "missing feature contributes zero",
			features:  map[string]float64{"a": 40},
			wantScore: 20,
			wantLevel: LevelLow,
		},
		{
			name:      "clips features above 100 before weighting",
			features:  map[string]float64{"a": 500, "b": 100},
			wantScore: 100,
			wantLevel: LevelHigh,
		},
		{
			name:      "clips negative features to zero",
			features:  map[string]float64{"a": -50, "b": 100},
			wantScore: 50,
			wantLevel: LevelHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score("entity-1", tt.features, now)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantLevel, result.Level)
			assert.Equal(t, "entity-1", result.EntityID)
			assert.Equal(t, now, result.ComputedAt)
		})
	}
}

func TestWeightedScorerRecordsRawFeatures(t *testing.T) {
	scorer := MustWeightedScorer(Weights{"a": 1.0}, []Band{{Min: 0, Level: LevelLow}})
	result := scorer.Score("e", map[string]float64{"a": 250}, time.Time{})

	require.Contains(t, result.Features, "a")
	assert.Equal(t, 250.0, result.Features["a"], "raw value kept for auditability")
	assert.Equal(t, 100, result.Score, "clipped value used for scoring")
}

func TestLevelForBoundaries(t *testing.T) {
	scorer := MustWeightedScorer(RiskWeights, RiskBands)

	tests := []struct {
		score int
		want  Level
	}{
		{0, LevelLow},
		{29, LevelLow},
		{30, LevelMedium},
		{49, LevelMedium},
		{50, LevelHigh},
		{69, LevelHigh},
		{70, LevelCritical},
		{100, LevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scorer.LevelFor(tt.score), "score %d", tt.score)
	}
}
