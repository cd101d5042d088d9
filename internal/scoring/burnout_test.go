package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurnoutScoreNoTasks(t *testing.T) {
	// total_tasks=0: ratio signals default to zero, only delay and commit
	// terms remain, and nothing divides by zero.
	scorer := NewBurnoutScorer()
	d := DeveloperSnapshot{
		ID:           "dev-idle",
		AvgDelayDays: 8,
		Commits:      CommitCounts{Weekly: 3},
	}

	result, err := scorer.Score(d, 0, featureNow)
	require.NoError(t, err)

	// Only avg_delay contributes: 80 * 0.25 = 20.
	assert.Equal(t, 20, result.Score)
	assert.Equal(t, LevelLow, result.Level)
}

func TestBurnoutBands(t *testing.T) {
	scorer := MustWeightedScorer(BurnoutWeights, BurnoutBands)

	tests := []struct {
		score int
		want  Level
	}{
		{0, LevelLow},
		{39, LevelLow},
		{40, LevelModerate},
		{69, LevelModerate},
		{70, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scorer.LevelFor(tt.score), "score %d", tt.score)
	}
}

func TestBurnoutScoreElevated(t *testing.T) {
	scorer := NewBurnoutScorer()
	d := DeveloperSnapshot{
		ID:            "dev-strained",
		Tasks:         TaskCounts{Total: 10, Completed: 3, Overdue: 8},
		ReopenedCount: 4,
		AvgDelayDays:  12,
		Commits:       CommitCounts{Weekly: 1},
	}

	result, err := scorer.Score(d, 10, featureNow)
	require.NoError(t, err)

	// overdue 80*.35 + delay 100*.25 + reopened 40*.20 + deviation 90*.20 = 79
	assert.Equal(t, 79, result.Score)
	assert.Equal(t, LevelCritical, result.Level)
}

func TestBurnoutScoreRoleIndependent(t *testing.T) {
	// Threshold profiles gate alerting only; the index itself never varies
	// by role, so two identically-loaded developers score identically.
	scorer := NewBurnoutScorer()
	base := DeveloperSnapshot{
		Tasks:        TaskCounts{Total: 4, Overdue: 2},
		AvgDelayDays: 3,
		Commits:      CommitCounts{Weekly: 5},
	}

	asDev := base
	asDev.ID, asDev.Role = "a", RoleDeveloper
	asLead := base
	asLead.ID, asLead.Role = "b", RoleTeamLeader

	devResult, err := scorer.Score(asDev, 5, featureNow)
	require.NoError(t, err)
	leadResult, err := scorer.Score(asLead, 5, featureNow)
	require.NoError(t, err)

	assert.Equal(t, devResult.Score, leadResult.Score)
	assert.Equal(t, devResult.Level, leadResult.Level)
}

func TestBurnoutScoreValidation(t *testing.T) {
	scorer := NewBurnoutScorer()

	_, err := scorer.Score(DeveloperSnapshot{ID: "bad", Tasks: TaskCounts{Total: -1}}, 0, featureNow)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = scorer.Score(DeveloperSnapshot{ID: "bad", ReopenedCount: -2}, 0, featureNow)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestPerformanceScore(t *testing.T) {
	scorer := NewPerformanceScorer()
	d := DeveloperSnapshot{
		ID:            "dev-strong",
		Tasks:         TaskCounts{Total: 10, Completed: 8, Overdue: 2},
		ReopenedCount: 1,
		AvgDelayDays:  2,
		Commits:       CommitCounts{Weekly: 5, Monthly: 10},
	}

	result, err := scorer.Score(d, featureNow)
	require.NoError(t, err)

	// 80*.25 + 75*.20 + 80*.20 + 50*.15 + 100*.10 + 90*.10 = 77.5 -> 78
	assert.Equal(t, 78, result.Score)
	assert.Equal(t, LevelGood, result.Level)
}

func TestPerformanceBands(t *testing.T) {
	scorer := MustWeightedScorer(PerformanceWeights, PerformanceBands)

	assert.Equal(t, LevelNeedsImprovement, scorer.LevelFor(39))
	assert.Equal(t, LevelAverage, scorer.LevelFor(40))
	assert.Equal(t, LevelGood, scorer.LevelFor(60))
	assert.Equal(t, LevelExcellent, scorer.LevelFor(80))
}
