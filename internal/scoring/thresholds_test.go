package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		role Role
		want ThresholdProfile
	}{
		{RoleDeveloper, ThresholdProfile{Warning: 40, Danger: 60}},
		{RoleTeamLeader, ThresholdProfile{Warning: 45, Danger: 65}},
		{RoleManager, ThresholdProfile{Warning: 50, Danger: 70}},
		{RoleHR, ThresholdProfile{Warning: 60, Danger: 75}},
		{RoleAdmin, ThresholdProfile{Warning: 40, Danger: 60}},
		{RoleStakeholder, ThresholdProfile{Warning: 50, Danger: 70}},
		{Role("intern"), ThresholdProfile{Warning: 40, Danger: 60}}, // fallback
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileFor(tt.role))
		})
	}
}

func TestAllProfilesValid(t *testing.T) {
	for role, profile := range roleThresholds {
		assert.NoError(t, profile.Validate(), "role %s", role)
	}
}

func TestThresholdProfileValidate(t *testing.T) {
	assert.NoError(t, ThresholdProfile{Warning: 40, Danger: 60}.Validate())
	assert.Error(t, ThresholdProfile{Warning: 60, Danger: 60}.Validate(), "warning must be below danger")
	assert.Error(t, ThresholdProfile{Warning: 70, Danger: 60}.Validate())
	assert.Error(t, ThresholdProfile{Warning: -1, Danger: 60}.Validate())
	assert.Error(t, ThresholdProfile{Warning: 40, Danger: 101}.Validate())
}

func TestClassifyBoundariesInclusive(t *testing.T) {
	profile := ThresholdProfile{Warning: 50, Danger: 70}

	tests := []struct {
		score int
		want  AlertState
	}{
		{0, AlertSafe},
		{49, AlertSafe},
		{50, AlertWarning}, // boundary counts as crossing
		{69, AlertWarning},
		{70, AlertDanger}, // boundary counts as crossing
		{100, AlertDanger},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, profile.Classify(tt.score), "score %d", tt.score)
	}
}
