package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// weightSumTolerance absorbs binary float noise when literal weights sum to 1.
const weightSumTolerance = 1e-9

// Weights maps feature names to their share of the final score. A valid
// weight vector is non-empty, non-negative and sums to exactly 1.0.
type Weights map[string]float64

// Validate reports whether the weight vector is usable for scoring.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("weight vector is empty")
	}
	sum := 0.0
	for name, weight := range w {
		if weight < 0 {
			return fmt.Errorf("weight %q is negative: %v", name, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Band maps a score floor to a level. A band list covers [0,100] with
// ascending, unique floors starting at 0.
type Band struct {
	Min   int
	Level Level
}

func validateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("band list is empty")
	}
	if bands[0].Min != 0 {
		return fmt.Errorf("first band starts at %d, want 0", bands[0].Min)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Min <= bands[i-1].Min {
			return fmt.Errorf("band floors not ascending at index %d", i)
		}
	}
	return nil
}

// WeightedScorer combines bounded features into a banded 0-100 score. The
// same machinery backs risk, burnout and performance scoring; only the
// weight table and band list differ.
type WeightedScorer struct {
	weights Weights
	bands   []Band
}

// NewWeightedScorer builds a scorer, rejecting weight vectors that do not
// sum to 1.0 and malformed band lists.
func NewWeightedScorer(weights Weights, bands []Band) (*WeightedScorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if err := validateBands(bands); err != nil {
		return nil, err
	}
	return &WeightedScorer{weights: weights, bands: bands}, nil
}

// MustWeightedScorer is for package-level scorer construction from literal
// tables; it panics on an invalid configuration.
func MustWeightedScorer(weights Weights, bands []Band) *WeightedScorer {
	s, err := NewWeightedScorer(weights, bands)
	if err != nil {
		panic(err)
	}
	return s
}

// Score computes round(sum(feature*weight)) clamped to [0,100]. Features are
// clipped to [0,100] before weighting; features absent from the map
// contribute zero. The result carries the raw (unclipped) feature values for
// auditability.
func (s *WeightedScorer) Score(entityID string, features map[string]float64, now time.Time) ScoreResult {
	total := 0.0
	for name, weight := range s.weights {
		total += clamp(features[name], 0, 100) * weight
	}
	score := int(math.Round(clamp(total, 0, 100)))

	recorded := make(map[string]float64, len(features))
	for name, value := range features {
		recorded[name] = value
	}

	return ScoreResult{
		EntityID:   entityID,
		Score:      score,
		Level:      s.LevelFor(score),
		Features:   recorded,
		ComputedAt: now,
	}
}

// LevelFor maps a score onto the scorer's band list.
func (s *WeightedScorer) LevelFor(score int) Level {
	idx := sort.Search(len(s.bands), func(i int) bool { return s.bands[i].Min > score })
	return s.bands[idx-1].Level
}

// FeatureNames returns the feature names the scorer weighs, sorted for
// deterministic iteration.
func (s *WeightedScorer) FeatureNames() []string {
	names := make([]string, 0, len(s.weights))
	for name := range s.weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
