package scoring

import "math"

// CompletionProbability converts a 0-100 risk score into a completion
// probability percentage via a logistic transform. Monotonic: higher risk
// always means lower probability. Fixed points: 50 -> 50, 0 -> 99, 100 -> 1.
func CompletionProbability(riskScore int) int {
	p := 1 / (1 + math.Exp((float64(riskScore)-50)/10))
	return int(math.Round(p * 100))
}
