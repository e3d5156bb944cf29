// Package stats turns hypothesis count tensors into probability
// distributions and Shannon entropies.
package stats

import "math"

// Result pairs the normalized probabilities of a count tensor with the
// entropy of that distribution. Probs has the same flat shape as the
// input counts.
type Result struct {
	Probs   []float64
	Entropy float64
}

// FromCounts normalizes a nonnegative count tensor into probabilities
// and computes -sum(p*log(p)) with the 0*log(0) = 0 convention. An
// all-zero tensor yields all-zero probabilities and entropy 0.
func FromCounts(counts []int) Result {
	probs := make([]float64, len(counts))
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return Result{Probs: probs}
	}

	entropy := 0.0
	for ix, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		probs[ix] = p
		entropy -= p * math.Log(p)
	}
	return Result{Probs: probs, Entropy: entropy}
}
