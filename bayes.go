package reviewguard

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MultinomialNB is a multinomial naive Bayes classifier with Lidstone
// smoothing. Multinomial likelihoods assume non-negative counts, so negative
// feature values (the polarity column can dip below zero) are clamped to 0
// during both fitting and scoring.
type MultinomialNB struct {
	Alpha         float64
	ClassLogPrior [2]float64
	FeatureLogPb  [2][]float64
}

// NewMultinomialNB returns an unfitted classifier with the given smoothing.
func NewMultinomialNB(alpha float64) *MultinomialNB {
	return &MultinomialNB{Alpha: alpha}
}

// Fit estimates class priors and per-feature log probabilities.
func (nb *MultinomialNB) Fit(X *mat.Dense, y []int) error {
	rows, cols := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("naive bayes: %d rows but %d labels", rows, len(y))
	}
	if nb.Alpha <= 0 {
		nb.Alpha = 1.0
	}

	var counts [2][]float64
	var classCount [2]float64
	for c := 0; c < 2; c++ {
		counts[c] = make([]float64, cols)
	}
	for i := 0; i < rows; i++ {
		c := y[i]
		classCount[c]++
		for j := 0; j < cols; j++ {
			if v := X.At(i, j); v > 0 {
				counts[c][j] += v
			}
		}
	}

	for c := 0; c < 2; c++ {
		nb.ClassLogPrior[c] = math.Log((classCount[c] + 1) / (float64(rows) + 2))
		total := 0.0
		for _, v := range counts[c] {
			total += v
		}
		nb.FeatureLogPb[c] = make([]float64, cols)
		denom := total + nb.Alpha*float64(cols)
		for j := 0; j < cols; j++ {
			nb.FeatureLogPb[c][j] = math.Log((counts[c][j] + nb.Alpha) / denom)
		}
	}
	return nil
}

// Predict returns the maximum-posterior class.
func (nb *MultinomialNB) Predict(x []float64) int {
	return argmaxProba(nb.PredictProba(x))
}

// PredictProba returns normalized class posteriors.
func (nb *MultinomialNB) PredictProba(x []float64) []float64 {
	var logp [2]float64
	for c := 0; c < 2; c++ {
		logp[c] = nb.ClassLogPrior[c]
		for j, v := range x {
			if v > 0 && j < len(nb.FeatureLogPb[c]) {
				logp[c] += v * nb.FeatureLogPb[c][j]
			}
		}
	}
	// Log-sum-exp normalization.
	m := math.Max(logp[0], logp[1])
	p0 := math.Exp(logp[0] - m)
	p1 := math.Exp(logp[1] - m)
	return []float64{p0 / (p0 + p1), p1 / (p0 + p1)}
}
