package reviewguard

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GradientBoosting fits shallow regression trees to the pseudo-residuals of
// the logistic loss, accumulating their outputs in log-odds space.
type GradientBoosting struct {
	NRounds      int
	LearningRate float64
	MaxDepth     int
	InitScore    float64 // prior log-odds of the positive class
	Trees        []*DecisionTree
}

// NewGradientBoosting returns an unfitted boosted-trees model.
func NewGradientBoosting(nRounds int, learningRate float64, maxDepth int) *GradientBoosting {
	return &GradientBoosting{
		NRounds:      nRounds,
		LearningRate: learningRate,
		MaxDepth:     maxDepth,
	}
}

// Fit runs NRounds of boosting.
func (gb *GradientBoosting) Fit(X *mat.Dense, y []int) error {
	rows, _ := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("gradient boosting: %d rows but %d labels", rows, len(y))
	}
	if gb.NRounds <= 0 {
		gb.NRounds = 100
	}
	if gb.LearningRate <= 0 {
		gb.LearningRate = 0.1
	}

	pos := 0.0
	for _, label := range y {
		if label == 1 {
			pos++
		}
	}
	// Clamp the prior away from 0 and 1 so the log-odds stay finite on
	// single-class data.
	p := math.Min(math.Max(pos/float64(rows), 1e-6), 1-1e-6)
	gb.InitScore = math.Log(p / (1 - p))

	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = gb.InitScore
	}

	residuals := make([]float64, rows)
	gb.Trees = make([]*DecisionTree, 0, gb.NRounds)
	for round := 0; round < gb.NRounds; round++ {
		for i := range residuals {
			residuals[i] = float64(y[i]) - sigmoid(scores[i])
		}

		tree := &DecisionTree{
			MaxDepth:        gb.MaxDepth,
			MinSamplesSplit: 2,
			Regression:      true,
		}
		if err := tree.FitValues(X, residuals); err != nil {
			return fmt.Errorf("gradient boosting: round %d: %w", round, err)
		}
		gb.Trees = append(gb.Trees, tree)

		for i := range scores {
			scores[i] += gb.LearningRate * tree.PredictValue(rowOf(X, i))
		}
	}
	return nil
}

// Predict thresholds the boosted probability at 0.5.
func (gb *GradientBoosting) Predict(x []float64) int {
	return argmaxProba(gb.PredictProba(x))
}

// PredictProba maps the accumulated log-odds through the sigmoid.
func (gb *GradientBoosting) PredictProba(x []float64) []float64 {
	score := gb.InitScore
	for _, tree := range gb.Trees {
		score += gb.LearningRate * tree.PredictValue(x)
	}
	p := sigmoid(score)
	return []float64{1 - p, p}
}
