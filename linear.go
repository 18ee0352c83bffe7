package reviewguard

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is an L2-regularized binary logistic model trained by
// full-batch gradient descent.
type LogisticRegression struct {
	LearningRate float64
	Iterations   int
	L2           float64

	Weights []float64
	Bias    float64
}

// NewLogisticRegression returns an unfitted model with the given inverse
// regularization strength expressed as an L2 penalty.
func NewLogisticRegression(learningRate float64, iterations int, l2 float64) *LogisticRegression {
	return &LogisticRegression{LearningRate: learningRate, Iterations: iterations, L2: l2}
}

// Fit runs gradient descent on the cross-entropy loss.
func (lr *LogisticRegression) Fit(X *mat.Dense, y []int) error {
	rows, cols := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("logistic regression: %d rows but %d labels", rows, len(y))
	}
	if lr.LearningRate <= 0 {
		lr.LearningRate = 0.1
	}
	if lr.Iterations <= 0 {
		lr.Iterations = 200
	}

	lr.Weights = make([]float64, cols)
	lr.Bias = 0

	gradW := make([]float64, cols)
	for iter := 0; iter < lr.Iterations; iter++ {
		for j := range gradW {
			gradW[j] = lr.L2 * lr.Weights[j]
		}
		gradB := 0.0
		for i := 0; i < rows; i++ {
			z := lr.Bias
			for j := 0; j < cols; j++ {
				z += lr.Weights[j] * X.At(i, j)
			}
			diff := sigmoid(z) - float64(y[i])
			for j := 0; j < cols; j++ {
				gradW[j] += diff * X.At(i, j)
			}
			gradB += diff
		}
		scale := lr.LearningRate / float64(rows)
		for j := range lr.Weights {
			lr.Weights[j] -= scale * gradW[j]
		}
		lr.Bias -= scale * gradB
	}
	return nil
}

// Predict thresholds the positive-class probability at 0.5.
func (lr *LogisticRegression) Predict(x []float64) int {
	return argmaxProba(lr.PredictProba(x))
}

// PredictProba returns [p(0), p(1)].
func (lr *LogisticRegression) PredictProba(x []float64) []float64 {
	z := lr.Bias
	for j, v := range x {
		if j < len(lr.Weights) {
			z += lr.Weights[j] * v
		}
	}
	p := sigmoid(z)
	return []float64{1 - p, p}
}
