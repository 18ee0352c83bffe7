package reviewguard

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BaseModel is the capability set every classifier variant implements. All
// models are binary: labels are 0 (genuine) and 1 (fake), and PredictProba
// returns [p(genuine), p(fake)].
type BaseModel interface {
	Fit(X *mat.Dense, y []int) error
	Predict(x []float64) int
	PredictProba(x []float64) []float64
}

// ModelKind names the concrete classifier variants, replacing duck-typed
// dispatch when selecting or persisting models by name.
type ModelKind string

const (
	KindRandomForest       ModelKind = "random_forest"
	KindGradientBoosting   ModelKind = "gradient_boosting"
	KindSVM                ModelKind = "svm"
	KindNaiveBayes         ModelKind = "naive_bayes"
	KindLogisticRegression ModelKind = "logistic_regression"
	KindDecisionTree       ModelKind = "decision_tree"
	KindKNN                ModelKind = "knn"
)

// ensembleKinds is the fixed model order of the ensemble; the configured
// weights apply in this order.
var ensembleKinds = [3]ModelKind{KindRandomForest, KindGradientBoosting, KindSVM}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// rowOf copies row i of X into a fresh slice.
func rowOf(X *mat.Dense, i int) []float64 {
	_, cols := X.Dims()
	row := make([]float64, cols)
	mat.Row(row, i, X)
	return row
}

// argmaxProba returns the label with the highest probability.
func argmaxProba(proba []float64) int {
	best, label := math.Inf(-1), 0
	for i, p := range proba {
		if p > best {
			best = p
			label = i
		}
	}
	return label
}
