package reviewguard

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNN is a k-nearest-neighbors classifier over Euclidean distance. Fitting
// just memorizes the training set; probabilities are neighbor-vote
// fractions.
type KNN struct {
	K      int
	Points [][]float64
	Labels []int
}

// NewKNN returns a classifier voting over k neighbors.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the training set.
func (knn *KNN) Fit(X *mat.Dense, y []int) error {
	rows, _ := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("knn: %d rows but %d labels", rows, len(y))
	}
	if knn.K <= 0 {
		knn.K = 5
	}
	knn.Points = make([][]float64, rows)
	for i := range knn.Points {
		knn.Points[i] = rowOf(X, i)
	}
	knn.Labels = append([]int(nil), y...)
	return nil
}

// Predict returns the majority label among the k nearest neighbors.
func (knn *KNN) Predict(x []float64) int {
	return argmaxProba(knn.PredictProba(x))
}

// PredictProba returns the neighbor vote fractions.
func (knn *KNN) PredictProba(x []float64) []float64 {
	if len(knn.Points) == 0 {
		return []float64{0.5, 0.5}
	}

	type neighbor struct {
		dist  float64
		label int
	}
	neighbors := make([]neighbor, len(knn.Points))
	for i, p := range knn.Points {
		distSq := 0.0
		for j := range p {
			d := p[j] - x[j]
			distSq += d * d
		}
		neighbors[i] = neighbor{math.Sqrt(distSq), knn.Labels[i]}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	k := knn.K
	if k > len(neighbors) {
		k = len(neighbors)
	}
	pos := 0.0
	for _, n := range neighbors[:k] {
		if n.label == 1 {
			pos++
		}
	}
	return []float64{1 - pos/float64(k), pos / float64(k)}
}
