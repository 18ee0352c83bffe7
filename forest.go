package reviewguard

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RandomForest averages the class distributions of bootstrap-trained CART
// trees, each splitting on a random sqrt-sized feature subset.
type RandomForest struct {
	NTrees   int
	MaxDepth int
	Seed     int64
	Trees    []*DecisionTree
}

// NewRandomForest returns an unfitted forest.
func NewRandomForest(nTrees, maxDepth int, seed int64) *RandomForest {
	return &RandomForest{NTrees: nTrees, MaxDepth: maxDepth, Seed: seed}
}

// Fit trains NTrees trees on bootstrap resamples of X.
func (rf *RandomForest) Fit(X *mat.Dense, y []int) error {
	rows, cols := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("random forest: %d rows but %d labels", rows, len(y))
	}
	if rf.NTrees <= 0 {
		rf.NTrees = 100
	}

	rng := rand.New(rand.NewSource(rf.Seed))
	maxFeatures := int(math.Sqrt(float64(cols)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	sampleY := make([]int, rows)
	for k := 0; k < rf.NTrees; k++ {
		sample := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			src := rng.Intn(rows)
			sample.SetRow(i, rowOf(X, src))
			sampleY[i] = y[src]
		}

		tree := NewDecisionTree(rf.MaxDepth)
		tree.MaxFeatures = maxFeatures
		tree.rng = rand.New(rand.NewSource(rng.Int63()))
		if err := tree.Fit(sample, sampleY); err != nil {
			return fmt.Errorf("random forest: tree %d: %w", k, err)
		}
		rf.Trees[k] = tree
	}
	return nil
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForest) Predict(x []float64) int {
	return argmaxProba(rf.PredictProba(x))
}

// PredictProba averages the leaf distributions of all trees.
func (rf *RandomForest) PredictProba(x []float64) []float64 {
	proba := []float64{0, 0}
	if len(rf.Trees) == 0 {
		return []float64{0.5, 0.5}
	}
	for _, tree := range rf.Trees {
		p := tree.PredictProba(x)
		proba[0] += p[0]
		proba[1] += p[1]
	}
	n := float64(len(rf.Trees))
	proba[0] /= n
	proba[1] /= n
	return proba
}
