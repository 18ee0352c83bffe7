package reviewguard

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// TreeNode is one node of a fitted CART tree. Fields are exported for gob
// round-tripping of persisted models.
type TreeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Proba     [2]float64 // leaf class distribution (classification)
	Value     float64    // leaf prediction (regression)
}

// DecisionTree is a CART tree supporting both gini-split classification and
// variance-split regression (the latter used as the weak learner for
// gradient boosting). MaxFeatures > 0 samples a feature subset at every
// split, which is what makes random-forest trees decorrelated.
type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 means consider all features
	Regression      bool
	Root            *TreeNode

	rng *rand.Rand
}

// NewDecisionTree returns a classification tree with sklearn-like defaults.
func NewDecisionTree(maxDepth int) *DecisionTree {
	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: 2,
	}
}

// Fit grows the tree on the given feature matrix and labels.
func (t *DecisionTree) Fit(X *mat.Dense, y []int) error {
	rows, _ := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("decision tree: %d rows but %d labels", rows, len(y))
	}
	targets := make([]float64, len(y))
	for i, label := range y {
		targets[i] = float64(label)
	}
	return t.FitValues(X, targets)
}

// FitValues grows the tree against float targets. For classification these
// are 0/1 labels; for regression they are arbitrary residuals.
func (t *DecisionTree) FitValues(X *mat.Dense, targets []float64) error {
	rows, _ := X.Dims()
	if rows == 0 || rows != len(targets) {
		return fmt.Errorf("decision tree: %d rows but %d targets", rows, len(targets))
	}
	if t.MinSamplesSplit < 2 {
		t.MinSamplesSplit = 2
	}
	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	t.Root = t.grow(X, targets, idx, 0)
	return nil
}

func (t *DecisionTree) grow(X *mat.Dense, targets []float64, idx []int, depth int) *TreeNode {
	if len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) || pure(targets, idx) {
		return t.leaf(targets, idx)
	}

	feature, threshold, ok := t.bestSplit(X, targets, idx)
	if !ok {
		return t.leaf(targets, idx)
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return t.leaf(targets, idx)
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, targets, left, depth+1),
		Right:     t.grow(X, targets, right, depth+1),
	}
}

func (t *DecisionTree) leaf(targets []float64, idx []int) *TreeNode {
	node := &TreeNode{Leaf: true}
	if len(idx) == 0 {
		return node
	}
	if t.Regression {
		sum := 0.0
		for _, i := range idx {
			sum += targets[i]
		}
		node.Value = sum / float64(len(idx))
		return node
	}
	pos := 0.0
	for _, i := range idx {
		if targets[i] >= 0.5 {
			pos++
		}
	}
	p1 := pos / float64(len(idx))
	node.Proba = [2]float64{1 - p1, p1}
	return node
}

// bestSplit scans candidate features for the impurity-minimizing threshold.
// Thresholds are midpoints between consecutive distinct sorted values.
func (t *DecisionTree) bestSplit(X *mat.Dense, targets []float64, idx []int) (int, float64, bool) {
	_, cols := X.Dims()
	features := t.candidateFeatures(cols)

	bestScore := t.impurity(targets, idx)
	bestFeature, bestThreshold := -1, 0.0
	found := false

	type valTarget struct {
		v, t float64
	}
	for _, f := range features {
		pairs := make([]valTarget, len(idx))
		for k, i := range idx {
			pairs[k] = valTarget{X.At(i, f), targets[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		// Running sums let each candidate threshold be scored in O(1).
		n := float64(len(pairs))
		var leftSum, leftSq, totalSum, totalSq float64
		var leftPos, totalPos float64
		for _, p := range pairs {
			totalSum += p.t
			totalSq += p.t * p.t
			if p.t >= 0.5 {
				totalPos++
			}
		}

		for k := 0; k < len(pairs)-1; k++ {
			leftSum += pairs[k].t
			leftSq += pairs[k].t * pairs[k].t
			if pairs[k].t >= 0.5 {
				leftPos++
			}
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl

			var score float64
			if t.Regression {
				// Weighted variance of the two sides.
				varL := leftSq/nl - (leftSum/nl)*(leftSum/nl)
				rSum := totalSum - leftSum
				rSq := totalSq - leftSq
				varR := rSq/nr - (rSum/nr)*(rSum/nr)
				score = (nl*varL + nr*varR) / n
			} else {
				pl := leftPos / nl
				pr := (totalPos - leftPos) / nr
				giniL := 2 * pl * (1 - pl)
				giniR := 2 * pr * (1 - pr)
				score = (nl*giniL + nr*giniR) / n
			}

			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = (pairs[k].v + pairs[k+1].v) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// candidateFeatures returns all feature indices, or a random subset when
// MaxFeatures is set.
func (t *DecisionTree) candidateFeatures(cols int) []int {
	all := make([]int, cols)
	for i := range all {
		all[i] = i
	}
	if t.MaxFeatures <= 0 || t.MaxFeatures >= cols || t.rng == nil {
		return all
	}
	t.rng.Shuffle(cols, func(i, j int) { all[i], all[j] = all[j], all[i] })
	subset := all[:t.MaxFeatures]
	sort.Ints(subset)
	return subset
}

func (t *DecisionTree) impurity(targets []float64, idx []int) float64 {
	n := float64(len(idx))
	if n == 0 {
		return 0
	}
	if t.Regression {
		var sum, sq float64
		for _, i := range idx {
			sum += targets[i]
			sq += targets[i] * targets[i]
		}
		return sq/n - (sum/n)*(sum/n)
	}
	pos := 0.0
	for _, i := range idx {
		if targets[i] >= 0.5 {
			pos++
		}
	}
	p := pos / n
	return 2 * p * (1 - p)
}

func pure(targets []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if targets[i] != targets[idx[0]] {
			return false
		}
	}
	return true
}

// Predict returns the majority class at the leaf x lands in.
func (t *DecisionTree) Predict(x []float64) int {
	return argmaxProba(t.PredictProba(x))
}

// PredictProba returns the leaf class distribution for x.
func (t *DecisionTree) PredictProba(x []float64) []float64 {
	node := t.traverse(x)
	return []float64{node.Proba[0], node.Proba[1]}
}

// PredictValue returns the regression output for x.
func (t *DecisionTree) PredictValue(x []float64) float64 {
	return t.traverse(x).Value
}

func (t *DecisionTree) traverse(x []float64) *TreeNode {
	node := t.Root
	for node != nil && !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if node == nil {
		return &TreeNode{Leaf: true, Proba: [2]float64{0.5, 0.5}}
	}
	return node
}
