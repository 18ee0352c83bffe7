package reviewguard

import (
	"math/rand"
	"sort"
)

// calculateMetrics computes the standard binary-classification report for
// predicted labels and positive-class probabilities against ground truth.
// Zero-division cases (no predicted or no actual positives) report 0, not
// NaN.
func calculateMetrics(yTrue, yPred []int, yProba []float64) ModelMetrics {
	var tp, fp, tn, fn float64
	correct := 0
	for i := range yTrue {
		if yPred[i] == yTrue[i] {
			correct++
		}
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1 && yTrue[i] == 0:
			fp++
		case yPred[i] == 0 && yTrue[i] == 0:
			tn++
		default:
			fn++
		}
	}

	m := ModelMetrics{}
	if len(yTrue) > 0 {
		m.Accuracy = float64(correct) / float64(len(yTrue))
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.ROCAUC = rocAUC(yTrue, yProba)

	// The negative class mirrors the confusion matrix.
	m.PerClass[0] = classMetrics(tn, fn, fp, int(tn+fp))
	m.PerClass[1] = classMetrics(tp, fp, fn, int(tp+fn))
	return m
}

// classMetrics builds one class's report row from its own true-positive,
// false-positive and false-negative counts.
func classMetrics(tp, fp, fn float64, support int) ClassMetrics {
	c := ClassMetrics{Support: support}
	if tp+fp > 0 {
		c.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		c.Recall = tp / (tp + fn)
	}
	if c.Precision+c.Recall > 0 {
		c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
	}
	return c
}

// rocAUC computes the area under the ROC curve via the rank-sum equivalence:
// AUC is the probability a random positive scores above a random negative,
// with ties counted half.
func rocAUC(yTrue []int, yProba []float64) float64 {
	type scored struct {
		p float64
		y int
	}
	items := make([]scored, len(yTrue))
	pos, neg := 0.0, 0.0
	for i := range yTrue {
		items[i] = scored{yProba[i], yTrue[i]}
		if yTrue[i] == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}

	sort.Slice(items, func(i, j int) bool { return items[i].p < items[j].p })

	// Assign average ranks to tied scores.
	ranks := make([]float64, len(items))
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].p == items[i].p {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	rankSum := 0.0
	for i, it := range items {
		if it.y == 1 {
			rankSum += ranks[i]
		}
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}

// stratifiedSplit partitions row indices into train and test sets,
// preserving the class balance of y. The rng fixes the shuffle so a given
// seed always yields the same split.
func stratifiedSplit(y []int, testFraction float64, rng *rand.Rand) (trainIdx, testIdx []int) {
	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	for _, label := range classes {
		idx := byClass[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(float64(len(idx)) * testFraction)
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}

// kFoldIndices splits n shuffled row indices into k folds for
// cross-validation. The last fold absorbs the remainder.
func kFoldIndices(n, k int, rng *rand.Rand) [][]int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	folds := make([][]int, k)
	foldSize := n / k
	start := 0
	for f := 0; f < k; f++ {
		end := start + foldSize
		if f == k-1 {
			end = n
		}
		folds[f] = idx[start:end]
		start = end
	}
	return folds
}
