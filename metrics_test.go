package reviewguard

import (
	"math"
	"math/rand"
	"testing"
)

func TestCalculateMetricsKnownValues(t *testing.T) {
	yTrue := []int{1, 1, 1, 0, 0, 0}
	yPred := []int{1, 1, 0, 0, 0, 1}
	yProba := []float64{0.9, 0.8, 0.4, 0.2, 0.1, 0.6}

	m := calculateMetrics(yTrue, yPred, yProba)

	if math.Abs(m.Accuracy-4.0/6.0) > 1e-12 {
		t.Errorf("Accuracy = %v, want %v", m.Accuracy, 4.0/6.0)
	}
	if math.Abs(m.Precision-2.0/3.0) > 1e-12 {
		t.Errorf("Precision = %v, want %v", m.Precision, 2.0/3.0)
	}
	if math.Abs(m.Recall-2.0/3.0) > 1e-12 {
		t.Errorf("Recall = %v, want %v", m.Recall, 2.0/3.0)
	}
	if math.Abs(m.F1-2.0/3.0) > 1e-12 {
		t.Errorf("F1 = %v, want %v", m.F1, 2.0/3.0)
	}

	// Per-class breakdown: class 0 has tn=2 of pred-negative 3 and actual
	// negative 3; supports mirror the label counts.
	if m.PerClass[0].Support != 3 || m.PerClass[1].Support != 3 {
		t.Errorf("supports = %d/%d, want 3/3", m.PerClass[0].Support, m.PerClass[1].Support)
	}
	if math.Abs(m.PerClass[0].Precision-2.0/3.0) > 1e-12 {
		t.Errorf("class-0 precision = %v, want %v", m.PerClass[0].Precision, 2.0/3.0)
	}
	if math.Abs(m.PerClass[0].Recall-2.0/3.0) > 1e-12 {
		t.Errorf("class-0 recall = %v, want %v", m.PerClass[0].Recall, 2.0/3.0)
	}
	if m.PerClass[1].Precision != m.Precision || m.PerClass[1].Recall != m.Recall {
		t.Error("class-1 breakdown should match the top-level positive metrics")
	}
}

func TestCalculateMetricsZeroDivision(t *testing.T) {
	// No predicted positives and no actual positives: everything defined as 0.
	m := calculateMetrics([]int{0, 0}, []int{0, 0}, []float64{0.1, 0.2})
	if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
		t.Errorf("zero-division metrics = %+v, want zeros", m)
	}
	if m.Accuracy != 1 {
		t.Errorf("Accuracy = %v, want 1", m.Accuracy)
	}
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		yTrue  []int
		yProba []float64
		want   float64
		desc   string
	}{
		{[]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1.0, "Perfect separation"},
		{[]int{0, 0, 1, 1}, []float64{0.8, 0.9, 0.1, 0.2}, 0.0, "Perfectly inverted"},
		{[]int{0, 1}, []float64{0.5, 0.5}, 0.5, "All tied"},
		{[]int{0, 1, 0, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 1.0, "Separable despite interleaving"},
		{[]int{1, 1}, []float64{0.9, 0.8}, 0.0, "Single class defined as 0"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := rocAUC(tt.yTrue, tt.yProba)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("rocAUC = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStratifiedSplit(t *testing.T) {
	// 8 genuine, 4 fake.
	y := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	rng := rand.New(rand.NewSource(1))

	trainIdx, testIdx := stratifiedSplit(y, 0.25, rng)

	if len(trainIdx)+len(testIdx) != len(y) {
		t.Fatalf("split sizes %d+%d != %d", len(trainIdx), len(testIdx), len(y))
	}
	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, trainIdx...), testIdx...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}

	testFake := 0
	for _, i := range testIdx {
		if y[i] == 1 {
			testFake++
		}
	}
	if testFake != 1 {
		t.Errorf("test split has %d fake rows, want 1 (25%% of 4)", testFake)
	}
	if len(testIdx) != 3 {
		t.Errorf("test split has %d rows, want 3", len(testIdx))
	}
}

func TestStratifiedSplitIsDeterministic(t *testing.T) {
	y := []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}

	train1, test1 := stratifiedSplit(y, 0.2, rand.New(rand.NewSource(7)))
	train2, test2 := stratifiedSplit(y, 0.2, rand.New(rand.NewSource(7)))

	if len(train1) != len(train2) || len(test1) != len(test2) {
		t.Fatal("same seed produced different split sizes")
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Errorf("test index %d differs: %d vs %d", i, test1[i], test2[i])
		}
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Errorf("train index %d differs: %d vs %d", i, train1[i], train2[i])
		}
	}
}

func TestKFoldIndices(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	folds := kFoldIndices(10, 3, rng)

	if len(folds) != 3 {
		t.Fatalf("got %d folds, want 3", len(folds))
	}
	seen := make(map[int]bool)
	total := 0
	for _, fold := range folds {
		total += len(fold)
		for _, i := range fold {
			if seen[i] {
				t.Fatalf("index %d appears in two folds", i)
			}
			seen[i] = true
		}
	}
	if total != 10 {
		t.Errorf("folds cover %d indices, want 10", total)
	}
	if len(folds[2]) != 4 {
		t.Errorf("last fold has %d indices, want 4 (absorbs remainder)", len(folds[2]))
	}
}
