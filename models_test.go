package reviewguard

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// toyProblem is a linearly separable binary task shared by the model tests.
// Class 0 is heavy on the first feature, class 1 on the second, so models
// that discriminate on proportions (naive Bayes) separate it too.
func toyProblem() (*mat.Dense, []int) {
	rows := [][]float64{
		{5.0, 1.0}, {5.2, 0.9}, {4.8, 1.1}, {5.1, 1.2}, {4.9, 0.8},
		{5.3, 1.0}, {5.0, 1.1}, {4.7, 0.9},
		{1.0, 5.0}, {0.9, 5.2}, {1.1, 4.8}, {1.2, 5.1}, {0.8, 4.9},
		{1.0, 5.3}, {1.1, 5.0}, {0.9, 4.7},
	}
	X := mat.NewDense(len(rows), 2, nil)
	y := make([]int, len(rows))
	for i, row := range rows {
		X.SetRow(i, row)
		if i >= 8 {
			y[i] = 1
		}
	}
	return X, y
}

func TestBaseModelsSeparateToyProblem(t *testing.T) {
	X, y := toyProblem()

	models := map[string]BaseModel{
		"decision_tree":       NewDecisionTree(10),
		"random_forest":       NewRandomForest(20, 10, 42),
		"gradient_boosting":   NewGradientBoosting(50, 0.1, 3),
		"svm":                 NewSVC(1.0, true, 42),
		"naive_bayes":         &MultinomialNB{Alpha: 1.0},
		"logistic_regression": &LogisticRegression{LearningRate: 0.1, Iterations: 500, L2: 0.01},
		"knn":                 &KNN{K: 3},
	}

	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			if err := model.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			if got := model.Predict([]float64{5.0, 1.0}); got != 0 {
				t.Errorf("feature-0-heavy point classified as %d, want 0", got)
			}
			if got := model.Predict([]float64{1.0, 5.0}); got != 1 {
				t.Errorf("feature-1-heavy point classified as %d, want 1", got)
			}
		})
	}
}

func TestPredictProbaIsDistribution(t *testing.T) {
	X, y := toyProblem()

	models := map[string]BaseModel{
		"random_forest":       NewRandomForest(20, 10, 42),
		"gradient_boosting":   NewGradientBoosting(50, 0.1, 3),
		"svm":                 NewSVC(1.0, true, 42),
		"naive_bayes":         &MultinomialNB{Alpha: 1.0},
		"logistic_regression": &LogisticRegression{LearningRate: 0.1, Iterations: 500, L2: 0.01},
		"knn":                 &KNN{K: 3},
	}

	probes := [][]float64{{5.0, 1.0}, {1.0, 5.0}, {3.0, 3.0}}
	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			if err := model.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			for _, x := range probes {
				proba := model.PredictProba(x)
				if len(proba) != 2 {
					t.Fatalf("PredictProba returned %d values", len(proba))
				}
				if proba[0] < 0 || proba[1] < 0 {
					t.Errorf("negative probability %v for %v", proba, x)
				}
				if math.Abs(proba[0]+proba[1]-1) > 1e-9 {
					t.Errorf("probabilities %v for %v do not sum to 1", proba, x)
				}
			}
		})
	}
}

func TestModelsRejectMismatchedInput(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	badY := []int{0, 1} // one label short

	models := []BaseModel{
		NewDecisionTree(5),
		NewRandomForest(5, 5, 1),
		NewGradientBoosting(5, 0.1, 2),
		NewSVC(1.0, true, 1),
		&MultinomialNB{Alpha: 1.0},
		&LogisticRegression{LearningRate: 0.1, Iterations: 10},
		&KNN{K: 1},
	}
	for _, model := range models {
		if err := model.Fit(X, badY); err == nil {
			t.Errorf("%T accepted mismatched rows and labels", model)
		}
	}
}

func TestRandomForestIsDeterministicForSeed(t *testing.T) {
	X, y := toyProblem()

	a := NewRandomForest(10, 5, 7)
	b := NewRandomForest(10, 5, 7)
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	for _, x := range [][]float64{{5.0, 1.0}, {1.0, 5.0}, {3.0, 3.0}} {
		pa := a.PredictProba(x)
		pb := b.PredictProba(x)
		if pa[1] != pb[1] {
			t.Errorf("same seed gave different probabilities for %v: %v vs %v", x, pa[1], pb[1])
		}
	}
}

func TestGradientBoostingLearnsPrior(t *testing.T) {
	// On a one-sided dataset the initial score dominates and probabilities
	// should lean heavily toward the majority class.
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := []int{1, 1, 1, 0}

	g := NewGradientBoosting(5, 0.1, 2)
	if err := g.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if p := g.PredictProba([]float64{2.5})[1]; p <= 0.5 {
		t.Errorf("majority-positive prior gave p(fake) = %v, want > 0.5", p)
	}
}
