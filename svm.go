package reviewguard

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// SVC is an RBF-kernel support vector classifier trained with a simplified
// SMO procedure. Probability estimates come from Platt scaling fitted on the
// training decision values; they are only available when the model was
// constructed with probability support, which the ensemble requires.
type SVC struct {
	C           float64
	Gamma       float64 // 0 means 1/nFeatures ("scale"-like)
	Probability bool
	Seed        int64

	Alphas    []float64   // per support vector, already multiplied by label
	Bias      float64
	Support   [][]float64 // support vectors
	PlattA    float64
	PlattB    float64
	GammaUsed float64
}

// NewSVC returns an unfitted RBF SVM. probability must be true for the
// model to be usable inside the ensemble.
func NewSVC(c float64, probability bool, seed int64) *SVC {
	return &SVC{C: c, Probability: probability, Seed: seed}
}

// Fit runs SMO on the training set, then fits the Platt sigmoid when
// probability support is enabled.
func (s *SVC) Fit(X *mat.Dense, y []int) error {
	rows, cols := X.Dims()
	if rows == 0 || rows != len(y) {
		return fmt.Errorf("svm: %d rows but %d labels", rows, len(y))
	}
	if s.C <= 0 {
		s.C = 1.0
	}
	s.GammaUsed = s.Gamma
	if s.GammaUsed <= 0 {
		s.GammaUsed = 1 / float64(cols)
	}

	// Labels in {-1, +1} for the dual problem.
	signs := make([]float64, rows)
	for i, label := range y {
		if label == 1 {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}

	points := make([][]float64, rows)
	for i := range points {
		points[i] = rowOf(X, i)
	}

	// Precomputed kernel matrix; batches are bounded so O(n²) memory is
	// acceptable here, same as the duplicate detector.
	kernel := make([][]float64, rows)
	for i := range kernel {
		kernel[i] = make([]float64, rows)
		for j := 0; j <= i; j++ {
			k := s.rbf(points[i], points[j])
			kernel[i][j] = k
			kernel[j][i] = k
		}
	}

	alphas := make([]float64, rows)
	bias := 0.0
	rng := rand.New(rand.NewSource(s.Seed))

	const (
		tol       = 1e-3
		maxPasses = 10
	)
	fx := func(i int) float64 {
		sum := bias
		for j := 0; j < rows; j++ {
			if alphas[j] > 0 {
				sum += alphas[j] * signs[j] * kernel[i][j]
			}
		}
		return sum
	}

	passes := 0
	for passes < maxPasses {
		changed := 0
		for i := 0; i < rows; i++ {
			ei := fx(i) - signs[i]
			if !((signs[i]*ei < -tol && alphas[i] < s.C) || (signs[i]*ei > tol && alphas[i] > 0)) {
				continue
			}
			j := rng.Intn(rows - 1)
			if j >= i {
				j++
			}
			ej := fx(j) - signs[j]

			alphaIOld, alphaJOld := alphas[i], alphas[j]
			var lo, hi float64
			if signs[i] != signs[j] {
				lo = math.Max(0, alphas[j]-alphas[i])
				hi = math.Min(s.C, s.C+alphas[j]-alphas[i])
			} else {
				lo = math.Max(0, alphas[i]+alphas[j]-s.C)
				hi = math.Min(s.C, alphas[i]+alphas[j])
			}
			if lo == hi {
				continue
			}
			eta := 2*kernel[i][j] - kernel[i][i] - kernel[j][j]
			if eta >= 0 {
				continue
			}

			alphas[j] -= signs[j] * (ei - ej) / eta
			alphas[j] = math.Min(math.Max(alphas[j], lo), hi)
			if math.Abs(alphas[j]-alphaJOld) < 1e-5 {
				continue
			}
			alphas[i] += signs[i] * signs[j] * (alphaJOld - alphas[j])

			b1 := bias - ei - signs[i]*(alphas[i]-alphaIOld)*kernel[i][i] -
				signs[j]*(alphas[j]-alphaJOld)*kernel[i][j]
			b2 := bias - ej - signs[i]*(alphas[i]-alphaIOld)*kernel[i][j] -
				signs[j]*(alphas[j]-alphaJOld)*kernel[j][j]
			switch {
			case alphas[i] > 0 && alphas[i] < s.C:
				bias = b1
			case alphas[j] > 0 && alphas[j] < s.C:
				bias = b2
			default:
				bias = (b1 + b2) / 2
			}
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	// Keep only support vectors.
	s.Alphas = s.Alphas[:0]
	s.Support = s.Support[:0]
	for i, a := range alphas {
		if a > 1e-8 {
			s.Alphas = append(s.Alphas, a*signs[i])
			s.Support = append(s.Support, points[i])
		}
	}
	s.Bias = bias

	if s.Probability {
		decisions := make([]float64, rows)
		for i := range points {
			decisions[i] = s.decision(points[i])
		}
		s.PlattA, s.PlattB = fitPlatt(decisions, y)
	}
	return nil
}

// decision evaluates the raw SVM decision function for x.
func (s *SVC) decision(x []float64) float64 {
	sum := s.Bias
	for i, sv := range s.Support {
		sum += s.Alphas[i] * s.rbf(sv, x)
	}
	return sum
}

func (s *SVC) rbf(a, b []float64) float64 {
	distSq := 0.0
	for i := range a {
		d := a[i] - b[i]
		distSq += d * d
	}
	return math.Exp(-s.GammaUsed * distSq)
}

// Predict returns the sign of the decision function.
func (s *SVC) Predict(x []float64) int {
	if s.decision(x) >= 0 {
		return 1
	}
	return 0
}

// PredictProba returns Platt-scaled probabilities. Without probability
// support it degrades to a hard 0/1 distribution; the ensemble constructor
// rejects that configuration before it can matter.
func (s *SVC) PredictProba(x []float64) []float64 {
	if !s.Probability {
		if s.Predict(x) == 1 {
			return []float64{0, 1}
		}
		return []float64{1, 0}
	}
	p := sigmoid(-(s.PlattA*s.decision(x) + s.PlattB))
	return []float64{1 - p, p}
}

// fitPlatt fits the sigmoid p = 1/(1+exp(A*f+B)) mapping decision values to
// probabilities, by gradient descent on the cross-entropy with the smoothed
// targets from Platt's original formulation.
func fitPlatt(decisions []float64, y []int) (a, b float64) {
	nPos, nNeg := 0.0, 0.0
	for _, label := range y {
		if label == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	tPos := (nPos + 1) / (nPos + 2)
	tNeg := 1 / (nNeg + 2)

	a, b = 0, math.Log((nNeg+1)/(nPos+1))
	lr := 0.01
	for iter := 0; iter < 500; iter++ {
		var gradA, gradB float64
		for i, f := range decisions {
			target := tNeg
			if y[i] == 1 {
				target = tPos
			}
			p := sigmoid(-(a*f + b))
			diff := target - p // dL/dz for z = a*f + b
			gradA += diff * f
			gradB += diff
		}
		a -= lr * gradA
		b -= lr * gradB
	}
	return a, b
}
