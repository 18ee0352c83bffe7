package reviewguard

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"
)

// TrainerConfig controls the multi-model training path.
type TrainerConfig struct {
	// CVFolds is the number of cross-validation folds used both for grid
	// search and for scoring untuned models.
	CVFolds int

	// Tuning enables hyperparameter grid search. When disabled each model
	// trains with its defaults and is still cross-validated once.
	Tuning bool

	// Seed fixes fold assignment and model randomness.
	Seed int64
}

// DefaultTrainerConfig returns the standard training configuration.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		CVFolds: 5,
		Tuning:  true,
		Seed:    42,
	}
}

// allModelKinds is the full roster the trainer knows how to build.
var allModelKinds = []ModelKind{
	KindNaiveBayes,
	KindRandomForest,
	KindSVM,
	KindLogisticRegression,
	KindDecisionTree,
	KindKNN,
}

// A Trainer fits a roster of classifiers on one extracted feature matrix,
// cross-validates each, and keeps the best by CV accuracy. It is the broad
// alternative to the fixed three-model ensemble: six model families, tuned
// independently, with a single winner persisted at the end.
type Trainer struct {
	cfg     TrainerConfig
	logger  *slog.Logger
	encoder LabelEncoder

	trained   map[ModelKind]BaseModel
	best      BaseModel
	bestKind  ModelKind
	bestScore float64
}

// NewTrainer creates a trainer with the given configuration.
func NewTrainer(cfg TrainerConfig, logger *slog.Logger) (*Trainer, error) {
	if cfg.CVFolds < 2 {
		return nil, fmt.Errorf("trainer: cv folds must be at least 2, got %d", cfg.CVFolds)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{
		cfg:     cfg,
		logger:  logger,
		trained: make(map[ModelKind]BaseModel),
	}, nil
}

// paramGrids returns the hyperparameter grid searched for each model kind.
// Values are numeric throughout so grids and best-parameter reports share
// one representation.
func paramGrids() map[ModelKind]map[string][]float64 {
	return map[ModelKind]map[string][]float64{
		KindNaiveBayes: {
			"alpha": {0.1, 0.5, 1.0, 2.0},
		},
		KindRandomForest: {
			"n_estimators": {50, 100},
			"max_depth":    {10, 20},
		},
		KindSVM: {
			"c":     {0.1, 1, 10},
			"gamma": {0, 0.1}, // 0 selects 1/nFeatures
		},
		KindLogisticRegression: {
			"c": {0.1, 1, 10},
		},
		KindDecisionTree: {
			"max_depth":         {10, 20},
			"min_samples_split": {2, 5, 10},
		},
		KindKNN: {
			"n_neighbors": {3, 5, 7, 9},
		},
	}
}

// newModel builds an unfitted model of the given kind with the given
// hyperparameters; missing parameters take the model's defaults.
func (t *Trainer) newModel(kind ModelKind, params map[string]float64) (BaseModel, error) {
	get := func(name string, fallback float64) float64 {
		if v, ok := params[name]; ok {
			return v
		}
		return fallback
	}
	switch kind {
	case KindNaiveBayes:
		return &MultinomialNB{Alpha: get("alpha", 1.0)}, nil
	case KindRandomForest:
		return NewRandomForest(int(get("n_estimators", 100)), int(get("max_depth", 20)), t.cfg.Seed), nil
	case KindSVM:
		svm := NewSVC(get("c", 1.0), true, t.cfg.Seed)
		svm.Gamma = get("gamma", 0)
		return svm, nil
	case KindLogisticRegression:
		return &LogisticRegression{
			LearningRate: 0.1,
			Iterations:   200,
			L2:           1 / get("c", 1.0),
		}, nil
	case KindDecisionTree:
		tree := NewDecisionTree(int(get("max_depth", 20)))
		tree.MinSamplesSplit = int(get("min_samples_split", 2))
		return tree, nil
	case KindKNN:
		return &KNN{K: int(get("n_neighbors", 5))}, nil
	default:
		return nil, fmt.Errorf("trainer: unknown model kind %q", kind)
	}
}

// TrainAll fits every model kind on the feature matrix, cross-validating
// each and tracking the best by CV accuracy. One model failing to train does
// not abort the others; its entry carries the error through the log and is
// omitted from the results.
func (t *Trainer) TrainAll(X *mat.Dense, labels []string) (map[string]TrainingInfo, error) {
	rows, _ := X.Dims()
	if rows == 0 || rows != len(labels) {
		return nil, fmt.Errorf("trainer: %d feature rows but %d labels", rows, len(labels))
	}
	if rows < t.cfg.CVFolds {
		return nil, fmt.Errorf("trainer: %d rows cannot fill %d cross-validation folds", rows, t.cfg.CVFolds)
	}
	if err := t.encoder.FitLabels(labels); err != nil {
		return nil, err
	}
	y, err := t.encoder.Encode(labels)
	if err != nil {
		return nil, err
	}

	results := make(map[string]TrainingInfo, len(allModelKinds))
	for _, kind := range allModelKinds {
		info, err := t.trainOne(kind, X, y)
		if err != nil {
			t.logger.Error("model training failed", "model", string(kind), "error", err)
			continue
		}
		results[string(kind)] = info
		if t.best == nil || info.CVScore > t.bestScore {
			t.bestScore = info.CVScore
			t.best = t.trained[kind]
			t.bestKind = kind
		}
	}
	if t.best == nil {
		return nil, fmt.Errorf("trainer: every model failed to train")
	}
	t.logger.Info("best model selected", "model", string(t.bestKind), "cv_score", t.bestScore)
	return results, nil
}

// trainOne grid-searches (or default-fits) a single model kind and refits
// the winning configuration on the full matrix.
func (t *Trainer) trainOne(kind ModelKind, X *mat.Dense, y []int) (TrainingInfo, error) {
	t.logger.Info("training model", "model", string(kind), "tuning", t.cfg.Tuning)
	start := time.Now()

	candidates := []map[string]float64{nil}
	if t.cfg.Tuning {
		if grid := paramGrids()[kind]; len(grid) > 0 {
			candidates = expandGrid(grid)
		}
	}

	bestScore := -1.0
	var bestParams map[string]float64
	for _, params := range candidates {
		score, err := t.crossValidate(kind, params, X, y)
		if err != nil {
			return TrainingInfo{}, err
		}
		if score > bestScore {
			bestScore = score
			bestParams = params
		}
	}

	model, err := t.newModel(kind, bestParams)
	if err != nil {
		return TrainingInfo{}, err
	}
	if err := model.Fit(X, y); err != nil {
		return TrainingInfo{}, err
	}
	t.trained[kind] = model

	info := TrainingInfo{
		ModelName:    string(kind),
		BestParams:   bestParams,
		CVScore:      bestScore,
		TrainingTime: time.Since(start),
	}
	t.logger.Info("model trained",
		"model", string(kind),
		"cv_score", info.CVScore,
		"elapsed", info.TrainingTime)
	return info, nil
}

// crossValidate returns mean fold accuracy for one hyperparameter setting.
func (t *Trainer) crossValidate(kind ModelKind, params map[string]float64, X *mat.Dense, y []int) (float64, error) {
	rng := rand.New(rand.NewSource(t.cfg.Seed))
	folds := kFoldIndices(len(y), t.cfg.CVFolds, rng)

	total := 0.0
	for _, testIdx := range folds {
		inTest := make(map[int]bool, len(testIdx))
		for _, i := range testIdx {
			inTest[i] = true
		}
		trainIdx := make([]int, 0, len(y)-len(testIdx))
		for i := range y {
			if !inTest[i] {
				trainIdx = append(trainIdx, i)
			}
		}

		XTrain, yTrain := selectRows(X, y, trainIdx)
		XTest, yTest := selectRows(X, y, testIdx)

		model, err := t.newModel(kind, params)
		if err != nil {
			return 0, err
		}
		if err := model.Fit(XTrain, yTrain); err != nil {
			return 0, err
		}
		correct := 0
		for i := range yTest {
			if model.Predict(rowOf(XTest, i)) == yTest[i] {
				correct++
			}
		}
		total += float64(correct) / float64(len(yTest))
	}
	return total / float64(len(folds)), nil
}

// expandGrid enumerates the cartesian product of a hyperparameter grid.
// Parameter names are iterated in sorted order so the enumeration, and
// therefore tie-breaking between equal scores, is deterministic.
func expandGrid(grid map[string][]float64) []map[string]float64 {
	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}

	out := []map[string]float64{{}}
	for _, name := range names {
		next := make([]map[string]float64, 0, len(out)*len(grid[name]))
		for _, partial := range out {
			for _, value := range grid[name] {
				combo := make(map[string]float64, len(partial)+1)
				for k, v := range partial {
					combo[k] = v
				}
				combo[name] = value
				next = append(next, combo)
			}
		}
		out = next
	}
	return out
}

// PredictBest classifies one feature vector with the best model. Confidence
// here is the winning class's raw probability, not the centered confidence
// the ensemble reports.
func (t *Trainer) PredictBest(x []float64) (label string, confidence float64, err error) {
	if t.best == nil {
		return "", 0, ErrNotTrained
	}
	proba := t.best.PredictProba(x)
	code := argmaxProba(proba)
	decoded, err := t.encoder.Decode([]int{code})
	if err != nil {
		return "", 0, err
	}
	return decoded[0], proba[code], nil
}

// BestModelName reports which model kind won cross-validation.
func (t *Trainer) BestModelName() string { return string(t.bestKind) }

// savedModel is the on-disk envelope for a single persisted model.
type savedModel struct {
	Kind    ModelKind
	Model   BaseModel
	Encoder LabelEncoder
}

func init() {
	gob.Register(&MultinomialNB{})
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
	gob.Register(&SVC{})
	gob.Register(&LogisticRegression{})
	gob.Register(&DecisionTree{})
	gob.Register(&KNN{})
}

// SaveBest persists the best model together with the label encoder.
func (t *Trainer) SaveBest(path string) error {
	if t.best == nil {
		return ErrNotTrained
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("trainer: save: %w", err)
	}
	envelope := savedModel{Kind: t.bestKind, Model: t.best, Encoder: t.encoder}
	if err := writeGob(path, &envelope); err != nil {
		return fmt.Errorf("trainer: save %s: %w", path, err)
	}
	t.logger.Info("best model saved", "model", string(t.bestKind), "path", path)
	return nil
}

// LoadBest restores a model saved with SaveBest.
func (t *Trainer) LoadBest(path string) error {
	var envelope savedModel
	if err := readGob(path, &envelope); err != nil {
		return fmt.Errorf("trainer: load %s: %w", path, err)
	}
	t.best = envelope.Model
	t.bestKind = envelope.Kind
	t.encoder = envelope.Encoder
	t.trained[envelope.Kind] = envelope.Model
	t.logger.Info("model loaded", "model", string(t.bestKind), "path", path)
	return nil
}
