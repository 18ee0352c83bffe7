package reviewguard

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// ErrNotTrained is returned by inference and persistence operations on a
// classifier that has neither been trained nor loaded.
var ErrNotTrained = errors.New("classifier not trained")

type classifierState int

const (
	stateUninitialized classifierState = iota
	stateFitted
	stateLoaded
)

// Classifier scores reviews with a weighted ensemble of three base models:
// a random forest, gradient-boosted trees, and an RBF SVM, in that fixed
// order (the configured weights apply in the same order).
//
// Lifecycle: Uninitialized -> Fitted (via Train) -> optionally persisted via
// Save; Load moves a fresh instance directly to Loaded, which is equivalent
// to Fitted for inference but not a basis for incremental training.
//
// Train takes exclusive access for the duration of the call; Predict, Save
// and batch prediction share a read lock, so concurrent inference over the
// immutable fitted artifacts is safe.
type Classifier struct {
	mu sync.RWMutex

	cfg       Config
	extractor *Extractor
	forest    *RandomForest
	boosting  *GradientBoosting
	svm       *SVC
	encoder   LabelEncoder
	logger    *slog.Logger

	state classifierState
	width int // feature width fixed at train/load time
}

// A ClassifierOpt overrides one of the classifier's defaults.
type ClassifierOpt func(*Classifier)

// WithEmbedder attaches an optional embedding backend. It is probed once at
// construction; on failure the classifier runs without embeddings.
func WithEmbedder(embedder Embedder) ClassifierOpt {
	return func(c *Classifier) {
		c.extractor = NewExtractor(c.cfg.Vectorizer, embedder, c.logger)
	}
}

// WithSVM replaces the default SVM base model.
func WithSVM(svm *SVC) ClassifierOpt {
	return func(c *Classifier) { c.svm = svm }
}

// WithForest replaces the default random-forest base model.
func WithForest(forest *RandomForest) ClassifierOpt {
	return func(c *Classifier) { c.forest = forest }
}

// WithBoosting replaces the default gradient-boosting base model.
func WithBoosting(boosting *GradientBoosting) ClassifierOpt {
	return func(c *Classifier) { c.boosting = boosting }
}

// NewClassifier builds an untrained ensemble classifier. Configuration
// problems -- invalid weights or thresholds, or a base model without
// probability support -- fail here, never at predict time.
func NewClassifier(cfg Config, logger *slog.Logger, opts ...ClassifierOpt) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Classifier{
		cfg:      cfg,
		logger:   logger,
		forest:   NewRandomForest(100, 20, cfg.Seed),
		boosting: NewGradientBoosting(100, 0.1, 6),
		svm:      NewSVC(1.0, true, cfg.Seed),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.extractor == nil {
		c.extractor = NewExtractor(cfg.Vectorizer, nil, logger)
	}
	if !c.svm.Probability {
		return nil, fmt.Errorf("classifier: svm base model lacks probability support")
	}
	return c, nil
}

// Train fits the vectorizer and all three base models on the labeled
// corpus, evaluating each on a stratified held-out split. The returned map
// is keyed by model name plus "ensemble". Training failures are fatal: the
// classifier stays in its previous state on error.
func (c *Classifier) Train(data []LabeledReview) (map[string]ModelMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(data) < 10 {
		return nil, fmt.Errorf("classifier: need at least 10 labeled reviews, got %d", len(data))
	}

	texts := make([]string, len(data))
	ratings := make([]float64, len(data))
	labels := make([]string, len(data))
	for i, row := range data {
		if err := validateReview(row.Text, row.Rating); err != nil {
			return nil, fmt.Errorf("classifier: training row %d: %w", i, err)
		}
		texts[i] = row.Text
		ratings[i] = row.Rating
		labels[i] = row.Label
	}

	if err := c.encoder.FitLabels(labels); err != nil {
		return nil, err
	}
	y, err := c.encoder.Encode(labels)
	if err != nil {
		return nil, err
	}

	c.logger.Info("extracting features", "reviews", len(data))
	X, err := c.extractor.FitTransform(texts, ratings)
	if err != nil {
		return nil, fmt.Errorf("classifier: feature extraction: %w", err)
	}
	_, width := X.Dims()

	rng := rand.New(rand.NewSource(c.cfg.Seed))
	trainIdx, testIdx := stratifiedSplit(y, c.cfg.TestFraction, rng)
	XTrain, yTrain := selectRows(X, y, trainIdx)
	XTest, yTest := selectRows(X, y, testIdx)

	metrics := make(map[string]ModelMetrics, 4)
	probas := make([][]float64, 3)
	models := [3]BaseModel{c.forest, c.boosting, c.svm}
	for m, model := range models {
		kind := ensembleKinds[m]
		c.logger.Info("training base model", "model", string(kind))
		if err := model.Fit(XTrain, yTrain); err != nil {
			return nil, fmt.Errorf("classifier: train %s: %w", kind, err)
		}
		proba := make([]float64, len(yTest))
		pred := make([]int, len(yTest))
		for i := range yTest {
			row := rowOf(XTest, i)
			proba[i] = model.PredictProba(row)[1]
			pred[i] = model.Predict(row)
		}
		probas[m] = proba
		metrics[string(kind)] = calculateMetrics(yTest, pred, proba)
	}

	// Ensemble metrics on the same held-out split.
	ensembleProba := make([]float64, len(yTest))
	ensemblePred := make([]int, len(yTest))
	for i := range yTest {
		p := c.cfg.EnsembleWeights[0]*probas[0][i] +
			c.cfg.EnsembleWeights[1]*probas[1][i] +
			c.cfg.EnsembleWeights[2]*probas[2][i]
		ensembleProba[i] = p
		if p >= c.cfg.PredictionThreshold {
			ensemblePred[i] = 1
		}
	}
	metrics["ensemble"] = calculateMetrics(yTest, ensemblePred, ensembleProba)

	c.state = stateFitted
	c.width = width
	c.logger.Info("training complete",
		"ensemble_accuracy", metrics["ensemble"].Accuracy,
		"ensemble_f1", metrics["ensemble"].F1)
	return metrics, nil
}

// Predict scores one review. The fitted artifacts are read-only here, so
// any number of Predict calls may run concurrently.
func (c *Classifier) Predict(text string, rating float64) (Prediction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.predictLocked(text, rating)
}

func (c *Classifier) predictLocked(text string, rating float64) (Prediction, error) {
	if c.state == stateUninitialized {
		return Prediction{}, ErrNotTrained
	}
	if err := validateReview(text, rating); err != nil {
		return Prediction{}, err
	}

	X, err := c.extractor.Transform([]string{text}, []float64{rating})
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier: feature extraction: %w", err)
	}
	if _, width := X.Dims(); width != c.width {
		return Prediction{}, fmt.Errorf("%w: extractor produced %d columns, model expects %d",
			ErrWidthMismatch, width, c.width)
	}
	x := rowOf(X, 0)

	pForest := c.forest.PredictProba(x)[1]
	pBoost := c.boosting.PredictProba(x)[1]
	pSVM := c.svm.PredictProba(x)[1]
	p := c.cfg.EnsembleWeights[0]*pForest +
		c.cfg.EnsembleWeights[1]*pBoost +
		c.cfg.EnsembleWeights[2]*pSVM

	features := c.extractor.Extract(text, rating)
	return Prediction{
		FakeProbability: p,
		IsFake:          p >= c.cfg.PredictionThreshold,
		Confidence:      abs(p-0.5) * 2,
		ModelProbabilities: map[string]float64{
			string(KindRandomForest):     pForest,
			string(KindGradientBoosting): pBoost,
			string(KindSVM):              pSVM,
		},
		Reasons: Explain(features, p),
	}, nil
}

// bundleManifest records the feature geometry the bundle was trained with,
// so a load into a differently-configured extractor (say, one with an
// embedder the training run did not have) fails instead of silently feeding
// the models wider vectors than they were fitted on.
type bundleManifest struct {
	Width int
}

// artifactFiles maps each piece of the bundle to its file inside a version
// directory. The pieces round-trip as one unit: Save writes all of them to
// a staging directory and renames it into place, so a version is either
// complete or absent.
var artifactFiles = map[string]func(c *Classifier) any{
	"forest.gob":     func(c *Classifier) any { return c.forest },
	"boosting.gob":   func(c *Classifier) any { return c.boosting },
	"svm.gob":        func(c *Classifier) any { return c.svm },
	"vectorizer.gob": func(c *Classifier) any { return c.extractor.vec },
	"weights.gob":    func(c *Classifier) any { return &c.cfg.EnsembleWeights },
	"labels.gob":     func(c *Classifier) any { return &c.encoder },
	"manifest.gob":   func(c *Classifier) any { return &bundleManifest{Width: c.width} },
}

// Save persists the trained bundle (three models, vectorizer, ensemble
// weights, label encoder) under the given version.
func (c *Classifier) Save(version string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == stateUninitialized {
		return ErrNotTrained
	}
	if version == "" {
		return fmt.Errorf("classifier: empty version")
	}

	if err := os.MkdirAll(c.cfg.ModelPath, 0o755); err != nil {
		return fmt.Errorf("classifier: save: %w", err)
	}
	staging, err := os.MkdirTemp(c.cfg.ModelPath, ".staging-"+version+"-")
	if err != nil {
		return fmt.Errorf("classifier: save: %w", err)
	}
	defer os.RemoveAll(staging)

	for name, pick := range artifactFiles {
		if err := writeGob(filepath.Join(staging, name), pick(c)); err != nil {
			return fmt.Errorf("classifier: save %s: %w", name, err)
		}
	}

	final := filepath.Join(c.cfg.ModelPath, version)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("classifier: save: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("classifier: save: %w", err)
	}
	c.logger.Info("model bundle saved", "version", version, "path", final)
	return nil
}

// Load restores a persisted bundle. The loaded instance reproduces the
// predictions of the instance that saved it, bit for bit, given the same
// inputs.
func (c *Classifier) Load(version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.cfg.ModelPath, version)
	forest := &RandomForest{}
	boosting := &GradientBoosting{}
	svm := &SVC{}
	vec := &Vectorizer{}
	var weights [3]float64
	encoder := &LabelEncoder{}
	manifest := &bundleManifest{}

	targets := map[string]any{
		"forest.gob":     forest,
		"boosting.gob":   boosting,
		"svm.gob":        svm,
		"vectorizer.gob": vec,
		"weights.gob":    &weights,
		"labels.gob":     encoder,
		"manifest.gob":   manifest,
	}
	for name, target := range targets {
		if err := readGob(filepath.Join(dir, name), target); err != nil {
			return fmt.Errorf("classifier: load %s/%s: %w", version, name, err)
		}
	}
	if !svm.Probability {
		return fmt.Errorf("classifier: loaded svm lacks probability support")
	}

	// The current extractor must reproduce the geometry the bundle was
	// trained with; anything else would feed the models vectors they were
	// never fitted on.
	width := vec.Width() + numNamedFeatures
	if c.extractor.embedder != nil {
		width += c.extractor.embedder.Width()
	}
	if width != manifest.Width {
		return fmt.Errorf("classifier: load %s: %w: extractor produces %d columns, bundle trained with %d",
			version, ErrWidthMismatch, width, manifest.Width)
	}

	c.forest = forest
	c.boosting = boosting
	c.svm = svm
	c.extractor.vec = vec
	c.cfg.EnsembleWeights = weights
	c.encoder = *encoder
	c.width = manifest.Width
	c.state = stateLoaded
	c.logger.Info("model bundle loaded", "version", version, "width", c.width)
	return nil
}

// Threshold returns the configured fake-probability cutoff.
func (c *Classifier) Threshold() float64 { return c.cfg.PredictionThreshold }

// validateReview rejects input the pipeline must not coerce.
func validateReview(text string, rating float64) error {
	if text == "" {
		return fmt.Errorf("review text is empty")
	}
	if rating < 1.0 || rating > 5.0 {
		return fmt.Errorf("rating %v outside [1,5]", rating)
	}
	return nil
}

// selectRows builds a dense submatrix and label slice from row indices.
func selectRows(X *mat.Dense, y []int, idx []int) (*mat.Dense, []int) {
	_, cols := X.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	outY := make([]int, len(idx))
	for k, i := range idx {
		out.SetRow(k, rowOf(X, i))
		outY[k] = y[i]
	}
	return out, outY
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}
