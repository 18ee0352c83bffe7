package reviewguard

import "time"

// A RawReview represents a single product review as delivered by a
// collaborator (scraper, CSV upload, or direct API call). It is consumed
// once by the pipeline and never mutated.
type RawReview struct {
	Text     string            // The review's body text.
	Rating   float64           // Star rating, 1.0-5.0.
	Platform string            // Optional source platform ("amazon", "flipkart", ...).
	Metadata map[string]string // Optional collaborator-supplied metadata.
}

// A LabeledReview is a RawReview paired with its ground-truth class label,
// used as training input.
type LabeledReview struct {
	Text   string
	Rating float64
	Label  string // One of LabelGenuine or LabelFake.
}

// Class labels understood by the pipeline. The label encoder maps these to
// integer codes 0 (genuine) and 1 (fake).
const (
	LabelGenuine = "genuine"
	LabelFake    = "fake"
)

// A Prediction is the verdict produced for a single review.
type Prediction struct {
	FakeProbability    float64            // Ensemble fake probability, 0-1.
	IsFake             bool               // FakeProbability >= the configured threshold.
	Confidence         float64            // |FakeProbability - 0.5| * 2, 0 at the boundary.
	ModelProbabilities map[string]float64 // Positive-class probability per base model.
	Reasons            []string           // Human-readable explanation, fixed rule order.
}

// A BatchResult carries the outcome for one row of a batch prediction. Rows
// that fail feature extraction report Err and leave Prediction zero-valued;
// a bad row never aborts the batch.
type BatchResult struct {
	Index      int
	Prediction Prediction
	Err        error
}

// ModelMetrics is the evaluation report computed on the held-out test split
// for a single model (or for the weighted ensemble). Precision, Recall and
// F1 are for the positive (fake) class; PerClass carries the full breakdown.
type ModelMetrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	ROCAUC    float64
	PerClass  [2]ClassMetrics // indexed by class code: 0 genuine, 1 fake
}

// ClassMetrics is one class's row of the evaluation report.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int // rows of this class in the test split
}

// TrainingInfo describes how a single model was fitted on the simple
// (non-ensemble) training path.
type TrainingInfo struct {
	ModelName    string
	BestParams   map[string]float64 // Winning grid-search parameters, empty without tuning.
	CVScore      float64            // Mean cross-validated accuracy.
	TrainingTime time.Duration
}

// PreprocessDepth selects how much normalization a text receives.
type PreprocessDepth int

const (
	// DepthLight cleans the text only. Used for near-duplicate detection,
	// where stopwords and inflection still carry signal.
	DepthLight PreprocessDepth = iota
	// DepthFull cleans, tokenizes, strips punctuation and stopwords, and
	// stems. Used to feed the n-gram vectorizer.
	DepthFull
)
