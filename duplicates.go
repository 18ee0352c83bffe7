package reviewguard

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// DuplicateDetector flags near-duplicate reviews inside a batch, a common
// spam-ring signal. Texts are lightly cleaned (no stopword removal or
// stemming: duplicated filler is exactly what we want to catch), TF-IDF
// vectorized, and compared pairwise by cosine similarity.
type DuplicateDetector struct {
	norm      *Normalizer
	threshold float64
	logger    *slog.Logger
}

// NewDuplicateDetector creates a detector with the given cosine-similarity
// threshold, which must lie in [0,1].
func NewDuplicateDetector(threshold float64, logger *slog.Logger) (*DuplicateDetector, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("duplicate detector: threshold %v outside [0,1]", threshold)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DuplicateDetector{
		norm:      NewNormalizer(logger),
		threshold: threshold,
		logger:    logger,
	}, nil
}

// Detect returns one flag per input text. An item is flagged when an earlier
// item is at least threshold-similar to it; the first occurrence is never
// flagged, and no item is compared against itself. Pairwise comparison is
// O(n²), acceptable for the bounded batches (<=10k) the API accepts.
func (d *DuplicateDetector) Detect(texts []string) ([]bool, error) {
	flags := make([]bool, len(texts))
	if len(texts) < 2 {
		return flags, nil
	}

	docs := make([]string, len(texts))
	for i, text := range texts {
		docs[i] = d.norm.Preprocess(text, DepthLight)
	}

	vec := NewVectorizer(VectorizerConfig{
		MaxFeatures: len(texts) * 64,
		NgramMin:    1,
		NgramMax:    1,
		MinDF:       1,
		MaxDF:       1.0,
	})
	tfidf, err := vec.FitTransform(docs)
	if err != nil {
		return nil, fmt.Errorf("duplicate detector: %w", err)
	}

	// Rows are already L2-normalized, so the Gram matrix holds cosine
	// similarities directly.
	var sims mat.Dense
	sims.Mul(tfidf, tfidf.T())

	flagged := 0
	for j := 1; j < len(texts); j++ {
		for i := 0; i < j; i++ {
			if sims.At(i, j) >= d.threshold {
				flags[j] = true
				flagged++
				break
			}
		}
	}
	d.logger.Debug("duplicate detection complete", "reviews", len(texts), "flagged", flagged)
	return flags, nil
}
