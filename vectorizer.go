package reviewguard

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("vectorizer not fitted")

// Vectorizer maps documents onto TF-IDF weighted n-gram vectors over a
// vocabulary learned at fit time. After Fit the instance is read-only:
// every Transform uses the exact vocabulary and column order learned then,
// so feature vectors stay comparable between training and inference.
type Vectorizer struct {
	cfg    VectorizerConfig
	vocab  map[string]int // n-gram -> column index
	idf    []float64      // by column index
	fitted bool
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	return &Vectorizer{cfg: cfg}
}

// Width returns the learned vocabulary size, 0 before Fit.
func (v *Vectorizer) Width() int {
	return len(v.vocab)
}

// Fit learns the n-gram vocabulary and inverse document frequencies from the
// corpus. Document-frequency pruning and the vocabulary cap apply here and
// only here.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("vectorizer: empty corpus")
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, gram := range v.ngrams(doc) {
			if !seen[gram] {
				df[gram]++
				seen[gram] = true
			}
		}
	}

	// Prune by document frequency.
	nDocs := len(docs)
	maxCount := int(v.cfg.MaxDF * float64(nDocs))
	terms := make([]string, 0, len(df))
	for gram, count := range df {
		if count < v.cfg.MinDF || count > maxCount {
			continue
		}
		terms = append(terms, gram)
	}

	// Cap the vocabulary at the most frequent terms, ties broken
	// lexicographically so the result is deterministic.
	if len(terms) > v.cfg.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if df[terms[i]] != df[terms[j]] {
				return df[terms[i]] > df[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.cfg.MaxFeatures]
	}
	sort.Strings(terms)

	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, gram := range terms {
		v.vocab[gram] = i
		// Smoothed IDF: behaves as if every term occurred in one extra
		// document, so unseen terms at transform time never divide by zero.
		v.idf[i] = math.Log(float64(1+nDocs)/float64(1+df[gram])) + 1
	}
	v.fitted = true
	return nil
}

// Transform maps docs onto the fitted vocabulary. Rows are L2-normalized
// TF-IDF weights; n-grams outside the vocabulary are ignored.
func (v *Vectorizer) Transform(docs []string) (*mat.Dense, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	width := len(v.vocab)
	out := mat.NewDense(len(docs), max(width, 1), nil)
	if width == 0 {
		return out, nil
	}

	row := make([]float64, width)
	for i, doc := range docs {
		for j := range row {
			row[j] = 0
		}
		for _, gram := range v.ngrams(doc) {
			if idx, ok := v.vocab[gram]; ok {
				row[idx]++
			}
		}
		normSq := 0.0
		for j := range row {
			row[j] *= v.idf[j]
			normSq += row[j] * row[j]
		}
		if normSq > 0 {
			scale := 1 / math.Sqrt(normSq)
			for j := range row {
				row[j] *= scale
			}
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// FitTransform fits the vocabulary and transforms the same corpus.
func (v *Vectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// ngrams expands a whitespace-tokenized document into n-grams of the
// configured range.
func (v *Vectorizer) ngrams(doc string) []string {
	tokens := strings.Fields(doc)
	var grams []string
	for size := v.cfg.NgramMin; size <= v.cfg.NgramMax; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+size], " "))
		}
	}
	return grams
}

// vectorizerState is the gob wire form of a fitted vectorizer.
type vectorizerState struct {
	Config VectorizerConfig
	Vocab  map[string]int
	IDF    []float64
	Fitted bool
}

// GobEncode serializes the fitted state so a reloaded vectorizer reproduces
// column order byte-identically.
func (v *Vectorizer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(vectorizerState{
		Config: v.cfg,
		Vocab:  v.vocab,
		IDF:    v.idf,
		Fitted: v.fitted,
	})
	return buf.Bytes(), err
}

// GobDecode restores a fitted vectorizer.
func (v *Vectorizer) GobDecode(data []byte) error {
	var state vectorizerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	v.cfg = state.Config
	v.vocab = state.Vocab
	v.idf = state.IDF
	v.fitted = state.Fitted
	return nil
}
