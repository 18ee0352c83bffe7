package reviewguard

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"testing"
)

func unigramConfig(maxFeatures int) VectorizerConfig {
	return VectorizerConfig{MaxFeatures: maxFeatures, NgramMin: 1, NgramMax: 1, MinDF: 1, MaxDF: 1.0}
}

func TestTransformBeforeFit(t *testing.T) {
	v := NewVectorizer(unigramConfig(100))
	if _, err := v.Transform([]string{"anything"}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Transform before Fit: got %v, want ErrNotFitted", err)
	}
}

func TestFitEmptyCorpus(t *testing.T) {
	v := NewVectorizer(unigramConfig(100))
	if err := v.Fit(nil); err == nil {
		t.Error("Fit on empty corpus should fail")
	}
}

func TestVocabularyIsDeterministic(t *testing.T) {
	docs := []string{
		"good product good price",
		"bad product bad service",
		"good service fair price",
	}

	a := NewVectorizer(unigramConfig(100))
	b := NewVectorizer(unigramConfig(100))
	if err := a.Fit(docs); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(docs); err != nil {
		t.Fatal(err)
	}
	if a.Width() != b.Width() {
		t.Fatalf("widths differ: %d vs %d", a.Width(), b.Width())
	}
	for gram, col := range a.vocab {
		if b.vocab[gram] != col {
			t.Errorf("column for %q differs: %d vs %d", gram, col, b.vocab[gram])
		}
	}
}

func TestRowsAreL2Normalized(t *testing.T) {
	docs := []string{
		"great quality fast shipping",
		"poor quality slow shipping",
		"great price",
	}
	v := NewVectorizer(unigramConfig(100))
	X, err := v.FitTransform(docs)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := X.Dims()
	for i := 0; i < rows; i++ {
		normSq := 0.0
		for j := 0; j < cols; j++ {
			normSq += X.At(i, j) * X.At(i, j)
		}
		if math.Abs(normSq-1) > 1e-9 {
			t.Errorf("row %d has squared norm %v, want 1", i, normSq)
		}
	}
}

func TestUnseenTermsIgnored(t *testing.T) {
	v := NewVectorizer(unigramConfig(100))
	if err := v.Fit([]string{"alpha beta", "beta gamma"}); err != nil {
		t.Fatal(err)
	}
	X, err := v.Transform([]string{"delta epsilon zeta"})
	if err != nil {
		t.Fatal(err)
	}
	_, cols := X.Dims()
	if cols != v.Width() {
		t.Fatalf("cols = %d, want %d", cols, v.Width())
	}
	for j := 0; j < cols; j++ {
		if X.At(0, j) != 0 {
			t.Errorf("column %d = %v for fully unseen doc, want 0", j, X.At(0, j))
		}
	}
}

func TestMinDFPruning(t *testing.T) {
	cfg := unigramConfig(100)
	cfg.MinDF = 2
	v := NewVectorizer(cfg)
	if err := v.Fit([]string{"common rare1", "common rare2", "common rare3"}); err != nil {
		t.Fatal(err)
	}
	if v.Width() != 1 {
		t.Errorf("vocabulary width = %d, want 1 (only the shared term survives MinDF=2)", v.Width())
	}
	if _, ok := v.vocab["common"]; !ok {
		t.Error("vocabulary lost the frequent term")
	}
}

func TestMaxFeaturesCap(t *testing.T) {
	cfg := unigramConfig(2)
	v := NewVectorizer(cfg)
	docs := []string{
		"a b c",
		"a b",
		"a",
	}
	if err := v.Fit(docs); err != nil {
		t.Fatal(err)
	}
	if v.Width() != 2 {
		t.Fatalf("vocabulary width = %d, want 2", v.Width())
	}
	// The most document-frequent terms win the cap.
	if _, ok := v.vocab["a"]; !ok {
		t.Error("cap dropped the most frequent term")
	}
	if _, ok := v.vocab["c"]; ok {
		t.Error("cap kept the least frequent term")
	}
}

func TestNgramRange(t *testing.T) {
	cfg := VectorizerConfig{MaxFeatures: 100, NgramMin: 1, NgramMax: 2, MinDF: 1, MaxDF: 1.0}
	v := NewVectorizer(cfg)
	if err := v.Fit([]string{"buy now today"}); err != nil {
		t.Fatal(err)
	}
	for _, gram := range []string{"buy", "now", "today", "buy now", "now today"} {
		if _, ok := v.vocab[gram]; !ok {
			t.Errorf("vocabulary missing n-gram %q", gram)
		}
	}
	if _, ok := v.vocab["buy now today"]; ok {
		t.Error("vocabulary contains trigram outside the configured range")
	}
}

func TestVectorizerGobRoundTrip(t *testing.T) {
	v := NewVectorizer(unigramConfig(100))
	docs := []string{"good fast cheap", "bad slow cheap", "good value"}
	before, err := v.FitTransform(docs)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored := &Vectorizer{}
	if err := gob.NewDecoder(&buf).Decode(restored); err != nil {
		t.Fatalf("decode: %v", err)
	}

	after, err := restored.Transform(docs)
	if err != nil {
		t.Fatalf("transform after decode: %v", err)
	}
	rows, cols := before.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if before.At(i, j) != after.At(i, j) {
				t.Fatalf("value (%d,%d) changed across gob round trip: %v vs %v",
					i, j, before.At(i, j), after.At(i, j))
			}
		}
	}
}
