package reviewguard

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/mat"
)

// ErrWidthMismatch is returned when a feature matrix does not match the
// width the fitted extractor learned. A mismatch is never padded or
// truncated away.
var ErrWidthMismatch = errors.New("feature width mismatch")

// spamPhrases is the fixed phrase list scored by the spam_phrase_count
// feature. Matching happens on cleaned (lowercased) text.
var spamPhrases = []string{
	"click here", "buy now", "limited time", "free shipping",
	"best product", "highly recommend", "must buy",
}

var (
	urlHintRE  = regexp.MustCompile(`http|www`)
	specialSet = `!"#$%&'()*+,-./:;<=>?@[\]^_` + "`" + `{|}~`
)

// Features is the fixed schema of named per-review features. Field order is
// the vector order; changing it invalidates every persisted model.
type Features struct {
	TextLength          float64
	WordCount           float64
	AvgWordLength       float64
	SentenceCount       float64
	ExclamationCount    float64
	QuestionCount       float64
	UppercaseRatio      float64
	DigitCount          float64
	SpecialCharCount    float64
	Polarity            float64 // -1..1
	Subjectivity        float64 // 0..1
	Rating              float64
	SentimentRatingDiff float64 // |polarity - rating/5|
	HasURL              float64 // 0/1
	HasEmail            float64 // 0/1
	RepeatedChars       float64 // longest run of a repeated character, 0 if < 3
	AllCapsWords        float64
	UniqueWordRatio     float64
	SpamPhraseCount     float64
}

// featureNames lists the named features in vector order.
var featureNames = []string{
	"text_length", "word_count", "avg_word_length", "sentence_count",
	"exclamation_count", "question_count", "uppercase_ratio", "digit_count",
	"special_char_count", "polarity", "subjectivity", "rating",
	"sentiment_rating_diff", "has_url", "has_email", "repeated_chars",
	"all_caps_words", "unique_word_ratio", "spam_phrase_count",
}

// numNamedFeatures is the width of the named block.
const numNamedFeatures = 19

// Vector returns the features in their fixed order.
func (f Features) Vector() []float64 {
	return []float64{
		f.TextLength, f.WordCount, f.AvgWordLength, f.SentenceCount,
		f.ExclamationCount, f.QuestionCount, f.UppercaseRatio, f.DigitCount,
		f.SpecialCharCount, f.Polarity, f.Subjectivity, f.Rating,
		f.SentimentRatingDiff, f.HasURL, f.HasEmail, f.RepeatedChars,
		f.AllCapsWords, f.UniqueWordRatio, f.SpamPhraseCount,
	}
}

// An Extractor turns raw review text and rating into the combined feature
// representation: [TF-IDF n-grams | named features | optional embedding].
// Fit once over a training corpus; thereafter the instance is read-only and
// every Transform must produce the same width.
type Extractor struct {
	norm     *Normalizer
	sent     *sentimentAnalyzer
	vec      *Vectorizer
	embedder Embedder
	logger   *slog.Logger
}

// NewExtractor builds an extractor. A non-nil embedder is probed once: if
// the probe fails the embedder is dropped, logged, and the feature width is
// computed without it from then on, at both train and inference time.
func NewExtractor(cfg VectorizerConfig, embedder Embedder, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if embedder != nil {
		if _, err := embedder.Embed("probe"); err != nil {
			logger.Warn("embedding backend unavailable, continuing without embeddings", "error", err)
			embedder = nil
		}
	}
	return &Extractor{
		norm:     NewNormalizer(logger),
		sent:     newSentimentAnalyzer(),
		vec:      NewVectorizer(cfg),
		embedder: embedder,
		logger:   logger,
	}
}

// Normalizer exposes the extractor's text normalizer for callers that need
// the same cleaning behavior (duplicate detection, corpus preparation).
func (e *Extractor) Normalizer() *Normalizer { return e.norm }

// Width is the total feature width of the fitted extractor.
func (e *Extractor) Width() int {
	w := e.vec.Width() + numNamedFeatures
	if e.embedder != nil {
		w += e.embedder.Width()
	}
	return w
}

// Extract computes the named feature schema for one review. Empty text
// produces zeroed length and ratio features, never NaN.
func (e *Extractor) Extract(text string, rating float64) Features {
	cleaned := e.norm.Clean(text)
	tokens := e.norm.Tokenize(cleaned)

	f := Features{Rating: rating}
	f.TextLength = float64(utf8.RuneCountInString(text))
	f.WordCount = float64(len(tokens))
	f.SentenceCount = float64(e.norm.SentenceCount(text))
	f.ExclamationCount = float64(strings.Count(text, "!"))
	f.QuestionCount = float64(strings.Count(text, "?"))

	if len(tokens) > 0 {
		totalLen := 0
		unique := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			totalLen += utf8.RuneCountInString(tok)
			unique[tok] = struct{}{}
		}
		f.AvgWordLength = float64(totalLen) / float64(len(tokens))
		f.UniqueWordRatio = float64(len(unique)) / float64(len(tokens))
	}

	var upper, digits, special, total int
	for _, r := range text {
		total++
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		}
		if strings.ContainsRune(specialSet, r) {
			special++
		}
	}
	if total > 0 {
		f.UppercaseRatio = float64(upper) / float64(total)
	}
	f.DigitCount = float64(digits)
	f.SpecialCharCount = float64(special)

	f.Polarity, f.Subjectivity = e.sent.Score(tokens)
	f.SentimentRatingDiff = abs(f.Polarity - rating/5.0)

	if urlHintRE.MatchString(text) {
		f.HasURL = 1
	}
	if emailRE.MatchString(text) {
		f.HasEmail = 1
	}
	f.RepeatedChars = float64(longestCharRun(text))

	// All-caps words come from the raw text; cleaning lowercases
	// everything and would erase the signal.
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) > 1 && isAllUpper(word) {
			f.AllCapsWords++
		}
	}

	for _, phrase := range spamPhrases {
		if strings.Contains(cleaned, phrase) {
			f.SpamPhraseCount++
		}
	}

	return f
}

// FitTransform fits the n-gram vocabulary on the corpus and returns the
// combined feature matrix for it.
func (e *Extractor) FitTransform(texts []string, ratings []float64) (*mat.Dense, error) {
	if len(texts) != len(ratings) {
		return nil, fmt.Errorf("extractor: %d texts but %d ratings", len(texts), len(ratings))
	}
	docs := make([]string, len(texts))
	for i, text := range texts {
		docs[i] = e.norm.Preprocess(text, DepthFull)
	}
	tfidf, err := e.vec.FitTransform(docs)
	if err != nil {
		return nil, err
	}
	return e.combine(tfidf, texts, ratings)
}

// Transform maps a corpus onto the already-fitted feature space. The result
// always has exactly Width() columns or the call fails.
func (e *Extractor) Transform(texts []string, ratings []float64) (*mat.Dense, error) {
	if len(texts) != len(ratings) {
		return nil, fmt.Errorf("extractor: %d texts but %d ratings", len(texts), len(ratings))
	}
	docs := make([]string, len(texts))
	for i, text := range texts {
		docs[i] = e.norm.Preprocess(text, DepthFull)
	}
	tfidf, err := e.vec.Transform(docs)
	if err != nil {
		return nil, err
	}
	return e.combine(tfidf, texts, ratings)
}

// combine concatenates [tfidf | named | embedding] and enforces the width
// invariant.
func (e *Extractor) combine(tfidf *mat.Dense, texts []string, ratings []float64) (*mat.Dense, error) {
	rows, tfidfCols := tfidf.Dims()
	width := e.Width()
	if tfidfCols != e.vec.Width() && e.vec.Width() > 0 {
		return nil, fmt.Errorf("%w: tf-idf block has %d columns, vocabulary is %d",
			ErrWidthMismatch, tfidfCols, e.vec.Width())
	}

	out := mat.NewDense(rows, width, nil)
	for i := 0; i < rows; i++ {
		col := 0
		for j := 0; j < e.vec.Width(); j++ {
			out.Set(i, col, tfidf.At(i, j))
			col++
		}
		for _, val := range e.Extract(texts[i], ratings[i]).Vector() {
			out.Set(i, col, val)
			col++
		}
		if e.embedder != nil {
			emb, err := e.embedder.Embed(texts[i])
			if err != nil {
				return nil, fmt.Errorf("extractor: embed row %d: %w", i, err)
			}
			if len(emb) != e.embedder.Width() {
				return nil, fmt.Errorf("%w: embedding has %d values, declared width %d",
					ErrWidthMismatch, len(emb), e.embedder.Width())
			}
			for _, val := range emb {
				out.Set(i, col, val)
				col++
			}
		}
	}
	return out, nil
}

// longestCharRun finds the longest run of one repeated character; runs
// shorter than 3 do not count.
func longestCharRun(text string) int {
	longest, run := 0, 0
	var prev rune = -1
	for _, r := range text {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run >= 3 && run > longest {
			longest = run
		}
	}
	return longest
}

func isAllUpper(word string) bool {
	hasLetter := false
	for _, r := range word {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
