package reviewguard

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbalet/stopwords"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

var (
	urlRE       = regexp.MustCompile(`http\S+|www\S+`)
	emailRE     = regexp.MustCompile(`\S+@\S+`)
	htmlTagRE   = regexp.MustCompile(`<[^>]*>`)
	sentenceRE  = regexp.MustCompile(`[.!?]+`)
	punctOnlyRE = regexp.MustCompile(`^[[:punct:]]+$`)
)

// emojiWords maps a small fixed set of emoji (and the mojibake forms they
// arrive in from badly-decoded scrapes) to sentiment words, so downstream
// features see them instead of losing them at tokenization.
var emojiWords = strings.NewReplacer(
	"❤️", " love ", "â¤ï¸", " love ",
	"👍", " like ", "ðŸ‘", " like ",
	"👎", " dislike ", "ðŸ‘Ž", " dislike ",
	"😊", " happy ", "ðŸ˜Š", " happy ",
	"😢", " sad ", "ðŸ˜¢", " sad ",
)

// A Normalizer cleans and tokenizes raw review text. All methods are pure;
// construction probes optional capabilities (the Punkt sentence tokenizer)
// once and falls back silently, so normalization itself never fails.
type Normalizer struct {
	tokenizer *wordTokenizer
	segmenter *sentences.DefaultSentenceTokenizer // nil when the probe failed
	stopset   map[string]struct{}
	fallback  bool
}

// NewNormalizer builds a Normalizer, probing the sentence tokenizer and
// logging once if the naive fallback will be used.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	n := &Normalizer{
		tokenizer: newWordTokenizer(),
		stopset:   buildStopwordSet(),
	}
	seg, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		n.fallback = true
		if logger != nil {
			logger.Warn("punkt sentence tokenizer unavailable, using naive split", "error", err)
		}
	} else {
		n.segmenter = seg
	}
	return n
}

// Clean lowercases text and strips URLs, email addresses and HTML markup,
// maps known emoji to sentiment words, and collapses whitespace. It is
// deterministic and idempotent: Clean(Clean(s)) == Clean(s).
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = stripHTML(text)
	// Emoji mapping runs before lowercasing: the mojibake keys contain
	// uppercase runes that ToLower would rewrite past recognition.
	text = emojiWords.Replace(text)
	text = strings.ToLower(text)
	text = urlRE.ReplaceAllString(text, "")
	text = emailRE.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// stripHTML removes markup, preferring a real HTML parse over regexes when
// the text actually contains tags.
func stripHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return htmlTagRE.ReplaceAllString(text, "")
	}
	return doc.Text()
}

// Tokenize splits cleaned text into word tokens. When the capability probe
// at construction failed, it degrades to a plain whitespace split.
func (n *Normalizer) Tokenize(text string) []string {
	if n.fallback {
		return strings.Fields(text)
	}
	return n.tokenizer.Tokenize(text)
}

// SentenceCount reports the number of sentences in the original (uncleaned)
// text, never less than 1 for non-empty text.
func (n *Normalizer) SentenceCount(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	if n.segmenter != nil {
		sents := n.segmenter.Tokenize(text)
		if len(sents) > 0 {
			return len(sents)
		}
	}
	count := 0
	for _, part := range sentenceRE.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}

// RemoveStopwords drops stopwords from tokens. Negators and intensifiers
// ("not", "no", "very", "too", "most", "best", "worst") are kept: they
// separate fake from genuine reviews.
func (n *Normalizer) RemoveStopwords(tokens []string) []string {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if _, stop := n.stopset[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// RemovePunctuation drops tokens that consist solely of punctuation.
func (n *Normalizer) RemovePunctuation(tokens []string) []string {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if !punctOnlyRE.MatchString(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Stem reduces each token to a crude lemma by stripping common inflectional
// suffixes. Deliberately conservative: collapsing plural and progressive
// forms is enough for the n-gram vocabulary to generalize.
func (n *Normalizer) Stem(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = stemWord(tok)
	}
	return out
}

func stemWord(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 4 && strings.HasSuffix(word, "sses"):
		return word[:len(word)-2]
	case len(word) > 5 && strings.HasSuffix(word, "ing"):
		return word[:len(word)-3]
	case len(word) > 4 && strings.HasSuffix(word, "ed"):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return word[:len(word)-1]
	}
	return word
}

// Preprocess runs the full normalization pipeline at the requested depth and
// returns a single string: DepthLight is Clean only, DepthFull additionally
// tokenizes, strips punctuation and stopwords, and stems.
func (n *Normalizer) Preprocess(text string, depth PreprocessDepth) string {
	cleaned := n.Clean(text)
	if depth == DepthLight {
		return cleaned
	}
	tokens := n.Tokenize(cleaned)
	tokens = n.RemovePunctuation(tokens)
	tokens = n.RemoveStopwords(tokens)
	tokens = n.Stem(tokens)
	return strings.Join(tokens, " ")
}

// preservedWords are excluded from the stopword set regardless of what the
// stopword corpus says, because they flip or amplify sentiment.
var preservedWords = []string{"not", "no", "very", "too", "most", "best", "worst"}

// stopwordCandidates is the pool of common English words tested against the
// stopword corpus at init. The bbalet/stopwords library does not export its
// word lists, so membership is detected functionally: a candidate that
// CleanString removes is a stopword.
var stopwordCandidates = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am",
	"an", "and", "any", "are", "as", "at", "back", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can", "could",
	"did", "do", "does", "doing", "down", "during", "each", "even", "few",
	"first", "for", "from", "further", "get", "give", "go", "going", "got",
	"had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "in", "into", "is", "it", "its",
	"itself", "just", "know", "last", "like", "made", "make", "many", "may",
	"me", "might", "more", "most", "much", "must", "my", "myself", "never",
	"new", "no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "would", "you", "your", "yours", "yourself", "yourselves",
}

// buildStopwordSet probes the stopword corpus for each candidate and keeps
// the hits, minus the preserved discriminative words.
func buildStopwordSet() map[string]struct{} {
	preserved := make(map[string]struct{}, len(preservedWords))
	for _, w := range preservedWords {
		preserved[w] = struct{}{}
	}

	set := make(map[string]struct{})
	for _, word := range stopwordCandidates {
		if _, keep := preserved[word]; keep {
			continue
		}
		cleaned := strings.TrimSpace(stopwords.CleanString(word, "en", false))
		if cleaned == "" || cleaned != word {
			set[word] = struct{}{}
		}
	}
	return set
}
