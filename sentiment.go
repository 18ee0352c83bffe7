package reviewguard

import "strings"

// lexiconEntry carries a word's prior polarity and subjectivity, in the
// TextBlob convention: polarity in [-1,1], subjectivity in [0,1].
type lexiconEntry struct {
	Polarity     float64
	Subjectivity float64
}

// sentimentAnalyzer scores text with a lexicon pass: average the polarity of
// matched words, applying intensifier factors and a short negation window.
type sentimentAnalyzer struct {
	words          map[string]lexiconEntry
	modifiers      map[string]float64
	negations      map[string]bool
	negationWindow int
}

func newSentimentAnalyzer() *sentimentAnalyzer {
	return &sentimentAnalyzer{
		words:          baseLexicon,
		modifiers:      baseModifiers,
		negations:      baseNegations,
		negationWindow: 3,
	}
}

// Score returns the polarity and subjectivity of the token sequence. Both
// are 0 when no lexicon word matches, never NaN.
func (sa *sentimentAnalyzer) Score(tokens []string) (polarity, subjectivity float64) {
	var polSum, subSum float64
	matched := 0

	for i, tok := range tokens {
		entry, ok := sa.words[strings.ToLower(tok)]
		if !ok {
			continue
		}

		score := entry.Polarity
		if factor := sa.modifierBefore(tokens, i); factor != 0 {
			score *= factor
		}
		if sa.negatedBefore(tokens, i) {
			// Negation reverses but weakens ("not great" is mildly bad,
			// not the mirror of "great").
			score = -score * 0.5
		}
		if score > 1 {
			score = 1
		} else if score < -1 {
			score = -1
		}

		polSum += score
		subSum += entry.Subjectivity
		matched++
	}

	if matched == 0 {
		return 0, 0
	}
	return polSum / float64(matched), subSum / float64(matched)
}

// modifierBefore reports the intensifier/diminisher factor of the token
// immediately preceding position i, or 0 when there is none.
func (sa *sentimentAnalyzer) modifierBefore(tokens []string, i int) float64 {
	if i == 0 {
		return 0
	}
	if factor, ok := sa.modifiers[strings.ToLower(tokens[i-1])]; ok {
		return factor
	}
	return 0
}

// negatedBefore reports whether a negation occurs within the window before
// position i.
func (sa *sentimentAnalyzer) negatedBefore(tokens []string, i int) bool {
	start := i - sa.negationWindow
	if start < 0 {
		start = 0
	}
	for j := start; j < i; j++ {
		if sa.negations[strings.ToLower(tokens[j])] {
			return true
		}
	}
	return false
}

// baseLexicon is a compact review-domain lexicon. Polarity magnitudes follow
// the strong/weak split used elsewhere in the pipeline's spam heuristics.
var baseLexicon = map[string]lexiconEntry{
	// Strong positive
	"amazing": {0.9, 0.9}, "awesome": {0.9, 0.9}, "excellent": {0.9, 0.8},
	"fantastic": {0.9, 0.9}, "incredible": {0.9, 0.9}, "outstanding": {0.9, 0.8},
	"perfect": {1.0, 0.9}, "brilliant": {0.9, 0.8}, "wonderful": {0.9, 0.8},
	"superb": {0.9, 0.8}, "love": {0.8, 0.7}, "loved": {0.8, 0.7},
	"best": {0.9, 0.7}, "exceptional": {0.8, 0.7}, "flawless": {0.9, 0.8},
	"phenomenal": {0.9, 0.9}, "spectacular": {0.9, 0.9}, "revolutionary": {0.7, 0.9},
	"thrilled": {0.8, 0.9}, "delighted": {0.8, 0.8}, "exceeded": {0.6, 0.5},
	// Weak positive
	"good": {0.5, 0.6}, "great": {0.7, 0.7}, "nice": {0.5, 0.7},
	"happy": {0.6, 0.8}, "satisfied": {0.5, 0.6}, "pleased": {0.5, 0.6},
	"solid": {0.4, 0.4}, "reliable": {0.5, 0.4}, "decent": {0.3, 0.5},
	"fine": {0.3, 0.5}, "okay": {0.2, 0.5}, "fast": {0.3, 0.3},
	"quality": {0.4, 0.4}, "recommend": {0.6, 0.6}, "value": {0.3, 0.3},
	"works": {0.3, 0.2}, "like": {0.4, 0.5}, "fair": {0.3, 0.5},
	"comfortable": {0.5, 0.6}, "pleasant": {0.5, 0.6}, "quick": {0.3, 0.3},
	// Strong negative
	"terrible": {-0.9, 0.9}, "awful": {-0.9, 0.9}, "horrible": {-0.9, 0.9},
	"worst": {-0.9, 0.8}, "useless": {-0.8, 0.8}, "garbage": {-0.8, 0.9},
	"hate": {-0.8, 0.8}, "disgusting": {-0.9, 0.9}, "pathetic": {-0.8, 0.9},
	"worthless": {-0.8, 0.8}, "nightmare": {-0.8, 0.9}, "disaster": {-0.8, 0.8},
	"scam": {-0.9, 0.9}, "junk": {-0.7, 0.8}, "trash": {-0.7, 0.8},
	"broke": {-0.6, 0.5}, "broken": {-0.6, 0.5}, "waste": {-0.7, 0.7},
	// Weak negative
	"bad": {-0.6, 0.7}, "poor": {-0.5, 0.6}, "disappointing": {-0.6, 0.7},
	"disappointed": {-0.6, 0.7}, "mediocre": {-0.4, 0.6}, "cheap": {-0.3, 0.5},
	"slow": {-0.3, 0.4}, "faulty": {-0.5, 0.5}, "defective": {-0.6, 0.5},
	"dislike": {-0.5, 0.6}, "sad": {-0.5, 0.8}, "flimsy": {-0.4, 0.6},
	"problematic": {-0.4, 0.5}, "inadequate": {-0.4, 0.5}, "ignored": {-0.4, 0.5},
}

var baseModifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "absolutely": 1.5, "incredibly": 1.4,
	"really": 1.2, "truly": 1.2, "highly": 1.3, "totally": 1.3,
	"completely": 1.4, "super": 1.3, "so": 1.2, "too": 1.1,
	"slightly": 0.6, "somewhat": 0.7, "barely": 0.5, "hardly": 0.5,
	"fairly": 0.8, "pretty": 0.9, "quite": 1.1, "rather": 0.9,
}

var baseNegations = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true,
	"nobody": true, "nothing": true, "nowhere": true, "cannot": true,
	"can't": true, "won't": true, "don't": true, "doesn't": true,
	"didn't": true, "isn't": true, "wasn't": true, "aren't": true,
	"n't": true, "without": true,
}
