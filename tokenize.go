package reviewguard

import (
	"strings"
	"unicode/utf8"
)

// wordTokenizer splits cleaned review text into word tokens. It handles the
// punctuation patterns that show up in scraped reviews: contractions
// ("don't" -> [do, n't]), leading/trailing punctuation, and emoticons, which
// are kept whole because they carry sentiment.
type wordTokenizer struct {
	sanitizer    *strings.Replacer
	contractions []string
	suffixes     []string
	prefixes     []string
	emoticons    map[string]struct{}
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{
		sanitizer:    tokenSanitizer,
		contractions: contractions,
		suffixes:     suffixes,
		prefixes:     prefixes,
		emoticons:    emoticons,
	}
}

// Tokenize splits text into tokens. Whitespace-delimited spans are split
// further on punctuation unless the span is an emoticon.
func (t *wordTokenizer) Tokenize(text string) []string {
	var tokens []string

	clean := t.sanitizer.Replace(text)
	for _, span := range strings.Fields(clean) {
		tokens = append(tokens, t.splitSpan(span)...)
	}
	return tokens
}

func (t *wordTokenizer) isSpecial(token string) bool {
	_, found := t.emoticons[token]
	return found
}

func (t *wordTokenizer) splitSpan(span string) []string {
	var tokens, suffs []string

	last := 0
	for span != "" && utf8.RuneCountInString(span) != last {
		if t.isSpecial(span) {
			// Emoticons pass through unsplit.
			tokens = appendToken(span, tokens)
			break
		}
		last = utf8.RuneCountInString(span)
		lower := strings.ToLower(span)
		if hasAnyPrefix(span, t.prefixes) {
			// Remove prefixes -- e.g., ($5 -> [(, $, 5].
			tokens = appendToken(string(span[0]), tokens)
			span = span[1:]
		} else if idx := hasAnyIndex(lower, t.contractions); idx > -1 {
			// they'll -> [they, 'll]; don't -> [do, n't].
			tokens = appendToken(span[:idx], tokens)
			span = span[idx:]
		} else if hasAnySuffix(span, t.suffixes) {
			// Remove suffixes -- e.g., great! -> [great, !].
			suffs = append([]string{string(span[len(span)-1])}, suffs...)
			span = span[:len(span)-1]
		} else {
			tokens = appendToken(span, tokens)
			break
		}
	}

	return append(tokens, suffs...)
}

func appendToken(s string, toks []string) []string {
	if strings.TrimSpace(s) != "" {
		toks = append(toks, s)
	}
	return toks
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func hasAnyIndex(s string, substrings []string) int {
	for _, sub := range substrings {
		idx := strings.Index(s, sub)
		if idx > 0 {
			return idx
		}
	}
	return -1
}

var tokenSanitizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"&rsquo;", "'")

var contractions = []string{"'ll", "'s", "'re", "'m", "'ve", "'d", "n't"}
var suffixes = []string{",", ")", `"`, "]", "!", ";", ".", "?", ":", "'"}
var prefixes = []string{"$", "(", `"`, "["}

var emoticons = map[string]struct{}{
	":(": {}, ":((": {}, ":)": {}, ":))": {}, ":-(": {}, ":-)": {},
	":-/": {}, ":-|": {}, ":/": {}, ":d": {}, ":o": {}, ":p": {},
	":|": {}, ";)": {}, ";-)": {}, "<3": {}, "=(": {}, "=)": {},
	"=d": {}, "xd": {}, "^_^": {}, "-_-": {}, "o_o": {},
}
