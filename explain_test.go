package reviewguard

import (
	"strings"
	"testing"
)

func TestExplainGenuineShortCircuit(t *testing.T) {
	// Below the genuine cutoff nothing else fires, even with loud features.
	f := Features{SpamPhraseCount: 5, ExclamationCount: 20, HasURL: 1}
	reasons := Explain(f, 0.1)
	if len(reasons) != 1 || reasons[0] != "Review appears genuine" {
		t.Errorf("Explain = %v, want single genuine reason", reasons)
	}
}

func TestExplainRuleOrder(t *testing.T) {
	f := Features{
		SpamPhraseCount:     3,
		SentimentRatingDiff: 0.8,
		UniqueWordRatio:     0.4,
		UppercaseRatio:      0.5,
		ExclamationCount:    9,
		WordCount:           5,
		AllCapsWords:        4,
		HasURL:              1,
	}
	reasons := Explain(f, 0.9)

	want := []string{
		"Contains multiple spam phrases",
		"Sentiment doesn't match rating",
		"Low vocabulary diversity (repetitive text)",
		"Excessive use of capital letters",
		"Excessive use of exclamation marks",
		"Review is suspiciously short",
		"Multiple words in ALL CAPS",
		"Contains URLs",
	}
	if len(reasons) != len(want) {
		t.Fatalf("got %d reasons %v, want %d", len(reasons), reasons, len(want))
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("reasons[%d] = %q, want %q", i, reasons[i], want[i])
		}
	}
}

func TestExplainThresholdsAreExclusive(t *testing.T) {
	// Values exactly at each rule boundary must not fire.
	f := Features{
		SpamPhraseCount:     2,
		SentimentRatingDiff: 0.5,
		UniqueWordRatio:     0.5,
		UppercaseRatio:      0.3,
		ExclamationCount:    5,
		WordCount:           10,
		AllCapsWords:        3,
		HasURL:              0,
	}
	reasons := Explain(f, 0.8)
	if len(reasons) != 1 || !strings.Contains(reasons[0], "Statistical pattern") {
		t.Errorf("boundary features should fall through to the generic reason, got %v", reasons)
	}
	if !strings.Contains(reasons[0], "80.00%") {
		t.Errorf("generic reason should carry the probability, got %q", reasons[0])
	}
}

func TestExplainFallbackMessage(t *testing.T) {
	reasons := Explain(Features{WordCount: 50, UniqueWordRatio: 0.9}, 0.65)
	if len(reasons) != 1 {
		t.Fatalf("got %v, want exactly one fallback reason", reasons)
	}
	if reasons[0] != "Statistical pattern matches fake reviews (confidence: 65.00%)" {
		t.Errorf("fallback = %q", reasons[0])
	}
}
