package reviewguard

import "fmt"

// Explain turns a review's extracted features and its ensemble fake
// probability into human-readable reasons. It is a deterministic rule pass,
// not a model: the same feature map always yields the same reasons.
//
// Below the genuine cutoff the single genuine reason is returned and
// evaluation stops. Otherwise every matching rule fires, appended in fixed
// priority order; when nothing matches, a generic statistical-pattern
// message carries the probability.
func Explain(f Features, fakeProbability float64) []string {
	if fakeProbability < 0.3 {
		return []string{"Review appears genuine"}
	}

	var reasons []string
	if f.SpamPhraseCount > 2 {
		reasons = append(reasons, "Contains multiple spam phrases")
	}
	if f.SentimentRatingDiff > 0.5 {
		reasons = append(reasons, "Sentiment doesn't match rating")
	}
	if f.UniqueWordRatio < 0.5 {
		reasons = append(reasons, "Low vocabulary diversity (repetitive text)")
	}
	if f.UppercaseRatio > 0.3 {
		reasons = append(reasons, "Excessive use of capital letters")
	}
	if f.ExclamationCount > 5 {
		reasons = append(reasons, "Excessive use of exclamation marks")
	}
	if f.WordCount < 10 {
		reasons = append(reasons, "Review is suspiciously short")
	}
	if f.AllCapsWords > 3 {
		reasons = append(reasons, "Multiple words in ALL CAPS")
	}
	if f.HasURL == 1 {
		reasons = append(reasons, "Contains URLs")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf(
			"Statistical pattern matches fake reviews (confidence: %.2f%%)", fakeProbability*100))
	}
	return reasons
}
