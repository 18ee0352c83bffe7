package reviewguard

import (
	"context"
	"errors"
	"testing"
)

func TestPredictBatchPreservesOrder(t *testing.T) {
	c := trainedClassifier(t)

	reviews := []RawReview{
		{Text: "Great product! Exactly as described. Fast shipping.", Rating: 4},
		{Text: "BEST PRODUCT EVER!!! BUY NOW!!! CLICK HERE!!!", Rating: 5},
		{Text: "Good quality, fair price. Will buy again.", Rating: 4},
	}
	results, err := c.PredictBatch(context.Background(), reviews)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(reviews) {
		t.Fatalf("got %d results for %d reviews", len(results), len(reviews))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("results[%d].Index = %d", i, res.Index)
		}
		if res.Err != nil {
			t.Errorf("results[%d] unexpected error: %v", i, res.Err)
		}
	}
}

func TestPredictBatchIsolatesBadRows(t *testing.T) {
	c := trainedClassifier(t)

	reviews := []RawReview{
		{Text: "Works exactly as described, very satisfied.", Rating: 5},
		{Text: "", Rating: 4},                          // empty text
		{Text: "Fine product overall.", Rating: 9},     // rating out of range
		{Text: "Arrived quickly and in perfect condition.", Rating: 5},
	}
	results, err := c.PredictBatch(context.Background(), reviews)
	if err != nil {
		t.Fatal(err)
	}

	if results[1].Err == nil {
		t.Error("empty-text row did not report an error")
	}
	if results[2].Err == nil {
		t.Error("bad-rating row did not report an error")
	}
	for _, i := range []int{0, 3} {
		if results[i].Err != nil {
			t.Errorf("good row %d failed: %v", i, results[i].Err)
		}
		if len(results[i].Prediction.Reasons) == 0 {
			t.Errorf("good row %d has no reasons", i)
		}
	}
}

func TestPredictBatchBeforeTraining(t *testing.T) {
	c, err := NewClassifier(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.PredictBatch(context.Background(), []RawReview{{Text: "x", Rating: 3}}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("got %v, want ErrNotTrained", err)
	}
}

func TestPredictBatchCancelledContext(t *testing.T) {
	c := trainedClassifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reviews := make([]RawReview, 50)
	for i := range reviews {
		reviews[i] = RawReview{Text: "A perfectly ordinary review body.", Rating: 3}
	}
	if _, err := c.PredictBatch(ctx, reviews); err == nil {
		t.Error("cancelled context did not abort the batch")
	}
}

func TestPredictBatchEmpty(t *testing.T) {
	c := trainedClassifier(t)
	results, err := c.PredictBatch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for empty batch", len(results))
	}
}
